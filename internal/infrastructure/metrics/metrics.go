// Package metrics holds the Prometheus instruments of the server and the
// outbox worker.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"showalert/internal/infrastructure/storage/postgres"
)

var (
	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showalert_api_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showalert_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showalert_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showalert_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Show metrics
	ShowViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showalert_show_views_total",
			Help: "Total number of recorded show views",
		},
	)

	StaleCursors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showalert_stale_cursors_total",
			Help: "Listing requests rejected because the cursor row was deleted",
		},
		[]string{"listing"},
	)

	// Outbox metrics
	OutboxPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showalert_outbox_published_total",
			Help: "Outbox messages delivered to the broker",
		},
	)

	OutboxFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showalert_outbox_failed_total",
			Help: "Outbox delivery attempts that failed",
		},
	)

	OutboxDeadLettered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showalert_outbox_dead_lettered_total",
			Help: "Outbox messages moved to the dead letter table",
		},
	)

	OutboxPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "showalert_outbox_pending",
			Help: "Outbox messages waiting for delivery",
		},
	)

	// Database pool metrics
	DBPoolConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "showalert_db_pool_connections",
			Help: "PostgreSQL pool connections by state",
		},
		[]string{"state"}, // "total", "acquired", "idle", "max"
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	APIRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, route, code).Inc()
}

// CacheObserver feeds cache outcomes into CacheHits and CacheMisses.
type CacheObserver struct{}

// CacheResult implements cache.Observer.
func (CacheObserver) CacheResult(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordOutboxBatch records the outcome of one relay pass.
func RecordOutboxBatch(res postgres.BatchResult, deadLettered int64) {
	OutboxPublished.Add(float64(res.Published))
	OutboxFailed.Add(float64(res.Failed))
	OutboxDeadLettered.Add(float64(deadLettered))
}

// UpdatePoolStats mirrors pool statistics into DBPoolConns.
func UpdatePoolStats(s postgres.PoolStats) {
	DBPoolConns.WithLabelValues("total").Set(float64(s.TotalConns))
	DBPoolConns.WithLabelValues("acquired").Set(float64(s.AcquiredConns))
	DBPoolConns.WithLabelValues("idle").Set(float64(s.IdleConns))
	DBPoolConns.WithLabelValues("max").Set(float64(s.MaxConns))
}
