package main

import (
	"context"
	"time"

	"showalert/internal/infrastructure/metrics"
	"showalert/internal/infrastructure/storage/postgres"
	"showalert/pkg/logger"
)

// Relay is the outbox side the worker drives.
type Relay interface {
	ProcessBatch(ctx context.Context) (postgres.BatchResult, error)
	MoveToDLQ(ctx context.Context) (int64, error)
	PendingCount(ctx context.Context) (int64, error)
}

// Worker polls the outbox until its context is cancelled.
type Worker struct {
	relay        Relay
	poolStats    func() postgres.PoolStats
	pollInterval time.Duration
	log          *logger.Logger
}

// NewWorker creates a worker. poolStats may be nil.
func NewWorker(relay Relay, poolStats func() postgres.PoolStats, pollInterval time.Duration, log *logger.Logger) *Worker {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Worker{
		relay:        relay,
		poolStats:    poolStats,
		pollInterval: pollInterval,
		log:          log.WithComponent("worker"),
	}
}

// Run polls until ctx is done. A full batch is followed immediately by the
// next one so a backlog drains without waiting for the ticker.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	maintenance := time.NewTicker(time.Minute)
	defer maintenance.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for w.processOutbox(ctx) {
				if ctx.Err() != nil {
					return
				}
			}
		case <-maintenance.C:
			w.maintain(ctx)
		}
	}
}

// processOutbox runs one relay pass and reports whether more work is
// likely waiting.
func (w *Worker) processOutbox(ctx context.Context) bool {
	res, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox batch failed", "error", err)
		return false
	}
	metrics.RecordOutboxBatch(res, 0)
	if res.Published > 0 || res.Failed > 0 {
		w.log.Debugw("outbox batch processed", "published", res.Published, "failed", res.Failed)
	}
	return res.Published > 0 && res.Failed == 0
}

// maintain moves exhausted messages aside and refreshes gauges.
func (w *Worker) maintain(ctx context.Context) {
	moved, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("move to dlq failed", "error", err)
	} else if moved > 0 {
		metrics.RecordOutboxBatch(postgres.BatchResult{}, moved)
		w.log.Warnw("outbox messages dead-lettered", "count", moved)
	}

	if pending, err := w.relay.PendingCount(ctx); err == nil {
		metrics.OutboxPending.Set(float64(pending))
	}
	if w.poolStats != nil {
		metrics.UpdatePoolStats(w.poolStats())
	}
}
