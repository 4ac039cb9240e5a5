package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"showalert/internal/core/id"
	"showalert/internal/domain/show"
	"showalert/pkg/logger"
)

const detailKeyPrefix = "showalert:show:detail:"

// Client is the part of go-redis the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Observer receives cache outcomes, e.g. for metrics. May be nil.
type Observer interface {
	CacheResult(cache string, hit bool)
}

var _ show.DetailCache = (*DetailCache)(nil)

// DetailCache implements show.DetailCache on Redis. Cache failures are
// logged and treated as misses, never surfaced to the reader.
type DetailCache struct {
	client   Client
	codec    *Codec
	ttl      time.Duration
	log      *logger.Logger
	observer Observer
}

// NewDetailCache creates the cache.
func NewDetailCache(client Client, codec *Codec, ttl time.Duration, log *logger.Logger, observer Observer) *DetailCache {
	if log == nil {
		log = logger.Default()
	}
	return &DetailCache{
		client:   client,
		codec:    codec,
		ttl:      ttl,
		log:      log.WithComponent("detail_cache"),
		observer: observer,
	}
}

func detailKey(showID id.ID) string {
	return detailKeyPrefix + showID.String()
}

func (c *DetailCache) observe(hit bool) {
	if c.observer != nil {
		c.observer.CacheResult("show_detail", hit)
	}
}

// Get implements show.DetailCache.
func (c *DetailCache) Get(ctx context.Context, showID id.ID) (*show.Detail, bool) {
	data, err := c.client.Get(ctx, detailKey(showID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithContext(ctx).Warnw("detail cache get failed", "show_id", showID, "error", err)
		}
		c.observe(false)
		return nil, false
	}

	var d show.Detail
	if err := c.codec.Decode(data, &d); err != nil {
		c.log.WithContext(ctx).Warnw("detail cache entry unreadable", "show_id", showID, "error", err)
		c.observe(false)
		return nil, false
	}
	c.observe(true)
	return &d, true
}

// Set implements show.DetailCache.
func (c *DetailCache) Set(ctx context.Context, d *show.Detail) {
	if d == nil || d.Show == nil {
		return
	}
	data, err := c.codec.Encode(d)
	if err != nil {
		c.log.WithContext(ctx).Warnw("detail cache encode failed", "show_id", d.Show.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, detailKey(d.Show.ID), data, c.ttl).Err(); err != nil {
		c.log.WithContext(ctx).Warnw("detail cache set failed", "show_id", d.Show.ID, "error", err)
	}
}

// Invalidate implements show.DetailCache.
func (c *DetailCache) Invalidate(ctx context.Context, showID id.ID) {
	if err := c.client.Del(ctx, detailKey(showID)).Err(); err != nil {
		c.log.WithContext(ctx).Warnw("detail cache invalidate failed", "show_id", showID, "error", err)
	}
}
