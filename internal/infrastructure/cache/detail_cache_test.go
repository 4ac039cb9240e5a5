package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showalert/internal/core/id"
	"showalert/internal/domain/show"
	"showalert/pkg/logger"
)

type memRedis struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet error
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return redis.NewStringResult("", m.failGet)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (m *memRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.([]byte)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheResult(_ string, hit bool) {
	if hit {
		o.hits++
		return
	}
	o.misses++
}

func sampleDetail() *show.Detail {
	s := show.New(show.Info{
		Title:      "IU Concert",
		Location:   "Seoul",
		StartDate:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		SeatPrices: show.SeatPrices{"VIP": decimal.RequireFromString("165000")},
	})
	return &show.Detail{
		Show:    s,
		Artists: []show.ArtistSummary{{ID: id.New(), Name: "IU", Image: "iu.png"}},
		Genres:  []show.GenreSummary{{ID: id.New(), Name: "K-POP"}},
		TicketingTimes: []show.TicketingSummary{
			{Type: show.TicketingPre, At: time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC)},
		},
	}
}

func TestDetailCache_RoundTripAndInvalidate(t *testing.T) {
	for _, threshold := range []int{0, 1 << 20} {
		codec, err := NewCodec(threshold)
		require.NoError(t, err)

		client := newMemRedis()
		obs := &countingObserver{}
		c := NewDetailCache(client, codec, 5*time.Minute, logger.Nop(), obs)
		ctx := context.Background()
		d := sampleDetail()

		_, ok := c.Get(ctx, d.Show.ID)
		assert.False(t, ok)

		c.Set(ctx, d)
		assert.Equal(t, 5*time.Minute, client.ttls[detailKey(d.Show.ID)])

		got, ok := c.Get(ctx, d.Show.ID)
		require.True(t, ok)
		assert.Equal(t, d.Show.ID, got.Show.ID)
		assert.Equal(t, "IU", got.Artists[0].Name)
		assert.True(t, got.Show.SeatPrices["VIP"].Equal(decimal.NewFromInt(165000)))
		assert.True(t, got.TicketingTimes[0].At.Equal(d.TicketingTimes[0].At))

		c.Invalidate(ctx, d.Show.ID)
		_, ok = c.Get(ctx, d.Show.ID)
		assert.False(t, ok)

		assert.Equal(t, 1, obs.hits)
		assert.Equal(t, 2, obs.misses)
	}
}

func TestDetailCache_FailuresAreMisses(t *testing.T) {
	codec, err := NewCodec(0)
	require.NoError(t, err)
	client := newMemRedis()
	c := NewDetailCache(client, codec, time.Minute, logger.Nop(), nil)
	ctx := context.Background()

	client.failGet = errors.New("connection refused")
	_, ok := c.Get(ctx, id.New())
	assert.False(t, ok)

	client.failGet = nil
	bad := id.New()
	client.data[detailKey(bad)] = []byte("xgarbage")
	_, ok = c.Get(ctx, bad)
	assert.False(t, ok)

	c.Set(ctx, nil)
	c.Set(ctx, &show.Detail{})
	assert.Len(t, client.data, 1)
}

func TestCodec_CompressesAboveThreshold(t *testing.T) {
	codec, err := NewCodec(256)
	require.NoError(t, err)

	small, err := codec.Encode(map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.Equal(t, markerJSON, small[0])

	big := map[string]string{"text": strings.Repeat("show ", 1000)}
	enc, err := codec.Encode(big)
	require.NoError(t, err)
	assert.Equal(t, markerZstd, enc[0])
	assert.Less(t, len(enc), 1000)

	var out map[string]string
	require.NoError(t, codec.Decode(enc, &out))
	assert.Equal(t, big, out)

	assert.Error(t, codec.Decode(nil, &out))
	assert.Error(t, codec.Decode([]byte("q{}"), &out))
}
