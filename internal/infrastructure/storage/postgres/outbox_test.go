package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showalert/internal/core/id"
	"showalert/internal/domain"
)

func TestOutboxInsertSQL(t *testing.T) {
	showID := id.New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	payload := map[string]any{"showId": showID.String(), "artistIds": []string{"a"}}

	q, err := outboxInsert(now,
		domain.Event{AggregateType: "show", AggregateID: showID, Type: "show.registered", Payload: payload},
		domain.Event{AggregateType: "show", AggregateID: showID, Type: "show.updated", Payload: payload},
	)
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO sys_outbox (id,aggregate_type,aggregate_id,event_type,payload,status,created_at) "+
		"VALUES ($1,$2,$3,$4,$5,$6,$7),($8,$9,$10,$11,$12,$13,$14)", sql)
	require.Len(t, args, 14)
	assert.Equal(t, "show.registered", args[3])
	assert.Equal(t, OutboxStatusPending, args[5])
	assert.Equal(t, "show.updated", args[10])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(args[4].([]byte), &decoded))
	assert.Equal(t, showID.String(), decoded["showId"])
}

func TestOutboxInsert_BadPayload(t *testing.T) {
	_, err := outboxInsert(time.Now(), domain.Event{Type: "x", Payload: make(chan int)})
	assert.Error(t, err)
}

func TestPendingQuerySQL(t *testing.T) {
	sql, args, err := pendingQuery(50).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, aggregate_type, aggregate_id, event_type, payload, status, "+
		"retry_count, last_error, next_retry_at, created_at, published_at FROM sys_outbox "+
		"WHERE status = $1 AND (next_retry_at IS NULL OR next_retry_at <= NOW()) "+
		"ORDER BY created_at LIMIT 50 FOR UPDATE SKIP LOCKED", sql)
	assert.Equal(t, []any{OutboxStatusPending}, args)
}

func TestNewOutboxRelay_Defaults(t *testing.T) {
	r := NewOutboxRelay(nil, RelayConfig{}, nil, nil)
	assert.Equal(t, DefaultRelayConfig(), r.cfg)
}
