package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"showalert/internal/core/id"
	"showalert/internal/domain"
	"showalert/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const outboxTable = "sys_outbox"

// OutboxMessage represents a message in the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"` // e.g. "show"
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"` // e.g. "show.registered"
	Payload       []byte       `db:"payload"`    // JSON
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

var _ domain.EventPublisher = (*OutboxPublisher)(nil)

// OutboxPublisher writes domain events to sys_outbox inside the caller's
// transaction, so an event exists exactly when its change committed.
type OutboxPublisher struct {
	txManager *TxManager
}

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager}
}

func outboxInsert(now time.Time, events ...domain.Event) (squirrel.InsertBuilder, error) {
	q := Builder().
		Insert(outboxTable).
		Columns("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at")
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return q, fmt.Errorf("marshal %s payload: %w", e.Type, err)
		}
		q = q.Values(id.New(), e.AggregateType, e.AggregateID, e.Type, payload, OutboxStatusPending, now)
	}
	return q, nil
}

// Publish implements domain.EventPublisher. It must be called inside a
// transaction.
func (p *OutboxPublisher) Publish(ctx context.Context, e domain.Event) error {
	return p.PublishBatch(ctx, []domain.Event{e})
}

// PublishBatch writes several events with one statement.
func (p *OutboxPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	if !p.txManager.InTransaction(ctx) {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	q, err := outboxInsert(time.Now().UTC(), events...)
	if err != nil {
		return err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build outbox insert: %w", err)
	}
	if _, err := p.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// OutboxHandler delivers one message to the broker.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// RelayConfig tunes the relay.
type RelayConfig struct {
	BatchSize  int
	MaxRetries int
	// RetryBase is multiplied by the attempt number for the next retry.
	RetryBase time.Duration
}

// DefaultRelayConfig returns 100 messages per batch, 5 retries, 1m base.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{BatchSize: 100, MaxRetries: 5, RetryBase: time.Minute}
}

// BatchResult summarizes one relay pass.
type BatchResult struct {
	Published int
	Failed    int
}

// OutboxRelay reads pending messages and hands them to an OutboxHandler.
// Used by the background worker.
type OutboxRelay struct {
	txManager *TxManager
	cfg       RelayConfig
	handler   OutboxHandler
	log       *logger.Logger
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager, cfg RelayConfig, handler OutboxHandler, log *logger.Logger) *OutboxRelay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultRelayConfig().BatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultRelayConfig().MaxRetries
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = DefaultRelayConfig().RetryBase
	}
	if log == nil {
		log = logger.Default()
	}
	return &OutboxRelay{
		txManager: txManager,
		cfg:       cfg,
		handler:   handler,
		log:       log.WithComponent("outbox_relay"),
	}
}

func pendingQuery(batchSize int) squirrel.SelectBuilder {
	return Builder().
		Select("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status",
			"retry_count", "last_error", "next_retry_at", "created_at", "published_at").
		From(outboxTable).
		Where(squirrel.Eq{"status": OutboxStatusPending}).
		Where("(next_retry_at IS NULL OR next_retry_at <= NOW())").
		OrderBy("created_at").
		Limit(uint64(batchSize)).
		Suffix("FOR UPDATE SKIP LOCKED")
}

// ProcessBatch locks a batch of pending messages and delivers them. Locks
// are held until the batch transaction ends, so concurrent workers never
// deliver the same message.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (BatchResult, error) {
	var res BatchResult
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := pendingQuery(r.cfg.BatchSize).ToSql()
		if err != nil {
			return fmt.Errorf("build outbox query: %w", err)
		}

		var messages []*OutboxMessage
		if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &messages, sql, args...); err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		for _, msg := range messages {
			if err := r.processMessage(ctx, msg); err != nil {
				res.Failed++
				r.log.Warnw("outbox delivery failed",
					"message_id", msg.ID,
					"event_type", msg.EventType,
					"retry_count", msg.RetryCount,
					"error", err)
				continue
			}
			res.Published++
		}
		return nil
	})
	return res, err
}

// processMessage handles a single outbox message.
func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) error {
	q := r.txManager.GetQuerier(ctx)

	if err := r.handler.Handle(ctx, msg); err != nil {
		nextRetry := time.Now().UTC().Add(time.Duration(msg.RetryCount+1) * r.cfg.RetryBase)
		_, updateErr := q.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = retry_count + 1,
			    last_error = $1,
			    next_retry_at = $2,
			    status = CASE WHEN retry_count + 1 >= $3 THEN $4 ELSE status END
			WHERE id = $5
		`, err.Error(), nextRetry, r.cfg.MaxRetries, OutboxStatusFailed, msg.ID)
		if updateErr != nil {
			return fmt.Errorf("update failed message: %w", updateErr)
		}
		return err
	}

	_, err := q.Exec(ctx, `
		UPDATE sys_outbox
		SET status = $1, published_at = $2
		WHERE id = $3
	`, OutboxStatusPublished, time.Now().UTC(), msg.ID)
	return err
}

// MoveToDLQ moves messages that exhausted their retries to sys_outbox_dlq.
func (r *OutboxRelay) MoveToDLQ(ctx context.Context) (int64, error) {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		WITH moved AS (
			DELETE FROM sys_outbox
			WHERE status = $1
			RETURNING *
		)
		INSERT INTO sys_outbox_dlq
		SELECT *, NOW() AS failed_at, last_error AS failure_reason FROM moved
	`, OutboxStatusFailed)
	if err != nil {
		return 0, fmt.Errorf("move to DLQ: %w", err)
	}
	return result.RowsAffected(), nil
}

// PendingCount reports the outbox backlog for metrics.
func (r *OutboxRelay) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM sys_outbox WHERE status = $1", OutboxStatusPending).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending outbox: %w", err)
	}
	return n, nil
}
