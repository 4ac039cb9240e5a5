package domain

import (
	"context"

	"showalert/internal/core/id"
)

// Event is a domain event recorded in the same transaction as the change
// that caused it.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	Type          string
	Payload       any
}

// EventPublisher records events. Implementations must join the caller's
// transaction.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

// EventPublisherFunc adapts a function to EventPublisher.
type EventPublisherFunc func(ctx context.Context, e Event) error

func (f EventPublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }
