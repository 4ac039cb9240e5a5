// Package messaging delivers outbox messages to RabbitMQ.
package messaging

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"showalert/internal/config"
	"showalert/internal/infrastructure/storage/postgres"
	"showalert/pkg/logger"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ postgres.OutboxHandler = (*Publisher)(nil)

// Publisher implements postgres.OutboxHandler. Events are published to a
// topic exchange with the event type as routing key.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string
	log      *logger.Logger
}

// Dial connects, declares the exchange and a durable queue bound to every
// show event.
func Dial(cfg config.RabbitMQConfig, log *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	p := NewPublisher(ch, cfg.Exchange, log)
	p.conn = conn
	return p, nil
}

func declareTopology(ch *amqp.Channel, cfg config.RabbitMQConfig) error {
	if err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // autoDelete
		false,        // internal
		false,        // noWait
		nil,          // args
	); err != nil {
		return fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	if err := ch.QueueBind(cfg.Queue, "show.#", cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue bind: %w", err)
	}
	return nil
}

// NewPublisher wraps an open channel.
func NewPublisher(ch Channel, exchange string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Default()
	}
	return &Publisher{ch: ch, exchange: exchange, log: log.WithComponent("rabbitmq")}
}

// publishing converts an outbox message. MessageId is the outbox id so
// consumers can drop redeliveries.
func publishing(msg *postgres.OutboxMessage) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID.String(),
		Type:         msg.EventType,
		Timestamp:    msg.CreatedAt,
		Headers: amqp.Table{
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID.String(),
		},
		Body: msg.Payload,
	}
}

// Handle implements postgres.OutboxHandler.
func (p *Publisher) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, msg.EventType, false, false, publishing(msg)); err != nil {
		return fmt.Errorf("publish %s: %w", msg.EventType, err)
	}
	p.log.Debugw("event published", "message_id", msg.ID, "event_type", msg.EventType)
	return nil
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
