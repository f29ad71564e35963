// Package amqp publishes outbox events to a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/j0lvera/pgbudget/internal/domain"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp091.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Message is the JSON body of every published event.
type Message struct {
	ID            string         `json:"id"`
	EventType     string         `json:"event_type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Publisher implements eventpublisher.Publisher on an AMQP topic exchange.
// Each event is routed as <prefix>.<event type>, e.g.
// pgbudget.transaction.posted.
type Publisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	prefix   string
}

// NewPublisher dials the broker and declares a durable topic exchange.
func NewPublisher(url, exchange, routingKeyPrefix string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newPublisherWithChannel(ch, exchange, routingKeyPrefix)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisherWithChannel(ch channel, exchange, routingKeyPrefix string) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{channel: ch, exchange: exchange, prefix: routingKeyPrefix}, nil
}

// RoutingKey returns the routing key for an event type.
func (p *Publisher) RoutingKey(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Publish sends one event as a persistent message. The event id is the
// message id so consumers can drop redeliveries.
func (p *Publisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := json.Marshal(Message{
		ID:            event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		CreatedAt:     event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,                    // exchange
		p.RoutingKey(event.EventType), // routing key
		false,                         // mandatory
		false,                         // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.ID,
			Type:         event.EventType,
			Timestamp:    event.CreatedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
