// Package eventpublisher relays outbox events to an external Publisher.
package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/metrics"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// EventPublisher handles publishing events from the outbox.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	batchSize  int
	interval   time.Duration
	retention  time.Duration
	now        func() time.Time
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
	// Retention is how long published events are kept. Zero keeps them
	// forever.
	Retention time.Duration
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	ep.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			ep.tick(ctx)
		}
	}
}

func (ep *EventPublisher) tick(ctx context.Context) {
	if err := ep.processEvents(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events")
	}
	if err := ep.cleanup(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error deleting published events")
	}
}

// processEvents fetches and publishes a batch of unpublished events.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")

	for _, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			if ep.metrics != nil {
				ep.metrics.OutboxFailures.Inc()
			}
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			// Left unpublished; the next tick retries it.
			continue
		}

		if ep.metrics != nil {
			ep.metrics.OutboxPublished.Inc()
		}

		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
		}
	}

	return nil
}

func (ep *EventPublisher) cleanup(ctx context.Context) error {
	if ep.retention <= 0 {
		return nil
	}
	return ep.outboxRepo.DeletePublished(ctx, ep.now().Add(-ep.retention))
}

// LogPublisher is a publisher that writes events to the log. It is used when
// no broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
