package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/j0lvera/pgbudget/internal/adapter/repository/memory"
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/metrics"
)

func seedEvents(t *testing.T, repo *memory.OutboxRepository, ids ...string) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range ids {
		event := domain.NewOutboxEvent(id, domain.AggregateTypeTransaction, "t-"+id,
			domain.EventTypeTransactionPosted, map[string]any{"amount": 100 * (i + 1)}, base.Add(time.Duration(i)*time.Second))
		if err := repo.Create(context.Background(), nil, event); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
}

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := memory.NewOutboxRepository(memory.NewStore())
	seedEvents(t, repo, "evt-1")
	pub := &stubPublisher{}
	m := metrics.New(prometheus.NewRegistry())
	ep := newTestPublisher(repo, pub, m)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-1" {
		t.Fatalf("expected evt-1 published, got %#v", pub.published)
	}
	remaining, _ := repo.GetUnpublished(context.Background(), 10)
	if len(remaining) != 0 {
		t.Fatalf("expected event to be marked published, %d remain", len(remaining))
	}
	if got := testutil.ToFloat64(m.OutboxPublished); got != 1 {
		t.Fatalf("expected 1 published in metrics, got %v", got)
	}
}

func TestProcessEventsContinuesOnPublishError(t *testing.T) {
	repo := memory.NewOutboxRepository(memory.NewStore())
	seedEvents(t, repo, "evt-1", "evt-2")
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("broker down")},
	}
	m := metrics.New(prometheus.NewRegistry())
	ep := newTestPublisher(repo, pub, m)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", pub.published)
	}
	remaining, _ := repo.GetUnpublished(context.Background(), 10)
	if len(remaining) != 1 || remaining[0].ID != "evt-1" {
		t.Fatalf("expected evt-1 to stay unpublished, got %#v", remaining)
	}
	if got := testutil.ToFloat64(m.OutboxFailures); got != 1 {
		t.Fatalf("expected 1 failure in metrics, got %v", got)
	}

	// The failed event goes out on the next pass.
	delete(pub.errorsByID, "evt-1")
	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(pub.published) != 2 || pub.published[1].ID != "evt-1" {
		t.Fatalf("expected evt-1 on retry, got %#v", pub.published)
	}
}

func TestCleanupDeletesOldPublishedEvents(t *testing.T) {
	repo := memory.NewOutboxRepository(memory.NewStore())
	seedEvents(t, repo, "old", "fresh")
	ctx := context.Background()

	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_ = repo.MarkPublished(ctx, "old", now.Add(-48*time.Hour))
	_ = repo.MarkPublished(ctx, "fresh", now.Add(-time.Hour))

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  &stubPublisher{},
		Logger:     zerolog.Nop(),
		Retention:  24 * time.Hour,
	})
	ep.now = func() time.Time { return now }

	if err := ep.cleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n := repo.Len(); n != 1 {
		t.Fatalf("expected one event kept, got %d", n)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := memory.NewOutboxRepository(memory.NewStore())
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub, nil)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisherWritesPayload(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))

	event := domain.NewOutboxEvent("evt-1", domain.AggregateTypeLedger, "l1", domain.EventTypeLedgerCreated,
		map[string]any{"name": "Personal"}, time.Now())
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"event_type":"ledger.created"`, `"payload":{"name":"Personal"}`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log line %s", want, out)
		}
	}
}

func newTestPublisher(repo *memory.OutboxRepository, pub *stubPublisher, m *metrics.Metrics) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		Metrics:    m,
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
