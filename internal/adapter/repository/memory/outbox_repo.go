package memory

import (
	"context"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stores an unpublished event.
func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outbox = append(s.outbox, cloneEvent(event))
	txOf(tx).onRollback(func() {
		for i := len(s.outbox) - 1; i >= 0; i-- {
			if s.outbox[i].ID == event.ID {
				s.outbox = append(s.outbox[:i:i], s.outbox[i+1:]...)
				break
			}
		}
	})
	return nil
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []*domain.OutboxEvent{}
	for _, e := range s.outbox {
		if e.Published {
			continue
		}
		events = append(events, cloneEvent(e))
		if limit > 0 && len(events) == limit {
			break
		}
	}
	return events, nil
}

// MarkPublished flags an event as delivered.
func (r *OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.outbox {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
			return nil
		}
	}
	return nil
}

// DeletePublished drops events published before the cutoff.
func (r *OutboxRepository) DeletePublished(_ context.Context, before time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.outbox[:0:0]
	for _, e := range s.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	s.outbox = kept
	return nil
}

// Len counts stored events, published or not.
func (r *OutboxRepository) Len() int {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.outbox)
}
