package memory

import (
	"context"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// TransactionLogRepository implements usecase.TransactionLogRepository.
type TransactionLogRepository struct {
	store *Store
}

// NewTransactionLogRepository creates a new TransactionLogRepository.
func NewTransactionLogRepository(store *Store) *TransactionLogRepository {
	return &TransactionLogRepository{store: store}
}

// Create appends a log row.
func (r *TransactionLogRepository) Create(_ context.Context, tx usecase.Transaction, log *domain.TransactionLog) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, cloneLog(log))
	txOf(tx).onRollback(func() {
		for i := len(s.logs) - 1; i >= 0; i-- {
			if s.logs[i].ID == log.ID {
				s.logs = append(s.logs[:i:i], s.logs[i+1:]...)
				break
			}
		}
	})
	return nil
}

// ListByTransaction returns every log row naming the transaction as original,
// reversal or correction, oldest first.
func (r *TransactionLogRepository) ListByTransaction(_ context.Context, ownerID, transactionID string) ([]*domain.TransactionLog, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := []*domain.TransactionLog{}
	for _, l := range s.logs {
		if l.OwnerID != ownerID {
			continue
		}
		if l.OriginalTransactionID == transactionID ||
			(l.ReversalTransactionID != nil && *l.ReversalTransactionID == transactionID) ||
			(l.CorrectionTransactionID != nil && *l.CorrectionTransactionID == transactionID) {
			logs = append(logs, cloneLog(l))
		}
	}
	return logs, nil
}
