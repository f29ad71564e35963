package memory

import (
	"context"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create inserts t and assigns its insertion sequence.
func (r *TransactionRepository) Create(_ context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[t.DebitAccountID]; !ok {
		return domain.ErrAccountNotFound
	}
	if _, ok := s.accounts[t.CreditAccountID]; !ok {
		return domain.ErrAccountNotFound
	}

	s.txSeq++
	t.Sequence = s.txSeq

	s.transactions[t.ID] = cloneTransaction(t)
	s.txOrder = append(s.txOrder, t.ID)

	txOf(tx).onRollback(func() {
		delete(s.transactions, t.ID)
		for i := len(s.txOrder) - 1; i >= 0; i-- {
			if s.txOrder[i] == t.ID {
				s.txOrder = append(s.txOrder[:i:i], s.txOrder[i+1:]...)
				break
			}
		}
	})
	return nil
}

// GetByID retrieves a transaction owned by ownerID.
func (r *TransactionRepository) GetByID(_ context.Context, ownerID, id string) (*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTransactionNotFound
	}
	return cloneTransaction(t), nil
}

// GetByIDForUpdate locks the transaction row and reads it.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if t := txOf(tx); t != nil {
		if err := t.lock(ctx, transactionLockKey(id)); err != nil {
			return nil, err
		}
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return cloneTransaction(t), nil
}

// MarkDeleted sets deleted_at on a transaction.
func (r *TransactionRepository) MarkDeleted(_ context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}

	prev := t.DeletedAt
	at := deletedAt
	t.DeletedAt = &at

	txOf(tx).onRollback(func() {
		t.DeletedAt = prev
	})
	return nil
}

// ListByLedger returns the ledger's transactions newest first.
func (r *TransactionRepository) ListByLedger(_ context.Context, ledgerID, ownerID string, limit, offset int) ([]*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := []*domain.Transaction{}
	for i := len(s.txOrder) - 1; i >= 0; i-- {
		t := s.transactions[s.txOrder[i]]
		if t.LedgerID == ledgerID && t.OwnerID == ownerID {
			transactions = append(transactions, cloneTransaction(t))
		}
	}
	return page(transactions, limit, offset), nil
}

// ListByAccount returns every transaction touching the account in insertion
// order.
func (r *TransactionRepository) ListByAccount(_ context.Context, _ usecase.Transaction, accountID string) ([]*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := []*domain.Transaction{}
	for _, id := range s.txOrder {
		t := s.transactions[id]
		if t.Touches(accountID) {
			transactions = append(transactions, cloneTransaction(t))
		}
	}
	return transactions, nil
}

// CountByAccount counts the transactions touching the account.
func (r *TransactionRepository) CountByAccount(_ context.Context, _ usecase.Transaction, accountID string) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.transactions {
		if t.Touches(accountID) {
			count++
		}
	}
	return count, nil
}
