package memory

import (
	"context"
	"sort"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create inserts a new account. Names are unique per ledger.
func (r *AccountRepository) Create(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ledgers[account.LedgerID]; !ok {
		return domain.ErrLedgerNotFound
	}

	for _, a := range s.accounts {
		if a.LedgerID == account.LedgerID && a.Name == account.Name {
			return domain.ErrAccountNameTaken
		}
	}

	s.accounts[account.ID] = cloneAccount(account)
	txOf(tx).onRollback(func() {
		delete(s.accounts, account.ID)
	})
	return nil
}

// GetByID retrieves an account owned by ownerID.
func (r *AccountRepository) GetByID(_ context.Context, ownerID, id string) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok || a.OwnerID != ownerID {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

// GetByName finds an account by its exact name within a ledger.
func (r *AccountRepository) GetByName(_ context.Context, ledgerID, ownerID, name string) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.LedgerID == ledgerID && a.OwnerID == ownerID && a.Name == name {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// GetByIDsForUpdate locks the accounts in the order given and returns the
// ones that exist.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	t := txOf(tx)
	if t != nil {
		for _, id := range ids {
			if err := t.lock(ctx, accountLockKey(id)); err != nil {
				return nil, err
			}
		}
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			accounts = append(accounts, cloneAccount(a))
		}
	}
	return accounts, nil
}

// ListByLedger returns the ledger's accounts sorted by name.
func (r *AccountRepository) ListByLedger(_ context.Context, ledgerID, ownerID string) ([]*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := []*domain.Account{}
	for _, a := range s.accounts {
		if a.LedgerID == ledgerID && a.OwnerID == ownerID {
			accounts = append(accounts, cloneAccount(a))
		}
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})
	return accounts, nil
}

// Delete removes an account.
func (r *AccountRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}

	delete(s.accounts, id)
	txOf(tx).onRollback(func() {
		s.accounts[id] = a
	})
	return nil
}
