package memory

import (
	"context"
	"sort"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Create inserts a new ledger. Names are unique per owner.
func (r *LedgerRepository) Create(_ context.Context, tx usecase.Transaction, ledger *domain.Ledger) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.ledgers {
		if l.OwnerID == ledger.OwnerID && l.Name == ledger.Name {
			return domain.ErrLedgerNameTaken
		}
	}

	s.ledgers[ledger.ID] = cloneLedger(ledger)
	txOf(tx).onRollback(func() {
		delete(s.ledgers, ledger.ID)
	})
	return nil
}

// GetByID retrieves a ledger owned by ownerID.
func (r *LedgerRepository) GetByID(_ context.Context, ownerID, id string) (*domain.Ledger, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[id]
	if !ok || l.OwnerID != ownerID {
		return nil, domain.ErrLedgerNotFound
	}
	return cloneLedger(l), nil
}

// List returns the owner's ledgers oldest first.
func (r *LedgerRepository) List(_ context.Context, ownerID string, limit, offset int) ([]*domain.Ledger, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ledgers []*domain.Ledger
	for _, l := range s.ledgers {
		if l.OwnerID == ownerID {
			ledgers = append(ledgers, cloneLedger(l))
		}
	}

	sort.Slice(ledgers, func(i, j int) bool {
		if ledgers[i].CreatedAt.Equal(ledgers[j].CreatedAt) {
			return ledgers[i].ID < ledgers[j].ID
		}
		return ledgers[i].CreatedAt.Before(ledgers[j].CreatedAt)
	})

	return page(ledgers, limit, offset), nil
}

// Delete removes the ledger and cascades to its accounts, transactions,
// snapshots and log rows.
func (r *LedgerRepository) Delete(_ context.Context, tx usecase.Transaction, ownerID, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[id]
	if !ok || ledger.OwnerID != ownerID {
		return domain.ErrLedgerNotFound
	}

	accounts := make(map[string]*domain.Account)
	snapshots := make(map[string][]*domain.BalanceSnapshot)
	for accountID, a := range s.accounts {
		if a.LedgerID != id {
			continue
		}
		accounts[accountID] = a
		if chain, ok := s.snapshots[accountID]; ok {
			snapshots[accountID] = chain
		}
	}

	transactions := make(map[string]*domain.Transaction)
	for txID, t := range s.transactions {
		if t.LedgerID == id {
			transactions[txID] = t
		}
	}

	prevOrder := s.txOrder
	prevLogs := s.logs

	delete(s.ledgers, id)
	for accountID := range accounts {
		delete(s.accounts, accountID)
		delete(s.snapshots, accountID)
	}
	for txID := range transactions {
		delete(s.transactions, txID)
	}

	order := make([]string, 0, len(s.txOrder))
	for _, txID := range s.txOrder {
		if _, gone := transactions[txID]; !gone {
			order = append(order, txID)
		}
	}
	s.txOrder = order

	logs := make([]*domain.TransactionLog, 0, len(s.logs))
	for _, l := range s.logs {
		if l.LedgerID != id {
			logs = append(logs, l)
		}
	}
	s.logs = logs

	txOf(tx).onRollback(func() {
		s.ledgers[id] = ledger
		for accountID, a := range accounts {
			s.accounts[accountID] = a
		}
		for accountID, chain := range snapshots {
			s.snapshots[accountID] = chain
		}
		for txID, t := range transactions {
			s.transactions[txID] = t
		}
		s.txOrder = prevOrder
		s.logs = prevLogs
	})

	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
