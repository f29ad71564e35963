package memory

import (
	"context"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// SnapshotRepository implements usecase.SnapshotRepository. Each account's
// chain is kept oldest first.
type SnapshotRepository struct {
	store *Store
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(store *Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

// Create appends a snapshot to its account's chain.
func (r *SnapshotRepository) Create(_ context.Context, tx usecase.Transaction, snapshot *domain.BalanceSnapshot) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshotSeq++
	snapshot.Sequence = s.snapshotSeq

	accountID := snapshot.AccountID
	s.snapshots[accountID] = append(s.snapshots[accountID], cloneSnapshot(snapshot))

	txOf(tx).onRollback(func() {
		chain := s.snapshots[accountID]
		for i := len(chain) - 1; i >= 0; i-- {
			if chain[i].ID == snapshot.ID {
				s.snapshots[accountID] = append(chain[:i:i], chain[i+1:]...)
				break
			}
		}
		if len(s.snapshots[accountID]) == 0 {
			delete(s.snapshots, accountID)
		}
	})
	return nil
}

// GetLatest returns the account's newest snapshot, or nil.
func (r *SnapshotRepository) GetLatest(ctx context.Context, accountID string) (*domain.BalanceSnapshot, error) {
	return r.GetLatestTx(ctx, nil, accountID)
}

// GetLatestTx returns the account's newest snapshot, or nil.
func (r *SnapshotRepository) GetLatestTx(_ context.Context, _ usecase.Transaction, accountID string) (*domain.BalanceSnapshot, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.snapshots[accountID]
	if len(chain) == 0 {
		return nil, nil
	}
	return cloneSnapshot(chain[len(chain)-1]), nil
}

// ListByAccount returns up to limit snapshots newest first.
func (r *SnapshotRepository) ListByAccount(_ context.Context, accountID string, limit int) ([]*domain.BalanceSnapshot, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.snapshots[accountID]
	snapshots := make([]*domain.BalanceSnapshot, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		if limit > 0 && len(snapshots) == limit {
			break
		}
		snapshots = append(snapshots, cloneSnapshot(chain[i]))
	}
	return snapshots, nil
}

// LatestBalances returns the current balance of every account in the ledger
// with at least one snapshot.
func (r *SnapshotRepository) LatestBalances(_ context.Context, ledgerID string) (map[string]int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	balances := make(map[string]int64)
	for accountID, chain := range s.snapshots {
		if len(chain) == 0 {
			continue
		}
		latest := chain[len(chain)-1]
		if latest.LedgerID == ledgerID {
			balances[accountID] = latest.Balance
		}
	}
	return balances, nil
}

// DeleteByAccount drops the account's whole chain.
func (r *SnapshotRepository) DeleteByAccount(_ context.Context, tx usecase.Transaction, accountID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, ok := s.snapshots[accountID]
	if !ok {
		return nil
	}

	delete(s.snapshots, accountID)
	txOf(tx).onRollback(func() {
		s.snapshots[accountID] = chain
	})
	return nil
}

// Tamper overwrites the stored balance of a snapshot. It exists so callers
// can exercise broken-chain detection.
func (r *SnapshotRepository) Tamper(snapshotID string, balance int64) bool {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chain := range s.snapshots {
		for _, snap := range chain {
			if snap.ID == snapshotID {
				snap.Balance = balance
				return true
			}
		}
	}
	return false
}
