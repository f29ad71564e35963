package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/postgres/generated"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// SnapshotRepository implements usecase.SnapshotRepository.
type SnapshotRepository struct {
	queries *generated.Queries
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db generated.DBTX) *SnapshotRepository {
	return &SnapshotRepository{queries: generated.New(db)}
}

// Create appends a snapshot and stores the assigned sequence on it. The
// balance_snapshots_chain check rejects rows whose balance is not
// previous_balance + delta.
func (r *SnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, snapshot *domain.BalanceSnapshot) error {
	seq, err := queries(r.queries, tx).CreateBalanceSnapshot(ctx, generated.CreateBalanceSnapshotParams{
		ID:              snapshot.ID,
		AccountID:       snapshot.AccountID,
		TransactionID:   snapshot.TransactionID,
		LedgerID:        snapshot.LedgerID,
		OwnerID:         snapshot.OwnerID,
		PreviousBalance: snapshot.PreviousBalance,
		Delta:           snapshot.Delta,
		Balance:         snapshot.Balance,
		OperationType:   string(snapshot.OperationType),
		CreatedAt:       timeToPgTimestamptz(snapshot.CreatedAt),
	})
	if err != nil {
		if isCheckViolation(err) {
			return domain.NewEntityError("balance snapshot", snapshot.ID, snapshot.LedgerID, domain.ErrBrokenBalanceChain)
		}
		return fmt.Errorf("failed to create balance snapshot: %w", err)
	}

	snapshot.Sequence = seq
	return nil
}

// GetLatest returns the account's newest snapshot, or nil when it has none.
func (r *SnapshotRepository) GetLatest(ctx context.Context, accountID string) (*domain.BalanceSnapshot, error) {
	return r.GetLatestTx(ctx, nil, accountID)
}

// GetLatestTx is GetLatest inside tx.
func (r *SnapshotRepository) GetLatestTx(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.BalanceSnapshot, error) {
	row, err := queries(r.queries, tx).GetLatestBalanceSnapshot(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest balance snapshot: %w", err)
	}
	return rowToSnapshot(row), nil
}

// ListByAccount lists snapshots newest first. limit <= 0 lists all of them.
func (r *SnapshotRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.BalanceSnapshot, error) {
	if limit < 0 {
		limit = 0
	}

	rows, err := r.queries.ListBalanceSnapshotsByAccount(ctx, generated.ListBalanceSnapshotsByAccountParams{
		AccountID: accountID,
		MaxRows:   int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list balance snapshots: %w", err)
	}

	snapshots := make([]*domain.BalanceSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, rowToSnapshot(row))
	}
	return snapshots, nil
}

// LatestBalances returns the newest balance of every account of the ledger
// that has a snapshot.
func (r *SnapshotRepository) LatestBalances(ctx context.Context, ledgerID string) (map[string]int64, error) {
	rows, err := r.queries.LatestBalancesByLedger(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger balances: %w", err)
	}

	balances := make(map[string]int64, len(rows))
	for _, row := range rows {
		balances[row.AccountID] = row.Balance
	}
	return balances, nil
}

// DeleteByAccount drops an account's whole chain. Only a rebuild does this.
func (r *SnapshotRepository) DeleteByAccount(ctx context.Context, tx usecase.Transaction, accountID string) error {
	if err := queries(r.queries, tx).DeleteBalanceSnapshotsByAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete balance snapshots: %w", err)
	}
	return nil
}

func rowToSnapshot(row generated.BalanceSnapshot) *domain.BalanceSnapshot {
	return &domain.BalanceSnapshot{
		ID:              row.ID,
		AccountID:       row.AccountID,
		TransactionID:   row.TransactionID,
		LedgerID:        row.LedgerID,
		OwnerID:         row.OwnerID,
		PreviousBalance: row.PreviousBalance,
		Delta:           row.Delta,
		Balance:         row.Balance,
		OperationType:   domain.OperationType(row.OperationType),
		Sequence:        row.Sequence,
		CreatedAt:       row.CreatedAt.Time,
	}
}
