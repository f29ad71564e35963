package postgres

import (
	"context"
	"fmt"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/postgres/generated"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository. db is usually a
// *pgxpool.Pool.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Create inserts a ledger.
func (r *LedgerRepository) Create(ctx context.Context, tx usecase.Transaction, ledger *domain.Ledger) error {
	metadata, err := marshalMetadata(ledger.Metadata)
	if err != nil {
		return err
	}

	err = queries(r.queries, tx).CreateLedger(ctx, generated.CreateLedgerParams{
		ID:          ledger.ID,
		OwnerID:     ledger.OwnerID,
		Name:        ledger.Name,
		Description: ledger.Description,
		Metadata:    metadata,
		CreatedAt:   timeToPgTimestamptz(ledger.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(ledger.UpdatedAt),
	})
	if err != nil {
		return translate(err, nil, domain.ErrLedgerNameTaken, nil)
	}
	return nil
}

// GetByID retrieves a ledger owned by ownerID.
func (r *LedgerRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Ledger, error) {
	row, err := r.queries.GetLedgerByID(ctx, generated.GetLedgerByIDParams{ID: id, OwnerID: ownerID})
	if err != nil {
		return nil, translate(err, domain.ErrLedgerNotFound, nil, nil)
	}
	return rowToLedger(row), nil
}

// List lists the owner's ledgers oldest first.
func (r *LedgerRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Ledger, error) {
	rows, err := r.queries.ListLedgers(ctx, generated.ListLedgersParams{
		OwnerID: ownerID,
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}

	ledgers := make([]*domain.Ledger, 0, len(rows))
	for _, row := range rows {
		ledgers = append(ledgers, rowToLedger(row))
	}
	return ledgers, nil
}

// Delete removes a ledger. Accounts, transactions, snapshots and logs go
// with it through ON DELETE CASCADE.
func (r *LedgerRepository) Delete(ctx context.Context, tx usecase.Transaction, ownerID, id string) error {
	n, err := queries(r.queries, tx).DeleteLedger(ctx, generated.DeleteLedgerParams{ID: id, OwnerID: ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	if n == 0 {
		return domain.ErrLedgerNotFound
	}
	return nil
}

func rowToLedger(row generated.Ledger) *domain.Ledger {
	return &domain.Ledger{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Name:        row.Name,
		Description: row.Description,
		Metadata:    unmarshalMetadata(row.Metadata),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}
