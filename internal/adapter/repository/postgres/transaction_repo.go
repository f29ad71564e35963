package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/postgres/generated"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a transaction and stores the assigned sequence on t.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	metadata, err := marshalMetadata(t.Metadata)
	if err != nil {
		return err
	}

	seq, err := queries(r.queries, tx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:              t.ID,
		LedgerID:        t.LedgerID,
		OwnerID:         t.OwnerID,
		Date:            timeToPgDate(t.Date),
		Description:     t.Description,
		Amount:          t.Amount,
		DebitAccountID:  t.DebitAccountID,
		CreditAccountID: t.CreditAccountID,
		Status:          string(t.Status),
		Metadata:        metadata,
		ReversalOf:      stringPtrToPgText(t.ReversalOf),
		CreatedAt:       timeToPgTimestamptz(t.CreatedAt),
	})
	if err != nil {
		return translate(err, nil, nil, domain.ErrAccountNotFound)
	}

	t.Sequence = seq
	return nil
}

// GetByID retrieves a transaction owned by ownerID.
func (r *TransactionRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, generated.GetTransactionByIDParams{ID: id, OwnerID: ownerID})
	if err != nil {
		return nil, translate(err, domain.ErrTransactionNotFound, nil, nil)
	}
	return rowToTransaction(row), nil
}

// GetByIDForUpdate retrieves a transaction and locks its row for the rest
// of tx.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	row, err := queries(r.queries, tx).GetTransactionByIDForUpdate(ctx, id)
	if err != nil {
		return nil, translate(err, domain.ErrTransactionNotFound, nil, nil)
	}
	return rowToTransaction(row), nil
}

// MarkDeleted sets deleted_at once. A transaction that is already deleted
// is reported as reversed.
func (r *TransactionRepository) MarkDeleted(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	n, err := queries(r.queries, tx).MarkTransactionDeleted(ctx, generated.MarkTransactionDeletedParams{
		ID:        id,
		DeletedAt: timeToPgTimestamptz(deletedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to mark transaction deleted: %w", err)
	}
	if n == 0 {
		return domain.ErrTransactionReversed
	}
	return nil
}

// ListByLedger lists a ledger's transactions newest first.
func (r *TransactionRepository) ListByLedger(ctx context.Context, ledgerID, ownerID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByLedger(ctx, generated.ListTransactionsByLedgerParams{
		LedgerID: ledgerID,
		OwnerID:  ownerID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return rowsToTransactions(rows), nil
}

// ListByAccount lists every transaction touching the account in sequence
// order.
func (r *TransactionRepository) ListByAccount(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Transaction, error) {
	rows, err := queries(r.queries, tx).ListTransactionsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account transactions: %w", err)
	}
	return rowsToTransactions(rows), nil
}

// CountByAccount counts the transactions touching the account.
func (r *TransactionRepository) CountByAccount(ctx context.Context, tx usecase.Transaction, accountID string) (int, error) {
	n, err := queries(r.queries, tx).CountTransactionsByAccount(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to count account transactions: %w", err)
	}
	return int(n), nil
}

func rowsToTransactions(rows []generated.Transaction) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTransaction(row))
	}
	return out
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:              row.ID,
		LedgerID:        row.LedgerID,
		OwnerID:         row.OwnerID,
		Date:            row.Date.Time,
		Description:     row.Description,
		Amount:          row.Amount,
		DebitAccountID:  row.DebitAccountID,
		CreditAccountID: row.CreditAccountID,
		Status:          domain.TransactionStatus(row.Status),
		Metadata:        unmarshalMetadata(row.Metadata),
		ReversalOf:      pgTextToStringPtr(row.ReversalOf),
		DeletedAt:       pgTimestamptzToTimePtr(row.DeletedAt),
		Sequence:        row.Sequence,
		CreatedAt:       row.CreatedAt.Time,
	}
}
