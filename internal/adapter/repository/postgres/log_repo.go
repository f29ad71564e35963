package postgres

import (
	"context"
	"fmt"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/postgres/generated"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// TransactionLogRepository implements usecase.TransactionLogRepository.
type TransactionLogRepository struct {
	queries *generated.Queries
}

// NewTransactionLogRepository creates a new TransactionLogRepository.
func NewTransactionLogRepository(db generated.DBTX) *TransactionLogRepository {
	return &TransactionLogRepository{queries: generated.New(db)}
}

// Create appends a log row.
func (r *TransactionLogRepository) Create(ctx context.Context, tx usecase.Transaction, log *domain.TransactionLog) error {
	err := queries(r.queries, tx).CreateTransactionLog(ctx, generated.CreateTransactionLogParams{
		ID:                      log.ID,
		LedgerID:                log.LedgerID,
		OwnerID:                 log.OwnerID,
		OriginalTransactionID:   log.OriginalTransactionID,
		ReversalTransactionID:   stringPtrToPgText(log.ReversalTransactionID),
		CorrectionTransactionID: stringPtrToPgText(log.CorrectionTransactionID),
		MutationType:            string(log.MutationType),
		Reason:                  log.Reason,
		CreatedAt:               timeToPgTimestamptz(log.CreatedAt),
	})
	if err != nil {
		return translate(err, nil, nil, domain.ErrTransactionNotFound)
	}
	return nil
}

// ListByTransaction lists the log rows that mention the transaction in any
// role, oldest first.
func (r *TransactionLogRepository) ListByTransaction(ctx context.Context, ownerID, transactionID string) ([]*domain.TransactionLog, error) {
	rows, err := r.queries.ListTransactionLogsByTransaction(ctx, generated.ListTransactionLogsByTransactionParams{
		OwnerID:       ownerID,
		TransactionID: transactionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction logs: %w", err)
	}

	logs := make([]*domain.TransactionLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, &domain.TransactionLog{
			ID:                      row.ID,
			LedgerID:                row.LedgerID,
			OwnerID:                 row.OwnerID,
			OriginalTransactionID:   row.OriginalTransactionID,
			ReversalTransactionID:   pgTextToStringPtr(row.ReversalTransactionID),
			CorrectionTransactionID: pgTextToStringPtr(row.CorrectionTransactionID),
			MutationType:            domain.MutationType(row.MutationType),
			Reason:                  row.Reason,
			CreatedAt:               row.CreatedAt.Time,
		})
	}
	return logs, nil
}
