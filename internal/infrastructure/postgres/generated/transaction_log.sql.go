package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createTransactionLog = `-- name: CreateTransactionLog :exec
INSERT INTO transaction_logs (
    id, ledger_id, owner_id, original_transaction_id, reversal_transaction_id,
    correction_transaction_id, mutation_type, reason, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateTransactionLogParams struct {
	ID                      string             `json:"id"`
	LedgerID                string             `json:"ledger_id"`
	OwnerID                 string             `json:"owner_id"`
	OriginalTransactionID   string             `json:"original_transaction_id"`
	ReversalTransactionID   pgtype.Text        `json:"reversal_transaction_id"`
	CorrectionTransactionID pgtype.Text        `json:"correction_transaction_id"`
	MutationType            string             `json:"mutation_type"`
	Reason                  string             `json:"reason"`
	CreatedAt               pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateTransactionLog(ctx context.Context, arg CreateTransactionLogParams) error {
	_, err := q.db.Exec(ctx, createTransactionLog,
		arg.ID,
		arg.LedgerID,
		arg.OwnerID,
		arg.OriginalTransactionID,
		arg.ReversalTransactionID,
		arg.CorrectionTransactionID,
		arg.MutationType,
		arg.Reason,
		arg.CreatedAt,
	)
	return err
}

const listTransactionLogsByTransaction = `-- name: ListTransactionLogsByTransaction :many
SELECT id, ledger_id, owner_id, original_transaction_id, reversal_transaction_id, correction_transaction_id, mutation_type, reason, created_at FROM transaction_logs
WHERE owner_id = $1
  AND (original_transaction_id = $2
    OR reversal_transaction_id = $2
    OR correction_transaction_id = $2)
ORDER BY created_at, id
`

type ListTransactionLogsByTransactionParams struct {
	OwnerID       string `json:"owner_id"`
	TransactionID string `json:"transaction_id"`
}

func (q *Queries) ListTransactionLogsByTransaction(ctx context.Context, arg ListTransactionLogsByTransactionParams) ([]TransactionLog, error) {
	rows, err := q.db.Query(ctx, listTransactionLogsByTransaction, arg.OwnerID, arg.TransactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionLog{}
	for rows.Next() {
		var i TransactionLog
		if err := rows.Scan(
			&i.ID,
			&i.LedgerID,
			&i.OwnerID,
			&i.OriginalTransactionID,
			&i.ReversalTransactionID,
			&i.CorrectionTransactionID,
			&i.MutationType,
			&i.Reason,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
