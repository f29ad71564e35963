package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countTransactionsByAccount = `-- name: CountTransactionsByAccount :one
SELECT COUNT(*) FROM transactions
WHERE debit_account_id = $1 OR credit_account_id = $1
`

func (q *Queries) CountTransactionsByAccount(ctx context.Context, debitAccountID string) (int64, error) {
	row := q.db.QueryRow(ctx, countTransactionsByAccount, debitAccountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (
    id, ledger_id, owner_id, date, description, amount,
    debit_account_id, credit_account_id, status, metadata, reversal_of, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING sequence
`

type CreateTransactionParams struct {
	ID              string             `json:"id"`
	LedgerID        string             `json:"ledger_id"`
	OwnerID         string             `json:"owner_id"`
	Date            pgtype.Date        `json:"date"`
	Description     string             `json:"description"`
	Amount          int64              `json:"amount"`
	DebitAccountID  string             `json:"debit_account_id"`
	CreditAccountID string             `json:"credit_account_id"`
	Status          string             `json:"status"`
	Metadata        []byte             `json:"metadata"`
	ReversalOf      pgtype.Text        `json:"reversal_of"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRow(ctx, createTransaction,
		arg.ID,
		arg.LedgerID,
		arg.OwnerID,
		arg.Date,
		arg.Description,
		arg.Amount,
		arg.DebitAccountID,
		arg.CreditAccountID,
		arg.Status,
		arg.Metadata,
		arg.ReversalOf,
		arg.CreatedAt,
	)
	var sequence int64
	err := row.Scan(&sequence)
	return sequence, err
}

const getTransactionByID = `-- name: GetTransactionByID :one
SELECT id, ledger_id, owner_id, date, description, amount, debit_account_id, credit_account_id, status, metadata, reversal_of, deleted_at, sequence, created_at FROM transactions WHERE id = $1 AND owner_id = $2
`

type GetTransactionByIDParams struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

func (q *Queries) GetTransactionByID(ctx context.Context, arg GetTransactionByIDParams) (Transaction, error) {
	row := q.db.QueryRow(ctx, getTransactionByID, arg.ID, arg.OwnerID)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.LedgerID,
		&i.OwnerID,
		&i.Date,
		&i.Description,
		&i.Amount,
		&i.DebitAccountID,
		&i.CreditAccountID,
		&i.Status,
		&i.Metadata,
		&i.ReversalOf,
		&i.DeletedAt,
		&i.Sequence,
		&i.CreatedAt,
	)
	return i, err
}

const getTransactionByIDForUpdate = `-- name: GetTransactionByIDForUpdate :one
SELECT id, ledger_id, owner_id, date, description, amount, debit_account_id, credit_account_id, status, metadata, reversal_of, deleted_at, sequence, created_at FROM transactions WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetTransactionByIDForUpdate(ctx context.Context, id string) (Transaction, error) {
	row := q.db.QueryRow(ctx, getTransactionByIDForUpdate, id)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.LedgerID,
		&i.OwnerID,
		&i.Date,
		&i.Description,
		&i.Amount,
		&i.DebitAccountID,
		&i.CreditAccountID,
		&i.Status,
		&i.Metadata,
		&i.ReversalOf,
		&i.DeletedAt,
		&i.Sequence,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactionsByAccount = `-- name: ListTransactionsByAccount :many
SELECT id, ledger_id, owner_id, date, description, amount, debit_account_id, credit_account_id, status, metadata, reversal_of, deleted_at, sequence, created_at FROM transactions
WHERE debit_account_id = $1 OR credit_account_id = $1
ORDER BY sequence
`

func (q *Queries) ListTransactionsByAccount(ctx context.Context, debitAccountID string) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsByAccount, debitAccountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.LedgerID,
			&i.OwnerID,
			&i.Date,
			&i.Description,
			&i.Amount,
			&i.DebitAccountID,
			&i.CreditAccountID,
			&i.Status,
			&i.Metadata,
			&i.ReversalOf,
			&i.DeletedAt,
			&i.Sequence,
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

const listTransactionsByLedger = `-- name: ListTransactionsByLedger :many
SELECT id, ledger_id, owner_id, date, description, amount, debit_account_id, credit_account_id, status, metadata, reversal_of, deleted_at, sequence, created_at FROM transactions
WHERE ledger_id = $1 AND owner_id = $2
ORDER BY sequence DESC
LIMIT $3 OFFSET $4
`

type ListTransactionsByLedgerParams struct {
	LedgerID string `json:"ledger_id"`
	OwnerID  string `json:"owner_id"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}

func (q *Queries) ListTransactionsByLedger(ctx context.Context, arg ListTransactionsByLedgerParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsByLedger,
		arg.LedgerID,
		arg.OwnerID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.LedgerID,
			&i.OwnerID,
			&i.Date,
			&i.Description,
			&i.Amount,
			&i.DebitAccountID,
			&i.CreditAccountID,
			&i.Status,
			&i.Metadata,
			&i.ReversalOf,
			&i.DeletedAt,
			&i.Sequence,
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

const markTransactionDeleted = `-- name: MarkTransactionDeleted :execrows
UPDATE transactions SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL
`

type MarkTransactionDeletedParams struct {
	ID        string             `json:"id"`
	DeletedAt pgtype.Timestamptz `json:"deleted_at"`
}

func (q *Queries) MarkTransactionDeleted(ctx context.Context, arg MarkTransactionDeletedParams) (int64, error) {
	result, err := q.db.Exec(ctx, markTransactionDeleted, arg.ID, arg.DeletedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
