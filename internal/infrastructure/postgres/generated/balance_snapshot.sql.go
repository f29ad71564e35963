package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createBalanceSnapshot = `-- name: CreateBalanceSnapshot :one
INSERT INTO balance_snapshots (
    id, account_id, transaction_id, ledger_id, owner_id,
    previous_balance, delta, balance, operation_type, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING sequence
`

type CreateBalanceSnapshotParams struct {
	ID              string             `json:"id"`
	AccountID       string             `json:"account_id"`
	TransactionID   string             `json:"transaction_id"`
	LedgerID        string             `json:"ledger_id"`
	OwnerID         string             `json:"owner_id"`
	PreviousBalance int64              `json:"previous_balance"`
	Delta           int64              `json:"delta"`
	Balance         int64              `json:"balance"`
	OperationType   string             `json:"operation_type"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateBalanceSnapshot(ctx context.Context, arg CreateBalanceSnapshotParams) (int64, error) {
	row := q.db.QueryRow(ctx, createBalanceSnapshot,
		arg.ID,
		arg.AccountID,
		arg.TransactionID,
		arg.LedgerID,
		arg.OwnerID,
		arg.PreviousBalance,
		arg.Delta,
		arg.Balance,
		arg.OperationType,
		arg.CreatedAt,
	)
	var sequence int64
	err := row.Scan(&sequence)
	return sequence, err
}

const deleteBalanceSnapshotsByAccount = `-- name: DeleteBalanceSnapshotsByAccount :exec
DELETE FROM balance_snapshots WHERE account_id = $1
`

func (q *Queries) DeleteBalanceSnapshotsByAccount(ctx context.Context, accountID string) error {
	_, err := q.db.Exec(ctx, deleteBalanceSnapshotsByAccount, accountID)
	return err
}

const getLatestBalanceSnapshot = `-- name: GetLatestBalanceSnapshot :one
SELECT id, account_id, transaction_id, ledger_id, owner_id, previous_balance, delta, balance, operation_type, sequence, created_at FROM balance_snapshots
WHERE account_id = $1
ORDER BY sequence DESC
LIMIT 1
`

func (q *Queries) GetLatestBalanceSnapshot(ctx context.Context, accountID string) (BalanceSnapshot, error) {
	row := q.db.QueryRow(ctx, getLatestBalanceSnapshot, accountID)
	var i BalanceSnapshot
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.TransactionID,
		&i.LedgerID,
		&i.OwnerID,
		&i.PreviousBalance,
		&i.Delta,
		&i.Balance,
		&i.OperationType,
		&i.Sequence,
		&i.CreatedAt,
	)
	return i, err
}

const latestBalancesByLedger = `-- name: LatestBalancesByLedger :many
SELECT DISTINCT ON (account_id) account_id, balance
FROM balance_snapshots
WHERE ledger_id = $1
ORDER BY account_id, sequence DESC
`

type LatestBalancesByLedgerRow struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

func (q *Queries) LatestBalancesByLedger(ctx context.Context, ledgerID string) ([]LatestBalancesByLedgerRow, error) {
	rows, err := q.db.Query(ctx, latestBalancesByLedger, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LatestBalancesByLedgerRow{}
	for rows.Next() {
		var i LatestBalancesByLedgerRow
		if err := rows.Scan(&i.AccountID, &i.Balance); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listBalanceSnapshotsByAccount = `-- name: ListBalanceSnapshotsByAccount :many
SELECT id, account_id, transaction_id, ledger_id, owner_id, previous_balance, delta, balance, operation_type, sequence, created_at FROM balance_snapshots
WHERE account_id = $1
ORDER BY sequence DESC
LIMIT NULLIF($2::int, 0)
`

type ListBalanceSnapshotsByAccountParams struct {
	AccountID string `json:"account_id"`
	MaxRows   int32  `json:"max_rows"`
}

func (q *Queries) ListBalanceSnapshotsByAccount(ctx context.Context, arg ListBalanceSnapshotsByAccountParams) ([]BalanceSnapshot, error) {
	rows, err := q.db.Query(ctx, listBalanceSnapshotsByAccount, arg.AccountID, arg.MaxRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BalanceSnapshot{}
	for rows.Next() {
		var i BalanceSnapshot
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.TransactionID,
			&i.LedgerID,
			&i.OwnerID,
			&i.PreviousBalance,
			&i.Delta,
			&i.Balance,
			&i.OperationType,
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
