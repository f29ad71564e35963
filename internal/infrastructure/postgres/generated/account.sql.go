package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (id, ledger_id, owner_id, name, description, type, internal_type, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateAccountParams struct {
	ID           string             `json:"id"`
	LedgerID     string             `json:"ledger_id"`
	OwnerID      string             `json:"owner_id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Type         string             `json:"type"`
	InternalType string             `json:"internal_type"`
	Metadata     []byte             `json:"metadata"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.Exec(ctx, createAccount,
		arg.ID,
		arg.LedgerID,
		arg.OwnerID,
		arg.Name,
		arg.Description,
		arg.Type,
		arg.InternalType,
		arg.Metadata,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteAccount = `-- name: DeleteAccount :execrows
DELETE FROM accounts WHERE id = $1
`

func (q *Queries) DeleteAccount(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAccount, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, ledger_id, owner_id, name, description, type, internal_type, metadata, created_at, updated_at FROM accounts WHERE id = $1 AND owner_id = $2
`

type GetAccountByIDParams struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

func (q *Queries) GetAccountByID(ctx context.Context, arg GetAccountByIDParams) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByID, arg.ID, arg.OwnerID)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.LedgerID,
		&i.OwnerID,
		&i.Name,
		&i.Description,
		&i.Type,
		&i.InternalType,
		&i.Metadata,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByName = `-- name: GetAccountByName :one
SELECT id, ledger_id, owner_id, name, description, type, internal_type, metadata, created_at, updated_at FROM accounts WHERE ledger_id = $1 AND owner_id = $2 AND name = $3
`

type GetAccountByNameParams struct {
	LedgerID string `json:"ledger_id"`
	OwnerID  string `json:"owner_id"`
	Name     string `json:"name"`
}

func (q *Queries) GetAccountByName(ctx context.Context, arg GetAccountByNameParams) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByName, arg.LedgerID, arg.OwnerID, arg.Name)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.LedgerID,
		&i.OwnerID,
		&i.Name,
		&i.Description,
		&i.Type,
		&i.InternalType,
		&i.Metadata,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountsByIDsForUpdate = `-- name: GetAccountsByIDsForUpdate :many
SELECT id, ledger_id, owner_id, name, description, type, internal_type, metadata, created_at, updated_at FROM accounts
WHERE id = ANY($1::text[])
ORDER BY id
FOR UPDATE
`

func (q *Queries) GetAccountsByIDsForUpdate(ctx context.Context, ids []string) ([]Account, error) {
	rows, err := q.db.Query(ctx, getAccountsByIDsForUpdate, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.LedgerID,
			&i.OwnerID,
			&i.Name,
			&i.Description,
			&i.Type,
			&i.InternalType,
			&i.Metadata,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listAccountsByLedger = `-- name: ListAccountsByLedger :many
SELECT id, ledger_id, owner_id, name, description, type, internal_type, metadata, created_at, updated_at FROM accounts
WHERE ledger_id = $1 AND owner_id = $2
ORDER BY name
`

type ListAccountsByLedgerParams struct {
	LedgerID string `json:"ledger_id"`
	OwnerID  string `json:"owner_id"`
}

func (q *Queries) ListAccountsByLedger(ctx context.Context, arg ListAccountsByLedgerParams) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccountsByLedger, arg.LedgerID, arg.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.LedgerID,
			&i.OwnerID,
			&i.Name,
			&i.Description,
			&i.Type,
			&i.InternalType,
			&i.Metadata,
			&i.CreatedAt,
			&i.UpdatedAt,
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
