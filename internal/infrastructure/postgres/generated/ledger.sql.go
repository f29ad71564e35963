package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLedger = `-- name: CreateLedger :exec
INSERT INTO ledgers (id, owner_id, name, description, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateLedgerParams struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"owner_id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Metadata    []byte             `json:"metadata"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateLedger(ctx context.Context, arg CreateLedgerParams) error {
	_, err := q.db.Exec(ctx, createLedger,
		arg.ID,
		arg.OwnerID,
		arg.Name,
		arg.Description,
		arg.Metadata,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteLedger = `-- name: DeleteLedger :execrows
DELETE FROM ledgers WHERE id = $1 AND owner_id = $2
`

type DeleteLedgerParams struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

func (q *Queries) DeleteLedger(ctx context.Context, arg DeleteLedgerParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteLedger, arg.ID, arg.OwnerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getLedgerByID = `-- name: GetLedgerByID :one
SELECT id, owner_id, name, description, metadata, created_at, updated_at FROM ledgers WHERE id = $1 AND owner_id = $2
`

type GetLedgerByIDParams struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

func (q *Queries) GetLedgerByID(ctx context.Context, arg GetLedgerByIDParams) (Ledger, error) {
	row := q.db.QueryRow(ctx, getLedgerByID, arg.ID, arg.OwnerID)
	var i Ledger
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Name,
		&i.Description,
		&i.Metadata,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listLedgers = `-- name: ListLedgers :many
SELECT id, owner_id, name, description, metadata, created_at, updated_at FROM ledgers
WHERE owner_id = $1
ORDER BY created_at, id
LIMIT $2 OFFSET $3
`

type ListLedgersParams struct {
	OwnerID string `json:"owner_id"`
	Limit   int32  `json:"limit"`
	Offset  int32  `json:"offset"`
}

func (q *Queries) ListLedgers(ctx context.Context, arg ListLedgersParams) ([]Ledger, error) {
	rows, err := q.db.Query(ctx, listLedgers, arg.OwnerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Ledger{}
	for rows.Next() {
		var i Ledger
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Name,
			&i.Description,
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
