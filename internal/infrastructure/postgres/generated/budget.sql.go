package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const categoryFlows = `-- name: CategoryFlows :many
WITH active AS (
    SELECT t.amount, t.debit_account_id, t.credit_account_id, d.type AS debit_type, c.type AS credit_type
    FROM transactions t
    JOIN accounts d ON d.id = t.debit_account_id
    JOIN accounts c ON c.id = t.credit_account_id
    WHERE t.ledger_id = $1
      AND t.deleted_at IS NULL
      AND t.reversal_of IS NULL
      AND ($2::date IS NULL OR t.date >= $2::date)
      AND ($3::date IS NULL OR t.date <= $3::date)
), flows AS (
    SELECT credit_account_id AS account_id, amount AS budgeted, 0::bigint AS inflow, 0::bigint AS outflow
    FROM active WHERE debit_account_id = $4
    UNION ALL
    SELECT credit_account_id, 0, amount, 0
    FROM active WHERE debit_type IN ('asset', 'liability')
    UNION ALL
    SELECT debit_account_id, 0, 0, amount
    FROM active WHERE credit_type IN ('asset', 'liability')
)
SELECT account_id,
       SUM(budgeted)::bigint AS budgeted,
       SUM(inflow)::bigint   AS inflow,
       SUM(outflow)::bigint  AS outflow
FROM flows
GROUP BY account_id
`

type CategoryFlowsParams struct {
	LedgerID        string      `json:"ledger_id"`
	StartDate       pgtype.Date `json:"start_date"`
	EndDate         pgtype.Date `json:"end_date"`
	IncomeAccountID string      `json:"income_account_id"`
}

type CategoryFlowsRow struct {
	AccountID string `json:"account_id"`
	Budgeted  int64  `json:"budgeted"`
	Inflow    int64  `json:"inflow"`
	Outflow   int64  `json:"outflow"`
}

func (q *Queries) CategoryFlows(ctx context.Context, arg CategoryFlowsParams) ([]CategoryFlowsRow, error) {
	rows, err := q.db.Query(ctx, categoryFlows,
		arg.LedgerID,
		arg.StartDate,
		arg.EndDate,
		arg.IncomeAccountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CategoryFlowsRow{}
	for rows.Next() {
		var i CategoryFlowsRow
		if err := rows.Scan(
			&i.AccountID,
			&i.Budgeted,
			&i.Inflow,
			&i.Outflow,
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

const incomeFlow = `-- name: IncomeFlow :one
SELECT
    COALESCE(SUM(t.amount) FILTER (WHERE t.credit_account_id = $1), 0)::bigint AS credits,
    COALESCE(SUM(t.amount) FILTER (WHERE t.debit_account_id = $1), 0)::bigint AS debits,
    COALESCE(SUM(t.amount) FILTER (
        WHERE t.debit_account_id = $1
          AND c.type = 'equity'
          AND c.name NOT IN ('Income', 'Off-budget', 'Unassigned')
    ), 0)::bigint AS assigned
FROM transactions t
JOIN accounts c ON c.id = t.credit_account_id
WHERE t.ledger_id = $2
  AND t.deleted_at IS NULL
  AND t.reversal_of IS NULL
  AND ($3::date IS NULL OR t.date >= $3::date)
  AND ($4::date IS NULL OR t.date <= $4::date)
`

type IncomeFlowParams struct {
	IncomeAccountID string      `json:"income_account_id"`
	LedgerID        string      `json:"ledger_id"`
	StartDate       pgtype.Date `json:"start_date"`
	EndDate         pgtype.Date `json:"end_date"`
}

type IncomeFlowRow struct {
	Credits  int64 `json:"credits"`
	Debits   int64 `json:"debits"`
	Assigned int64 `json:"assigned"`
}

func (q *Queries) IncomeFlow(ctx context.Context, arg IncomeFlowParams) (IncomeFlowRow, error) {
	row := q.db.QueryRow(ctx, incomeFlow,
		arg.IncomeAccountID,
		arg.LedgerID,
		arg.StartDate,
		arg.EndDate,
	)
	var i IncomeFlowRow
	err := row.Scan(&i.Credits, &i.Debits, &i.Assigned)
	return i, err
}
