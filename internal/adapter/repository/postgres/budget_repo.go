package postgres

import (
	"context"
	"fmt"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/postgres/generated"
)

// BudgetRepository implements usecase.BudgetRepository with aggregate
// queries over active transactions.
type BudgetRepository struct {
	queries *generated.Queries
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db generated.DBTX) *BudgetRepository {
	return &BudgetRepository{queries: generated.New(db)}
}

// CategoryFlows sums assignments, inflows and outflows per account.
func (r *BudgetRepository) CategoryFlows(ctx context.Context, ledgerID, incomeAccountID string, period domain.Period) (map[string]domain.CategoryFlow, error) {
	rows, err := r.queries.CategoryFlows(ctx, generated.CategoryFlowsParams{
		LedgerID:        ledgerID,
		StartDate:       timePtrToPgDate(period.Start),
		EndDate:         timePtrToPgDate(period.End),
		IncomeAccountID: incomeAccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category flows: %w", err)
	}

	flows := make(map[string]domain.CategoryFlow, len(rows))
	for _, row := range rows {
		flows[row.AccountID] = domain.CategoryFlow{
			CategoryID: row.AccountID,
			Budgeted:   row.Budgeted,
			Inflow:     row.Inflow,
			Outflow:    row.Outflow,
		}
	}
	return flows, nil
}

// IncomeFlow sums what reached and left the Income account.
func (r *BudgetRepository) IncomeFlow(ctx context.Context, ledgerID, incomeAccountID string, period domain.Period) (domain.IncomeFlow, error) {
	row, err := r.queries.IncomeFlow(ctx, generated.IncomeFlowParams{
		IncomeAccountID: incomeAccountID,
		LedgerID:        ledgerID,
		StartDate:       timePtrToPgDate(period.Start),
		EndDate:         timePtrToPgDate(period.End),
	})
	if err != nil {
		return domain.IncomeFlow{}, fmt.Errorf("failed to aggregate income flow: %w", err)
	}

	return domain.IncomeFlow{
		Credits:  row.Credits,
		Debits:   row.Debits,
		Assigned: row.Assigned,
	}, nil
}
