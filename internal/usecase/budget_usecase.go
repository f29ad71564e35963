package usecase

import (
	"context"
	"sort"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// BudgetUseCase computes the envelope-budgeting view of a ledger.
type BudgetUseCase struct {
	ledgerRepo   LedgerRepository
	accountRepo  AccountRepository
	snapshotRepo SnapshotRepository
	budgetRepo   BudgetRepository
}

// NewBudgetUseCase creates a new BudgetUseCase.
func NewBudgetUseCase(
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	snapshotRepo SnapshotRepository,
	budgetRepo BudgetRepository,
) *BudgetUseCase {
	return &BudgetUseCase{
		ledgerRepo:   ledgerRepo,
		accountRepo:  accountRepo,
		snapshotRepo: snapshotRepo,
		budgetRepo:   budgetRepo,
	}
}

// BudgetQuery selects a ledger and an optional inclusive date window.
type BudgetQuery struct {
	LedgerID string
	OwnerID  string
	Period   domain.Period
}

// GetBudgetStatus returns one row per category, sorted by name. Without a
// date filter a category's balance is its materialized balance; with one it
// is budgeted plus activity within the window.
func (uc *BudgetUseCase) GetBudgetStatus(ctx context.Context, query BudgetQuery) ([]*domain.CategoryStatus, error) {
	if err := query.Period.Validate(); err != nil {
		return nil, err
	}

	accounts, income, err := uc.ledgerAccounts(ctx, query.LedgerID, query.OwnerID)
	if err != nil {
		return nil, err
	}

	flows, err := uc.budgetRepo.CategoryFlows(ctx, query.LedgerID, income.ID, query.Period)
	if err != nil {
		return nil, err
	}

	var balances map[string]int64
	if query.Period.IsZero() {
		balances, err = uc.snapshotRepo.LatestBalances(ctx, query.LedgerID)
		if err != nil {
			return nil, err
		}
	}

	statuses := make([]*domain.CategoryStatus, 0, len(accounts))
	for _, a := range accounts {
		if !a.IsCategory() {
			continue
		}

		flow := flows[a.ID]
		status := &domain.CategoryStatus{
			CategoryID:   a.ID,
			CategoryName: a.Name,
			Budgeted:     flow.Budgeted,
			Activity:     flow.Activity(),
		}
		if balances != nil {
			status.Balance = balances[a.ID]
		} else {
			status.Balance = status.Budgeted + status.Activity
		}

		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].CategoryName < statuses[j].CategoryName
	})

	return statuses, nil
}

// GetBudgetTotals summarizes income, assignments and the money still left to
// budget.
func (uc *BudgetUseCase) GetBudgetTotals(ctx context.Context, query BudgetQuery) (*domain.BudgetTotals, error) {
	if err := query.Period.Validate(); err != nil {
		return nil, err
	}

	_, income, err := uc.ledgerAccounts(ctx, query.LedgerID, query.OwnerID)
	if err != nil {
		return nil, err
	}

	flow, err := uc.budgetRepo.IncomeFlow(ctx, query.LedgerID, income.ID, query.Period)
	if err != nil {
		return nil, err
	}

	totals := &domain.BudgetTotals{
		Income:   flow.Income(),
		Budgeted: flow.Assigned,
	}

	if before, ok := query.Period.Before(); ok {
		prior, err := uc.budgetRepo.IncomeFlow(ctx, query.LedgerID, income.ID, before)
		if err != nil {
			return nil, err
		}
		totals.IncomeRemainingFromLastMonth = prior.Income() - prior.Assigned
	}

	latest, err := uc.snapshotRepo.GetLatest(ctx, income.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		totals.LeftToBudget = latest.Balance
	}

	return totals, nil
}

// ledgerAccounts checks ownership and returns the ledger's accounts together
// with its Income account.
func (uc *BudgetUseCase) ledgerAccounts(ctx context.Context, ledgerID, ownerID string) ([]*domain.Account, *domain.Account, error) {
	if _, err := uc.ledgerRepo.GetByID(ctx, ownerID, ledgerID); err != nil {
		return nil, nil, domain.NewEntityError("ledger", ledgerID, ledgerID, err)
	}

	accounts, err := uc.accountRepo.ListByLedger(ctx, ledgerID, ownerID)
	if err != nil {
		return nil, nil, err
	}

	for _, a := range accounts {
		if a.IsSpecial() && a.Name == domain.AccountNameIncome {
			return accounts, a, nil
		}
	}

	return nil, nil, domain.NewEntityError("account", domain.AccountNameIncome, ledgerID, domain.ErrAccountNotFound)
}
