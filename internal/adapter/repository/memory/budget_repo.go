package memory

import (
	"context"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// BudgetRepository implements usecase.BudgetRepository by scanning active
// transactions.
type BudgetRepository struct {
	store *Store
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(store *Store) *BudgetRepository {
	return &BudgetRepository{store: store}
}

// CategoryFlows aggregates assignments and cash activity per account.
func (r *BudgetRepository) CategoryFlows(_ context.Context, ledgerID, incomeAccountID string, period domain.Period) (map[string]domain.CategoryFlow, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	flows := make(map[string]domain.CategoryFlow)
	add := func(accountID string, f func(*domain.CategoryFlow)) {
		flow := flows[accountID]
		flow.CategoryID = accountID
		f(&flow)
		flows[accountID] = flow
	}

	for _, t := range s.activeTransactions(ledgerID, period) {
		debit := s.accounts[t.DebitAccountID]
		credit := s.accounts[t.CreditAccountID]
		if debit == nil || credit == nil {
			continue
		}

		if debit.ID == incomeAccountID {
			add(credit.ID, func(f *domain.CategoryFlow) { f.Budgeted += t.Amount })
		}
		if debit.IsCashLike() {
			add(credit.ID, func(f *domain.CategoryFlow) { f.Inflow += t.Amount })
		}
		if credit.IsCashLike() {
			add(debit.ID, func(f *domain.CategoryFlow) { f.Outflow += t.Amount })
		}
	}

	return flows, nil
}

// IncomeFlow aggregates the movements of the Income account.
func (r *BudgetRepository) IncomeFlow(_ context.Context, ledgerID, incomeAccountID string, period domain.Period) (domain.IncomeFlow, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var flow domain.IncomeFlow
	for _, t := range s.activeTransactions(ledgerID, period) {
		switch incomeAccountID {
		case t.CreditAccountID:
			flow.Credits += t.Amount
		case t.DebitAccountID:
			flow.Debits += t.Amount
			if credit := s.accounts[t.CreditAccountID]; credit != nil && credit.IsCategory() {
				flow.Assigned += t.Amount
			}
		}
	}

	return flow, nil
}

// activeTransactions must be called with s.mu held.
func (s *Store) activeTransactions(ledgerID string, period domain.Period) []*domain.Transaction {
	var active []*domain.Transaction
	for _, id := range s.txOrder {
		t := s.transactions[id]
		if t.LedgerID != ledgerID || !t.IsActive() || !period.Contains(t.Date) {
			continue
		}
		active = append(active, t)
	}
	return active
}
