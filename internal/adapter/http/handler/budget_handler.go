package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/j0lvera/pgbudget/internal/adapter/http/dto"
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// BudgetService defines the behavior needed by BudgetHandler.
type BudgetService interface {
	GetBudgetStatus(ctx context.Context, query usecase.BudgetQuery) ([]*domain.CategoryStatus, error)
	GetBudgetTotals(ctx context.Context, query usecase.BudgetQuery) (*domain.BudgetTotals, error)
}

// BudgetHandler serves the envelope budget view.
type BudgetHandler struct {
	budgetUC BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetUC BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetUC: budgetUC}
}

func (h *BudgetHandler) query(w http.ResponseWriter, r *http.Request) (usecase.BudgetQuery, bool) {
	owner, ok := ownerID(w, r)
	if !ok {
		return usecase.BudgetQuery{}, false
	}

	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return usecase.BudgetQuery{}, false
	}

	return usecase.BudgetQuery{
		LedgerID: chi.URLParam(r, "ledgerID"),
		OwnerID:  owner,
		Period:   period,
	}, true
}

// Status returns one row per category.
func (h *BudgetHandler) Status(w http.ResponseWriter, r *http.Request) {
	query, ok := h.query(w, r)
	if !ok {
		return
	}

	statuses, err := h.budgetUC.GetBudgetStatus(r.Context(), query)
	if err != nil {
		writeDomainError(w, r, "failed to get budget status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetStatusFromDomain(statuses))
}

// Totals returns the budget summary.
func (h *BudgetHandler) Totals(w http.ResponseWriter, r *http.Request) {
	query, ok := h.query(w, r)
	if !ok {
		return
	}

	totals, err := h.budgetUC.GetBudgetTotals(r.Context(), query)
	if err != nil {
		writeDomainError(w, r, "failed to get budget totals", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetTotalsFromDomain(totals))
}
