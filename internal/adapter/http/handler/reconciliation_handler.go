package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/j0lvera/pgbudget/internal/adapter/http/dto"
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// ReconciliationService defines the behavior needed by
// ReconciliationHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
	CheckLedgerConsistency(ctx context.Context, ownerID, ledgerID string) (*usecase.ConsistencyResult, error)
	GenerateReconciliationReport(ctx context.Context, ownerID, ledgerID string) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler exposes balance verification.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Account reconciles one account.
func (h *ReconciliationHandler) Account(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), owner, chi.URLParam(r, "accountID"))
	if err != nil {
		writeDomainError(w, r, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// Consistency checks that a ledger's asset-like and liability-like balances
// agree. An unbalanced ledger is reported in the body, not as a failure.
func (h *ReconciliationHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	result, err := h.reconciliationUC.CheckLedgerConsistency(r.Context(), owner, chi.URLParam(r, "ledgerID"))
	if err != nil && (result == nil || !errors.Is(err, domain.ErrLedgerUnbalanced)) {
		writeDomainError(w, r, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromResult(result))
}

// Report reconciles every account of a ledger.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	report, err := h.reconciliationUC.GenerateReconciliationReport(r.Context(), owner, chi.URLParam(r, "ledgerID"))
	if err != nil {
		writeDomainError(w, r, "failed to generate reconciliation report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromResult(report))
}
