package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/j0lvera/pgbudget/internal/adapter/http/dto"
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GetAccountBalance(ctx context.Context, ownerID, accountID string) (*usecase.AccountBalance, error)
	GetAccountBalanceHistory(ctx context.Context, ownerID, accountID string, limit int) ([]*domain.BalanceSnapshot, error)
	GetLedgerBalances(ctx context.Context, ownerID, ledgerID string) ([]*usecase.AccountBalance, error)
	RebuildAccountBalance(ctx context.Context, ownerID, accountID string) (*usecase.RebuildResult, error)
}

// BalanceHandler serves materialized balances.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Get returns the current balance of an account.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	balance, err := h.balanceUC.GetAccountBalance(r.Context(), owner, chi.URLParam(r, "accountID"))
	if err != nil {
		writeDomainError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromUseCase(balance))
}

// History returns the newest snapshots of an account.
func (h *BalanceHandler) History(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", usecase.DefaultHistoryLimit)

	snapshots, err := h.balanceUC.GetAccountBalanceHistory(r.Context(), owner, chi.URLParam(r, "accountID"), limit)
	if err != nil {
		writeDomainError(w, r, "failed to get balance history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotsFromDomain(snapshots))
}

// ListByLedger returns the balance of every account in a ledger.
func (h *BalanceHandler) ListByLedger(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	balances, err := h.balanceUC.GetLedgerBalances(r.Context(), owner, chi.URLParam(r, "ledgerID"))
	if err != nil {
		writeDomainError(w, r, "failed to list balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromUseCase(balances))
}

// Rebuild recomputes an account's snapshot chain from its history.
func (h *BalanceHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	result, err := h.balanceUC.RebuildAccountBalance(r.Context(), owner, chi.URLParam(r, "accountID"))
	if err != nil {
		writeDomainError(w, r, "failed to rebuild balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RebuildFromResult(result))
}
