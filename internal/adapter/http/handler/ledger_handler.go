package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/j0lvera/pgbudget/internal/adapter/http/dto"
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CreateLedger(ctx context.Context, input usecase.CreateLedgerInput) (*usecase.CreateLedgerResult, error)
	GetLedger(ctx context.Context, ownerID, id string) (*domain.Ledger, error)
	ListLedgers(ctx context.Context, input usecase.ListLedgersInput) ([]*domain.Ledger, error)
	DeleteLedger(ctx context.Context, ownerID, id string) error
}

// LedgerHandler handles ledger-related HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Create creates a ledger together with its special accounts.
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateLedgerRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.ledgerUC.CreateLedger(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, "failed to create ledger", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateLedgerFromResult(result))
}

// Get retrieves a ledger by ID.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	ledger, err := h.ledgerUC.GetLedger(r.Context(), owner, chi.URLParam(r, "ledgerID"))
	if err != nil {
		writeDomainError(w, r, "failed to get ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(ledger))
}

// List lists the owner's ledgers.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))

	ledgers, err := h.ledgerUC.ListLedgers(r.Context(), usecase.ListLedgersInput{
		OwnerID: owner,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeDomainError(w, r, "failed to list ledgers", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLedgersResponse{
		Ledgers: dto.LedgersFromDomain(ledgers),
		Limit:   limit,
		Offset:  offset,
	})
}

// Delete deletes a ledger and everything in it.
func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := h.ledgerUC.DeleteLedger(r.Context(), owner, chi.URLParam(r, "ledgerID")); err != nil {
		writeDomainError(w, r, "failed to delete ledger", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
