package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/j0lvera/pgbudget/internal/adapter/http/dto"
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	CreateCategory(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error)
	GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, ledgerID, ownerID string) ([]*domain.Account, error)
	FindCategoryByName(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, ownerID, id string) error
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account in a ledger.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "ledgerID"), owner))
	if err != nil {
		writeDomainError(w, r, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// CreateCategory creates a budget category in a ledger.
func (h *AccountHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	category, err := h.accountUC.CreateCategory(r.Context(), chi.URLParam(r, "ledgerID"), owner, req.Name)
	if err != nil {
		writeDomainError(w, r, "failed to create category", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(category))
}

// FindCategory looks a category up by name.
func (h *AccountHandler) FindCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing category name", "")
		return
	}

	category, err := h.accountUC.FindCategoryByName(r.Context(), chi.URLParam(r, "ledgerID"), owner, name)
	if err != nil {
		writeDomainError(w, r, "failed to find category", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(category))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), owner, chi.URLParam(r, "accountID"))
	if err != nil {
		writeDomainError(w, r, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the accounts of a ledger.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), chi.URLParam(r, "ledgerID"), owner)
	if err != nil {
		writeDomainError(w, r, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Delete deletes an account that no transaction references.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := h.accountUC.DeleteAccount(r.Context(), owner, chi.URLParam(r, "accountID")); err != nil {
		writeDomainError(w, r, "failed to delete account", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
