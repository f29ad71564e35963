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

// TransactionService defines the posting behavior needed by
// TransactionHandler.
type TransactionService interface {
	PostTransaction(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error)
	BulkPostTransactions(ctx context.Context, input usecase.BulkPostTransactionsInput) ([]usecase.BulkItemResult, error)
	AssignToCategory(ctx context.Context, input usecase.AssignToCategoryInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// CorrectionService defines the correction behavior needed by
// TransactionHandler.
type CorrectionService interface {
	CorrectTransaction(ctx context.Context, input usecase.CorrectTransactionInput) (*usecase.CorrectionResult, error)
	DeleteTransaction(ctx context.Context, input usecase.DeleteTransactionInput) (*usecase.CorrectionResult, error)
	ListTransactionLog(ctx context.Context, ownerID, transactionID string) ([]*domain.TransactionLog, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
	correctionUC  CorrectionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService, correctionUC CorrectionService) *TransactionHandler {
	return &TransactionHandler{
		transactionUC: transactionUC,
		correctionUC:  correctionUC,
	}
}

// Create posts a single transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.PostTransactionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "ledgerID"), owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.transactionUC.PostTransaction(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to post transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// CreateBulk posts a batch of transactions all or nothing. A failed batch
// still reports what happened to every item.
func (h *TransactionHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.BulkPostTransactionsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "ledgerID"), owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	results, err := h.transactionUC.BulkPostTransactions(r.Context(), input)
	if err != nil {
		var bulkErr *usecase.BulkError
		if !errors.As(err, &bulkErr) || results == nil {
			writeDomainError(w, r, "failed to post transactions", err)
			return
		}

		resp := dto.BulkPostFromResults(results)
		resp.Error = &dto.ErrorResponse{Error: "failed to post transactions", Message: err.Error()}
		writeJSON(w, mapDomainError(err), resp)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BulkPostFromResults(results))
}

// Assign moves money from Income into a category.
func (h *TransactionHandler) Assign(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.AssignToCategoryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "ledgerID"), owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.transactionUC.AssignToCategory(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to assign to category", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	tx, err := h.transactionUC.GetTransaction(r.Context(), owner, chi.URLParam(r, "transactionID"))
	if err != nil {
		writeDomainError(w, r, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// List lists a ledger's transactions, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))

	txs, err := h.transactionUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		LedgerID: chi.URLParam(r, "ledgerID"),
		OwnerID:  owner,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeDomainError(w, r, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Limit:        limit,
		Offset:       offset,
	})
}

// Correct replaces a transaction with corrected values.
func (h *TransactionHandler) Correct(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CorrectTransactionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "transactionID"), owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.correctionUC.CorrectTransaction(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to correct transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CorrectionFromResult(result))
}

// Delete reverses a transaction out.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	result, err := h.correctionUC.DeleteTransaction(r.Context(), usecase.DeleteTransactionInput{
		OwnerID:       owner,
		TransactionID: chi.URLParam(r, "transactionID"),
		Reason:        r.URL.Query().Get("reason"),
	})
	if err != nil {
		writeDomainError(w, r, "failed to delete transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CorrectionFromResult(result))
}

// Log lists the corrections and deletions recorded for a transaction.
func (h *TransactionHandler) Log(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	logs, err := h.correctionUC.ListTransactionLog(r.Context(), owner, chi.URLParam(r, "transactionID"))
	if err != nil {
		writeDomainError(w, r, "failed to list transaction log", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionLogsFromDomain(logs))
}
