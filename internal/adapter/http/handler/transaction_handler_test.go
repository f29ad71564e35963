package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/j0lvera/pgbudget/internal/adapter/http/dto"
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

var ledgerParams = map[string]string{"ledgerID": "l1"}

func TestTransactionHandler_Create_Success(t *testing.T) {
	var captured usecase.PostTransactionInput
	h := NewTransactionHandler(&transactionServiceStub{
		postFn: func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID:              "t1",
				LedgerID:        input.LedgerID,
				Date:            *input.Date,
				Amount:          input.Amount,
				DebitAccountID:  input.CategoryAccountID,
				CreditAccountID: input.SubjectAccountID,
				Status:          domain.TransactionStatusPosted,
			}, nil
		},
	}, &correctionServiceStub{})

	body := dto.PostTransactionRequest{
		Date:        "2024-03-10",
		Description: "Milk",
		Flow:        "outflow",
		AccountID:   "a1",
		CategoryID:  "c1",
		Amount:      1250,
	}
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(t, http.MethodPost, "/ledgers/l1/transactions", body, ledgerParams))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.LedgerID != "l1" || captured.OwnerID != "u1" || captured.Flow != "outflow" || captured.Amount != 1250 {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.Date == nil || !captured.Date.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", captured.Date)
	}

	var resp dto.TransactionResponse
	decodeBody(t, rec, &resp)
	if resp.ID != "t1" || resp.Date != "2024-03-10" || resp.Amount != 1250 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTransactionHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		err      error
		expected int
	}{
		{
			name:     "invalid flow",
			body:     `{"flow":"sideways","account_id":"a1","category_id":"c1","amount":100}`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "non positive amount",
			body:     `{"flow":"inflow","account_id":"a1","category_id":"c1","amount":-5}`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "unknown account",
			body:     dto.PostTransactionRequest{Flow: "inflow", AccountID: "nope", CategoryID: "c1", Amount: 100},
			err:      domain.NewEntityError("account", "nope", "l1", domain.ErrAccountNotFound),
			expected: http.StatusNotFound,
		},
		{
			name:     "same account",
			body:     dto.PostTransactionRequest{Flow: "inflow", AccountID: "a1", CategoryID: "a1", Amount: 100},
			err:      domain.ErrSameAccount,
			expected: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTransactionHandler(&transactionServiceStub{
				postFn: func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
					if tt.err == nil {
						t.Fatal("PostTransaction should not be called")
					}
					return nil, tt.err
				},
			}, &correctionServiceStub{})

			rec := httptest.NewRecorder()
			h.Create(rec, newRequest(t, http.MethodPost, "/ledgers/l1/transactions", tt.body, ledgerParams))
			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTransactionHandler_CreateBulk(t *testing.T) {
	body := dto.BulkPostTransactionsRequest{Transactions: []dto.PostTransactionRequest{
		{Flow: "inflow", AccountID: "a1", CategoryID: "inc", Amount: 5000},
		{Flow: "outflow", AccountID: "a1", CategoryID: "missing", Amount: 1200},
	}}

	t.Run("success", func(t *testing.T) {
		h := NewTransactionHandler(&transactionServiceStub{
			bulkFn: func(ctx context.Context, input usecase.BulkPostTransactionsInput) ([]usecase.BulkItemResult, error) {
				results := make([]usecase.BulkItemResult, len(input.Items))
				for i, item := range input.Items {
					results[i] = usecase.BulkItemResult{
						Index:       i,
						Status:      usecase.BulkItemPosted,
						Transaction: &domain.Transaction{ID: fmt.Sprintf("t%d", i+1), Amount: item.Amount},
					}
				}
				return results, nil
			},
		}, &correctionServiceStub{})

		rec := httptest.NewRecorder()
		h.CreateBulk(rec, newRequest(t, http.MethodPost, "/ledgers/l1/transactions/bulk", body, ledgerParams))

		var resp dto.BulkPostResponse
		decodeBody(t, rec, &resp)
		if rec.Code != http.StatusCreated || len(resp.Results) != 2 || resp.Error != nil {
			t.Fatalf("unexpected response %d %+v", rec.Code, resp)
		}
	})

	t.Run("rolled back", func(t *testing.T) {
		h := NewTransactionHandler(&transactionServiceStub{
			bulkFn: func(ctx context.Context, input usecase.BulkPostTransactionsInput) ([]usecase.BulkItemResult, error) {
				err := domain.NewEntityError("account", "missing", "l1", domain.ErrAccountNotFound)
				return []usecase.BulkItemResult{
					{Index: 0, Status: usecase.BulkItemRolledBack},
					{Index: 1, Status: usecase.BulkItemFailed, Err: err},
				}, &usecase.BulkError{Index: 1, Err: err}
			},
		}, &correctionServiceStub{})

		rec := httptest.NewRecorder()
		h.CreateBulk(rec, newRequest(t, http.MethodPost, "/ledgers/l1/transactions/bulk", body, ledgerParams))

		var resp dto.BulkPostResponse
		decodeBody(t, rec, &resp)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if resp.Error == nil || resp.Results[0].Status != usecase.BulkItemRolledBack || resp.Results[1].Error == "" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		h := NewTransactionHandler(&transactionServiceStub{}, &correctionServiceStub{})

		rec := httptest.NewRecorder()
		h.CreateBulk(rec, newRequest(t, http.MethodPost, "/ledgers/l1/transactions/bulk", `{"transactions":[]}`, ledgerParams))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Assign(t *testing.T) {
	var captured usecase.AssignToCategoryInput
	h := NewTransactionHandler(&transactionServiceStub{
		assignFn: func(ctx context.Context, input usecase.AssignToCategoryInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{ID: "t1", Amount: input.Amount}, nil
		},
	}, &correctionServiceStub{})

	rec := httptest.NewRecorder()
	h.Assign(rec, newRequest(t, http.MethodPost, "/ledgers/l1/assignments", dto.AssignToCategoryRequest{CategoryID: "c1", Amount: 3000}, ledgerParams))

	if rec.Code != http.StatusCreated || captured.CategoryID != "c1" || captured.LedgerID != "l1" {
		t.Fatalf("unexpected result %d %+v", rec.Code, captured)
	}
}

func TestTransactionHandler_List(t *testing.T) {
	var captured usecase.ListTransactionsInput
	h := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			captured = input
			return []*domain.Transaction{{ID: "t2"}, {ID: "t1"}}, nil
		},
	}, &correctionServiceStub{})

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(t, http.MethodGet, "/ledgers/l1/transactions?limit=2", nil, ledgerParams))

	var resp dto.ListTransactionsResponse
	decodeBody(t, rec, &resp)
	if rec.Code != http.StatusOK || len(resp.Transactions) != 2 || captured.Limit != 2 || captured.LedgerID != "l1" {
		t.Fatalf("unexpected response %d %+v (%+v)", rec.Code, resp, captured)
	}
}

func TestTransactionHandler_Correct(t *testing.T) {
	var captured usecase.CorrectTransactionInput
	reversalOf := "t1"
	h := NewTransactionHandler(&transactionServiceStub{}, &correctionServiceStub{
		correctFn: func(ctx context.Context, input usecase.CorrectTransactionInput) (*usecase.CorrectionResult, error) {
			captured = input
			reversalID, correctionID := "t2", "t3"
			return &usecase.CorrectionResult{
				Original:   &domain.Transaction{ID: "t1", Amount: 1000},
				Reversal:   &domain.Transaction{ID: "t2", Amount: 1000, ReversalOf: &reversalOf},
				Correction: &domain.Transaction{ID: "t3", Amount: input.Amount},
				Log: &domain.TransactionLog{
					ID:                      "log1",
					OriginalTransactionID:   "t1",
					ReversalTransactionID:   &reversalID,
					CorrectionTransactionID: &correctionID,
					MutationType:            domain.MutationCorrection,
				},
			}, nil
		},
	})

	body := dto.CorrectTransactionRequest{
		PostTransactionRequest: dto.PostTransactionRequest{Flow: "outflow", AccountID: "a1", CategoryID: "c1", Amount: 900},
		Reason:                 "typo",
	}
	rec := httptest.NewRecorder()
	h.Correct(rec, newRequest(t, http.MethodPut, "/transactions/t1", body, map[string]string{"transactionID": "t1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.TransactionID != "t1" || captured.Reason != "typo" || captured.Amount != 900 {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.CorrectionResponse
	decodeBody(t, rec, &resp)
	if resp.Correction == nil || resp.Correction.Amount != 900 || *resp.Reversal.ReversalOf != "t1" || resp.Log.MutationType != "correction" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTransactionHandler_Delete(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"deleted", nil, http.StatusOK},
		{"already reversed", domain.ErrTransactionReversed, http.StatusConflict},
		{"reversal", domain.ErrReversalNotCorrectable, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.DeleteTransactionInput
			h := NewTransactionHandler(&transactionServiceStub{}, &correctionServiceStub{
				deleteFn: func(ctx context.Context, input usecase.DeleteTransactionInput) (*usecase.CorrectionResult, error) {
					captured = input
					if tt.err != nil {
						return nil, tt.err
					}
					return &usecase.CorrectionResult{
						Original: &domain.Transaction{ID: "t1"},
						Reversal: &domain.Transaction{ID: "t2"},
						Log:      &domain.TransactionLog{ID: "log1", MutationType: domain.MutationDeletion},
					}, nil
				},
			})

			rec := httptest.NewRecorder()
			h.Delete(rec, newRequest(t, http.MethodDelete, "/transactions/t1?reason=duplicate", nil, map[string]string{"transactionID": "t1"}))

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
			if captured.Reason != "duplicate" || captured.TransactionID != "t1" {
				t.Fatalf("unexpected input %+v", captured)
			}
		})
	}
}

func TestTransactionHandler_GetAndLog(t *testing.T) {
	h := NewTransactionHandler(&transactionServiceStub{
		getFn: func(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
			return nil, domain.NewEntityError("transaction", id, "", domain.ErrTransactionNotFound)
		},
	}, &correctionServiceStub{
		logFn: func(ctx context.Context, ownerID, transactionID string) ([]*domain.TransactionLog, error) {
			return []*domain.TransactionLog{{ID: "log1", OriginalTransactionID: transactionID, MutationType: domain.MutationDeletion}}, nil
		},
	})
	params := map[string]string{"transactionID": "t1"}

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(t, http.MethodGet, "/transactions/t1", nil, params))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Log(rec, newRequest(t, http.MethodGet, "/transactions/t1/log", nil, params))

	var logs []dto.TransactionLogResponse
	decodeBody(t, rec, &logs)
	if rec.Code != http.StatusOK || len(logs) != 1 || logs[0].OriginalTransactionID != "t1" {
		t.Fatalf("unexpected response %d %+v", rec.Code, logs)
	}
}
