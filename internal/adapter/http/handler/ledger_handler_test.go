package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/j0lvera/pgbudget/internal/adapter/http/dto"
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

func TestLedgerHandler_Create_Success(t *testing.T) {
	now := time.Now().UTC()
	var captured usecase.CreateLedgerInput
	h := NewLedgerHandler(&ledgerServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLedgerInput) (*usecase.CreateLedgerResult, error) {
			captured = input
			ledger := &domain.Ledger{ID: "l1", OwnerID: input.OwnerID, Name: input.Name, CreatedAt: now}
			accounts := make([]*domain.Account, 0, len(domain.SpecialAccountNames))
			for _, name := range domain.SpecialAccountNames {
				accounts = append(accounts, domain.NewSpecialAccount("a-"+name, "l1", input.OwnerID, name, now))
			}
			return &usecase.CreateLedgerResult{Ledger: ledger, Accounts: accounts}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(t, http.MethodPost, "/ledgers", dto.CreateLedgerRequest{Name: "Personal"}, nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.OwnerID != "u1" || captured.Name != "Personal" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.CreateLedgerResponse
	decodeBody(t, rec, &resp)
	if resp.LedgerResponse == nil || resp.ID != "l1" || len(resp.Accounts) != 3 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLedgerHandler_Create_ValidationFailsBeforeService(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLedgerInput) (*usecase.CreateLedgerResult, error) {
			t.Fatal("CreateLedger should not be called for invalid payload")
			return nil, nil
		},
	})

	for _, body := range []string{`{"name":`, `{"name":""}`} {
		rec := httptest.NewRecorder()
		h.Create(rec, newRequest(t, http.MethodPost, "/ledgers", body, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestLedgerHandler_Create_Conflict(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLedgerInput) (*usecase.CreateLedgerResult, error) {
			return nil, domain.ErrLedgerNameTaken
		},
	})

	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(t, http.MethodPost, "/ledgers", dto.CreateLedgerRequest{Name: "Personal"}, nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLedgerHandler_RequiresOwner(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/ledgers", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLedgerHandler_Get(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		getFn: func(ctx context.Context, ownerID, id string) (*domain.Ledger, error) {
			if ownerID != "u1" {
				t.Fatalf("unexpected owner %s", ownerID)
			}
			if id != "l1" {
				return nil, domain.NewEntityError("ledger", id, id, domain.ErrLedgerNotFound)
			}
			return &domain.Ledger{ID: "l1", Name: "Personal"}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(t, http.MethodGet, "/ledgers/l1", nil, map[string]string{"ledgerID": "l1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, newRequest(t, http.MethodGet, "/ledgers/other", nil, map[string]string{"ledgerID": "other"}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLedgerHandler_List_Pagination(t *testing.T) {
	var captured usecase.ListLedgersInput
	h := NewLedgerHandler(&ledgerServiceStub{
		listFn: func(ctx context.Context, input usecase.ListLedgersInput) ([]*domain.Ledger, error) {
			captured = input
			return []*domain.Ledger{{ID: "l1"}, {ID: "l2"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(t, http.MethodGet, "/ledgers?limit=5000&offset=10", nil, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Limit != 1000 || captured.Offset != 10 || captured.OwnerID != "u1" {
		t.Fatalf("unexpected pagination %+v", captured)
	}

	var resp dto.ListLedgersResponse
	decodeBody(t, rec, &resp)
	if len(resp.Ledgers) != 2 || resp.Limit != 1000 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLedgerHandler_Delete(t *testing.T) {
	var deleted string
	h := NewLedgerHandler(&ledgerServiceStub{
		deleteFn: func(ctx context.Context, ownerID, id string) error {
			deleted = id
			return nil
		},
	})

	rec := httptest.NewRecorder()
	h.Delete(rec, newRequest(t, http.MethodDelete, "/ledgers/l1", nil, map[string]string{"ledgerID": "l1"}))

	if rec.Code != http.StatusNoContent || deleted != "l1" {
		t.Fatalf("expected 204 for l1, got %d (%s)", rec.Code, deleted)
	}
}
