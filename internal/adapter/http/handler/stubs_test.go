package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

var errNotStubbed = errors.New("not stubbed")

// newRequest builds a request owned by u1 with the given chi URL params.
func newRequest(t *testing.T, method, target string, body any, params map[string]string) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = domain.WithOwner(ctx, "u1")

	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

type ledgerServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateLedgerInput) (*usecase.CreateLedgerResult, error)
	getFn    func(ctx context.Context, ownerID, id string) (*domain.Ledger, error)
	listFn   func(ctx context.Context, input usecase.ListLedgersInput) ([]*domain.Ledger, error)
	deleteFn func(ctx context.Context, ownerID, id string) error
}

func (s *ledgerServiceStub) CreateLedger(ctx context.Context, input usecase.CreateLedgerInput) (*usecase.CreateLedgerResult, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(ctx, input)
}

func (s *ledgerServiceStub) GetLedger(ctx context.Context, ownerID, id string) (*domain.Ledger, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, ownerID, id)
}

func (s *ledgerServiceStub) ListLedgers(ctx context.Context, input usecase.ListLedgersInput) ([]*domain.Ledger, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, input)
}

func (s *ledgerServiceStub) DeleteLedger(ctx context.Context, ownerID, id string) error {
	if s.deleteFn == nil {
		return errNotStubbed
	}
	return s.deleteFn(ctx, ownerID, id)
}

type accountServiceStub struct {
	createFn         func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	createCategoryFn func(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error)
	getFn            func(ctx context.Context, ownerID, id string) (*domain.Account, error)
	listFn           func(ctx context.Context, ledgerID, ownerID string) ([]*domain.Account, error)
	findCategoryFn   func(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error)
	deleteFn         func(ctx context.Context, ownerID, id string) error
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) CreateCategory(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error) {
	if s.createCategoryFn == nil {
		return nil, errNotStubbed
	}
	return s.createCategoryFn(ctx, ledgerID, ownerID, name)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, ownerID, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, ledgerID, ownerID string) ([]*domain.Account, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, ledgerID, ownerID)
}

func (s *accountServiceStub) FindCategoryByName(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error) {
	if s.findCategoryFn == nil {
		return nil, errNotStubbed
	}
	return s.findCategoryFn(ctx, ledgerID, ownerID, name)
}

func (s *accountServiceStub) DeleteAccount(ctx context.Context, ownerID, id string) error {
	if s.deleteFn == nil {
		return errNotStubbed
	}
	return s.deleteFn(ctx, ownerID, id)
}

type transactionServiceStub struct {
	postFn   func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error)
	bulkFn   func(ctx context.Context, input usecase.BulkPostTransactionsInput) ([]usecase.BulkItemResult, error)
	assignFn func(ctx context.Context, input usecase.AssignToCategoryInput) (*domain.Transaction, error)
	getFn    func(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	listFn   func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

func (s *transactionServiceStub) PostTransaction(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
	if s.postFn == nil {
		return nil, errNotStubbed
	}
	return s.postFn(ctx, input)
}

func (s *transactionServiceStub) BulkPostTransactions(ctx context.Context, input usecase.BulkPostTransactionsInput) ([]usecase.BulkItemResult, error) {
	if s.bulkFn == nil {
		return nil, errNotStubbed
	}
	return s.bulkFn(ctx, input)
}

func (s *transactionServiceStub) AssignToCategory(ctx context.Context, input usecase.AssignToCategoryInput) (*domain.Transaction, error) {
	if s.assignFn == nil {
		return nil, errNotStubbed
	}
	return s.assignFn(ctx, input)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, ownerID, id)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, input)
}

type correctionServiceStub struct {
	correctFn func(ctx context.Context, input usecase.CorrectTransactionInput) (*usecase.CorrectionResult, error)
	deleteFn  func(ctx context.Context, input usecase.DeleteTransactionInput) (*usecase.CorrectionResult, error)
	logFn     func(ctx context.Context, ownerID, transactionID string) ([]*domain.TransactionLog, error)
}

func (s *correctionServiceStub) CorrectTransaction(ctx context.Context, input usecase.CorrectTransactionInput) (*usecase.CorrectionResult, error) {
	if s.correctFn == nil {
		return nil, errNotStubbed
	}
	return s.correctFn(ctx, input)
}

func (s *correctionServiceStub) DeleteTransaction(ctx context.Context, input usecase.DeleteTransactionInput) (*usecase.CorrectionResult, error) {
	if s.deleteFn == nil {
		return nil, errNotStubbed
	}
	return s.deleteFn(ctx, input)
}

func (s *correctionServiceStub) ListTransactionLog(ctx context.Context, ownerID, transactionID string) ([]*domain.TransactionLog, error) {
	if s.logFn == nil {
		return nil, errNotStubbed
	}
	return s.logFn(ctx, ownerID, transactionID)
}

type balanceServiceStub struct {
	getFn     func(ctx context.Context, ownerID, accountID string) (*usecase.AccountBalance, error)
	historyFn func(ctx context.Context, ownerID, accountID string, limit int) ([]*domain.BalanceSnapshot, error)
	ledgerFn  func(ctx context.Context, ownerID, ledgerID string) ([]*usecase.AccountBalance, error)
	rebuildFn func(ctx context.Context, ownerID, accountID string) (*usecase.RebuildResult, error)
}

func (s *balanceServiceStub) GetAccountBalance(ctx context.Context, ownerID, accountID string) (*usecase.AccountBalance, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, ownerID, accountID)
}

func (s *balanceServiceStub) GetAccountBalanceHistory(ctx context.Context, ownerID, accountID string, limit int) ([]*domain.BalanceSnapshot, error) {
	if s.historyFn == nil {
		return nil, errNotStubbed
	}
	return s.historyFn(ctx, ownerID, accountID, limit)
}

func (s *balanceServiceStub) GetLedgerBalances(ctx context.Context, ownerID, ledgerID string) ([]*usecase.AccountBalance, error) {
	if s.ledgerFn == nil {
		return nil, errNotStubbed
	}
	return s.ledgerFn(ctx, ownerID, ledgerID)
}

func (s *balanceServiceStub) RebuildAccountBalance(ctx context.Context, ownerID, accountID string) (*usecase.RebuildResult, error) {
	if s.rebuildFn == nil {
		return nil, errNotStubbed
	}
	return s.rebuildFn(ctx, ownerID, accountID)
}

type budgetServiceStub struct {
	statusFn func(ctx context.Context, query usecase.BudgetQuery) ([]*domain.CategoryStatus, error)
	totalsFn func(ctx context.Context, query usecase.BudgetQuery) (*domain.BudgetTotals, error)
}

func (s *budgetServiceStub) GetBudgetStatus(ctx context.Context, query usecase.BudgetQuery) ([]*domain.CategoryStatus, error) {
	if s.statusFn == nil {
		return nil, errNotStubbed
	}
	return s.statusFn(ctx, query)
}

func (s *budgetServiceStub) GetBudgetTotals(ctx context.Context, query usecase.BudgetQuery) (*domain.BudgetTotals, error) {
	if s.totalsFn == nil {
		return nil, errNotStubbed
	}
	return s.totalsFn(ctx, query)
}

type reconciliationServiceStub struct {
	accountFn     func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
	consistencyFn func(ctx context.Context, ownerID, ledgerID string) (*usecase.ConsistencyResult, error)
	reportFn      func(ctx context.Context, ownerID, ledgerID string) (*usecase.ReconciliationReport, error)
}

func (s *reconciliationServiceStub) ReconcileAccount(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
	if s.accountFn == nil {
		return nil, errNotStubbed
	}
	return s.accountFn(ctx, ownerID, accountID)
}

func (s *reconciliationServiceStub) CheckLedgerConsistency(ctx context.Context, ownerID, ledgerID string) (*usecase.ConsistencyResult, error) {
	if s.consistencyFn == nil {
		return nil, errNotStubbed
	}
	return s.consistencyFn(ctx, ownerID, ledgerID)
}

func (s *reconciliationServiceStub) GenerateReconciliationReport(ctx context.Context, ownerID, ledgerID string) (*usecase.ReconciliationReport, error) {
	if s.reportFn == nil {
		return nil, errNotStubbed
	}
	return s.reportFn(ctx, ownerID, ledgerID)
}
