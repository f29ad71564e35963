package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/j0lvera/pgbudget/internal/adapter/repository/memory"
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/metrics"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

const owner = "U1"

// sequentialIDs yields ids that sort in generation order.
type sequentialIDs struct {
	n atomic.Int64
}

func (g *sequentialIDs) Generate() string {
	return fmt.Sprintf("id-%08d", g.n.Add(1))
}

type engine struct {
	store     *memory.Store
	snapshots *memory.SnapshotRepository
	outbox    *memory.OutboxRepository
	metrics   *metrics.Metrics

	ledgers        *usecase.LedgerUseCase
	accounts       *usecase.AccountUseCase
	transactions   *usecase.TransactionUseCase
	corrections    *usecase.CorrectionUseCase
	balances       *usecase.BalanceUseCase
	budget         *usecase.BudgetUseCase
	reconciliation *usecase.ReconciliationUseCase
}

func newEngine(t *testing.T, extra ...usecase.Option) *engine {
	t.Helper()

	store := memory.NewStore()
	ledgerRepo := memory.NewLedgerRepository(store)
	accountRepo := memory.NewAccountRepository(store)
	txRepo := memory.NewTransactionRepository(store)
	snapshotRepo := memory.NewSnapshotRepository(store)
	logRepo := memory.NewTransactionLogRepository(store)
	budgetRepo := memory.NewBudgetRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)

	m := metrics.New(prometheus.NewRegistry())
	ids := &sequentialIDs{}

	opts := append([]usecase.Option{usecase.WithOutbox(outboxRepo), usecase.WithMetrics(m)}, extra...)
	materializer := usecase.NewBalanceMaterializer(snapshotRepo, ids, opts...)

	return &engine{
		store:     store,
		snapshots: snapshotRepo,
		outbox:    outboxRepo,
		metrics:   m,

		ledgers:        usecase.NewLedgerUseCase(store, ledgerRepo, accountRepo, ids, opts...),
		accounts:       usecase.NewAccountUseCase(store, ledgerRepo, accountRepo, txRepo, ids, opts...),
		transactions:   usecase.NewTransactionUseCase(store, ledgerRepo, accountRepo, txRepo, materializer, ids, opts...),
		corrections:    usecase.NewCorrectionUseCase(store, accountRepo, txRepo, logRepo, materializer, ids, opts...),
		balances:       usecase.NewBalanceUseCase(store, ledgerRepo, accountRepo, txRepo, snapshotRepo, materializer, ids, opts...),
		budget:         usecase.NewBudgetUseCase(ledgerRepo, accountRepo, snapshotRepo, budgetRepo),
		reconciliation: usecase.NewReconciliationUseCase(ledgerRepo, accountRepo, txRepo, snapshotRepo, opts...),
	}
}

// book is a ledger with its special accounts resolved by name.
type book struct {
	ledger     *domain.Ledger
	income     *domain.Account
	offBudget  *domain.Account
	unassigned *domain.Account
}

func (e *engine) newBook(t *testing.T, name string) *book {
	t.Helper()

	result, err := e.ledgers.CreateLedger(context.Background(), usecase.CreateLedgerInput{OwnerID: owner, Name: name})
	require.NoError(t, err)

	b := &book{ledger: result.Ledger}
	for _, a := range result.Accounts {
		switch a.Name {
		case domain.AccountNameIncome:
			b.income = a
		case domain.AccountNameOffBudget:
			b.offBudget = a
		case domain.AccountNameUnassigned:
			b.unassigned = a
		}
	}
	require.NotNil(t, b.income)
	require.NotNil(t, b.offBudget)
	require.NotNil(t, b.unassigned)
	return b
}

func (e *engine) account(t *testing.T, b *book, name string, typ domain.AccountType) *domain.Account {
	t.Helper()

	a, err := e.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{
		LedgerID: b.ledger.ID,
		OwnerID:  owner,
		Name:     name,
		Type:     string(typ),
	})
	require.NoError(t, err)
	return a
}

func (e *engine) category(t *testing.T, b *book, name string) *domain.Account {
	t.Helper()

	a, err := e.accounts.CreateCategory(context.Background(), b.ledger.ID, owner, name)
	require.NoError(t, err)
	return a
}

func (e *engine) post(t *testing.T, b *book, flow domain.Flow, amount int64, subject, category *domain.Account) *domain.Transaction {
	t.Helper()

	input := usecase.PostTransactionInput{
		LedgerID:         b.ledger.ID,
		OwnerID:          owner,
		Flow:             string(flow),
		Amount:           amount,
		SubjectAccountID: subject.ID,
		Description:      "test",
	}
	if category != nil {
		input.CategoryAccountID = category.ID
	}

	tr, err := e.transactions.PostTransaction(context.Background(), input)
	require.NoError(t, err)
	return tr
}

func (e *engine) balance(t *testing.T, a *domain.Account) int64 {
	t.Helper()

	bal, err := e.balances.GetAccountBalance(context.Background(), owner, a.ID)
	require.NoError(t, err)
	return bal.Balance
}

// requireHealthy asserts every snapshot chain in the ledger is intact and
// matches a replay, and that the ledger nets to zero.
func (e *engine) requireHealthy(t *testing.T, b *book) {
	t.Helper()
	ctx := context.Background()

	results, err := e.reconciliation.ReconcileLedger(ctx, owner, b.ledger.ID)
	require.NoError(t, err)
	for _, r := range results {
		require.Truef(t, r.IsReconciled, "account %s not reconciled: %+v", r.AccountName, r)
	}

	consistency, err := e.reconciliation.CheckLedgerConsistency(ctx, owner, b.ledger.ID)
	require.NoError(t, err)
	require.True(t, consistency.Consistent)
}

func eventTypes(t *testing.T, e *engine) []string {
	t.Helper()

	events, err := e.outbox.GetUnpublished(context.Background(), 0)
	require.NoError(t, err)

	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.EventType)
	}
	return types
}
