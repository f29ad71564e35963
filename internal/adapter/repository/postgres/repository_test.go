package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/j0lvera/pgbudget/internal/domain"
)

func sql(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

func TestLedgerRepositoryCreateNameTaken(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(sql("INSERT INTO ledgers")).
		WithArgs("l1", "u1", "Personal", "", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	repo := NewLedgerRepository(mock)
	err := repo.Create(context.Background(), nil, &domain.Ledger{ID: "l1", OwnerID: "u1", Name: "Personal"})
	if !errors.Is(err, domain.ErrLedgerNameTaken) {
		t.Fatalf("expected ErrLedgerNameTaken, got %v", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected a conflict, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestLedgerRepositoryGetByIDNotFound(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("FROM ledgers WHERE id = $1 AND owner_id = $2")).
		WithArgs("l1", "u2").
		WillReturnError(pgx.ErrNoRows)

	repo := NewLedgerRepository(mock)
	if _, err := repo.GetByID(context.Background(), "u2", "l1"); !errors.Is(err, domain.ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestLedgerRepositoryGetByID(t *testing.T) {
	mock := newMockPool(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := mock.NewRows([]string{"id", "owner_id", "name", "description", "metadata", "created_at", "updated_at"}).
		AddRow("l1", "u1", "Personal", "household", []byte(`{"currency":"USD"}`),
			pgtype.Timestamptz{Time: created, Valid: true},
			pgtype.Timestamptz{Time: created, Valid: true})
	mock.ExpectQuery(sql("FROM ledgers WHERE id = $1")).WithArgs("l1", "u1").WillReturnRows(rows)

	repo := NewLedgerRepository(mock)
	ledger, err := repo.GetByID(context.Background(), "u1", "l1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.Name != "Personal" || ledger.Description != "household" {
		t.Fatalf("unexpected ledger %+v", ledger)
	}
	if ledger.Metadata["currency"] != "USD" {
		t.Fatalf("expected metadata to decode, got %v", ledger.Metadata)
	}
	if !ledger.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %v, got %v", created, ledger.CreatedAt)
	}

	assertExpectations(t, mock)
}

func TestLedgerRepositoryDeleteMissing(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(sql("DELETE FROM ledgers")).
		WithArgs("l1", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewLedgerRepository(mock)
	if err := repo.Delete(context.Background(), nil, "u1", "l1"); !errors.Is(err, domain.ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestAccountRepositoryCreateTranslatesErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"duplicate name", pgErrUniqueViolation, domain.ErrAccountNameTaken},
		{"missing ledger", pgErrForeignKeyViolation, domain.ErrLedgerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			mock.ExpectExec(sql("INSERT INTO accounts")).
				WillReturnError(&pgconn.PgError{Code: tt.code})

			repo := NewAccountRepository(mock)
			err := repo.Create(context.Background(), nil, &domain.Account{
				ID:           "a1",
				LedgerID:     "l1",
				OwnerID:      "u1",
				Name:         "Checking",
				Type:         domain.AccountTypeAsset,
				InternalType: domain.InternalTypeAssetLike,
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			assertExpectations(t, mock)
		})
	}
}

func TestAccountRepositoryDeleteInUse(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(sql("DELETE FROM accounts")).
		WithArgs("a1").
		WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation})

	repo := NewAccountRepository(mock)
	if err := repo.Delete(context.Background(), nil, "a1"); !errors.Is(err, domain.ErrAccountInUse) {
		t.Fatalf("expected ErrAccountInUse, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestTransactionRepositoryCreateInsideTx(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectQuery(sql("INSERT INTO transactions")).
		WithArgs(
			"t1", "l1", "u1",
			pgtype.Date{Time: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Valid: true},
			"Groceries", int64(1200), "a2", "a1", "posted",
			pgxmock.AnyArg(), pgtype.Text{}, pgxmock.AnyArg(),
		).
		WillReturnRows(mock.NewRows([]string{"sequence"}).AddRow(int64(42)))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := newTxManagerWithPool(mock).Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	posted := &domain.Transaction{
		ID:              "t1",
		LedgerID:        "l1",
		OwnerID:         "u1",
		Date:            time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC),
		Description:     "Groceries",
		Amount:          1200,
		DebitAccountID:  "a2",
		CreditAccountID: "a1",
		Status:          domain.TransactionStatusPosted,
	}
	if err := NewTransactionRepository(mock).Create(ctx, tx, posted); err != nil {
		t.Fatalf("create: %v", err)
	}
	if posted.Sequence != 42 {
		t.Fatalf("expected sequence 42, got %d", posted.Sequence)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, mock)
}

func TestTransactionRepositoryMarkDeletedTwice(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(sql("UPDATE transactions SET deleted_at")).
		WithArgs("t1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewTransactionRepository(mock)
	if err := repo.MarkDeleted(context.Background(), nil, "t1", time.Now()); !errors.Is(err, domain.ErrTransactionReversed) {
		t.Fatalf("expected ErrTransactionReversed, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestSnapshotRepositoryGetLatestEmptyChain(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("FROM balance_snapshots")).
		WithArgs("a1").
		WillReturnError(pgx.ErrNoRows)

	repo := NewSnapshotRepository(mock)
	latest, err := repo.GetLatest(context.Background(), "a1")
	if err != nil || latest != nil {
		t.Fatalf("expected no snapshot, got %+v (%v)", latest, err)
	}

	assertExpectations(t, mock)
}

func TestSnapshotRepositoryCreateBrokenChain(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("INSERT INTO balance_snapshots")).
		WillReturnError(&pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: "balance_snapshots_chain"})

	repo := NewSnapshotRepository(mock)
	err := repo.Create(context.Background(), nil, &domain.BalanceSnapshot{
		ID:              "s1",
		AccountID:       "a1",
		LedgerID:        "l1",
		PreviousBalance: 100,
		Delta:           50,
		Balance:         999,
	})
	if !errors.Is(err, domain.ErrBrokenBalanceChain) {
		t.Fatalf("expected ErrBrokenBalanceChain, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestSnapshotRepositoryLatestBalances(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("SELECT DISTINCT ON (account_id)")).
		WithArgs("l1").
		WillReturnRows(mock.NewRows([]string{"account_id", "balance"}).
			AddRow("a1", int64(5000)).
			AddRow("a2", int64(-1200)))

	repo := NewSnapshotRepository(mock)
	balances, err := repo.LatestBalances(context.Background(), "l1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 2 || balances["a1"] != 5000 || balances["a2"] != -1200 {
		t.Fatalf("unexpected balances %v", balances)
	}

	assertExpectations(t, mock)
}

func TestSnapshotRepositoryListAllWhenUnlimited(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("LIMIT NULLIF($2::int, 0)")).
		WithArgs("a1", int32(0)).
		WillReturnRows(mock.NewRows([]string{
			"id", "account_id", "transaction_id", "ledger_id", "owner_id",
			"previous_balance", "delta", "balance", "operation_type", "sequence", "created_at",
		}).
			AddRow("s2", "a1", "t2", "l1", "u1", int64(100), int64(-30), int64(70), "transaction_insert", int64(2), pgtype.Timestamptz{}).
			AddRow("s1", "a1", "t1", "l1", "u1", int64(0), int64(100), int64(100), "transaction_insert", int64(1), pgtype.Timestamptz{}))

	repo := NewSnapshotRepository(mock)
	snapshots, err := repo.ListByAccount(context.Background(), "a1", -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshots) != 2 || snapshots[0].ID != "s2" || snapshots[1].Balance != 100 {
		t.Fatalf("unexpected snapshots %+v", snapshots)
	}
	if snapshots[0].OperationType != domain.OperationTransactionInsert {
		t.Fatalf("unexpected operation type %q", snapshots[0].OperationType)
	}

	assertExpectations(t, mock)
}

func TestBudgetRepositoryPassesOpenPeriodAsNull(t *testing.T) {
	mock := newMockPool(t)
	start := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(sql("WITH active AS")).
		WithArgs("l1", pgtype.Date{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Valid: true}, pgtype.Date{}, "inc").
		WillReturnRows(mock.NewRows([]string{"account_id", "budgeted", "inflow", "outflow"}).
			AddRow("groceries", int64(500), int64(200), int64(1200)))

	repo := NewBudgetRepository(mock)
	flows, err := repo.CategoryFlows(context.Background(), "l1", "inc", domain.Period{Start: &start})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := flows["groceries"]
	if got.Budgeted != 500 || got.Activity() != -1000 {
		t.Fatalf("unexpected flow %+v", got)
	}

	assertExpectations(t, mock)
}

func TestBudgetRepositoryIncomeFlow(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("FILTER (WHERE t.credit_account_id = $1)")).
		WithArgs("inc", "l1", pgtype.Date{}, pgtype.Date{}).
		WillReturnRows(mock.NewRows([]string{"credits", "debits", "assigned"}).
			AddRow(int64(5000), int64(4500), int64(4500)))

	repo := NewBudgetRepository(mock)
	flow, err := repo.IncomeFlow(context.Background(), "l1", "inc", domain.Period{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.Income() != 5000 {
		t.Fatalf("expected income 5000, got %d", flow.Income())
	}

	assertExpectations(t, mock)
}

func TestOutboxRepositoryCreateEncodesPayload(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(sql("INSERT INTO outbox_events")).
		WithArgs("e1", "t1", domain.AggregateTypeTransaction, domain.EventTypeTransactionPosted,
			[]byte(`{"amount":1200}`), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewOutboxRepository(mock)
	event := domain.NewOutboxEvent("e1", domain.AggregateTypeTransaction, "t1", domain.EventTypeTransactionPosted,
		map[string]any{"amount": 1200}, time.Now())
	if err := repo.Create(context.Background(), nil, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mock)
}

func TestTranslateLeavesUnknownErrors(t *testing.T) {
	boom := errors.New("boom")
	if got := translate(boom, domain.ErrNotFound, domain.ErrConflict, domain.ErrConflict); got != boom {
		t.Fatalf("expected error untouched, got %v", got)
	}
	if got := translate(pgx.ErrNoRows, nil, nil, nil); !errors.Is(got, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows without a replacement, got %v", got)
	}
	if translate(nil, domain.ErrNotFound, nil, nil) != nil {
		t.Fatalf("expected nil for nil")
	}
}
