package usecase_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	b := e.newBook(t, "Personal")

	tests := []struct {
		name         string
		input        usecase.CreateAccountInput
		want         error
		internalType domain.InternalType
	}{
		{
			name:         "asset is asset-like",
			input:        usecase.CreateAccountInput{Name: "Checking", Type: "asset"},
			internalType: domain.InternalTypeAssetLike,
		},
		{
			name:         "expense is asset-like",
			input:        usecase.CreateAccountInput{Name: "Fees", Type: "expense"},
			internalType: domain.InternalTypeAssetLike,
		},
		{
			name:         "liability is liability-like",
			input:        usecase.CreateAccountInput{Name: "Visa", Type: "liability"},
			internalType: domain.InternalTypeLiabilityLike,
		},
		{
			name:         "revenue is liability-like",
			input:        usecase.CreateAccountInput{Name: "Salary", Type: "revenue"},
			internalType: domain.InternalTypeLiabilityLike,
		},
		{
			name:  "unknown type",
			input: usecase.CreateAccountInput{Name: "Stocks", Type: "investment"},
			want:  domain.ErrInvalidAccountType,
		},
		{
			name:  "blank name",
			input: usecase.CreateAccountInput{Name: "   ", Type: "asset"},
			want:  domain.ErrInvalidAccountName,
		},
		{
			name:  "duplicate name",
			input: usecase.CreateAccountInput{Name: domain.AccountNameIncome, Type: "equity"},
			want:  domain.ErrConflict,
		},
		{
			name:  "unknown ledger",
			input: usecase.CreateAccountInput{LedgerID: "missing", Name: "Cash", Type: "asset"},
			want:  domain.ErrLedgerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			input.OwnerID = owner
			if input.LedgerID == "" {
				input.LedgerID = b.ledger.ID
			}

			account, err := e.accounts.CreateAccount(ctx, input)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.internalType, account.InternalType)
			assert.False(t, account.IsSpecial())
		})
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.AccountsCreated.WithLabelValues("asset")))
}

func TestAccountUseCase_FindCategoryByName(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	b := e.newBook(t, "Personal")
	groceries := e.category(t, b, "Groceries")
	e.account(t, b, "Checking", domain.AccountTypeAsset)

	found, err := e.accounts.FindCategoryByName(ctx, b.ledger.ID, owner, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, groceries.ID, found.ID)

	_, err = e.accounts.FindCategoryByName(ctx, b.ledger.ID, owner, "groceries")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = e.accounts.FindCategoryByName(ctx, b.ledger.ID, owner, "Checking")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = e.accounts.FindCategoryByName(ctx, b.ledger.ID, "U2", "Groceries")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountUseCase_DeleteAccount(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	b := e.newBook(t, "Personal")
	checking := e.account(t, b, "Checking", domain.AccountTypeAsset)
	unused := e.category(t, b, "Vacation")

	e.post(t, b, domain.FlowInflow, 100, checking, nil)

	t.Run("special account", func(t *testing.T) {
		err := e.accounts.DeleteAccount(ctx, owner, b.income.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("account in use", func(t *testing.T) {
		err := e.accounts.DeleteAccount(ctx, owner, checking.ID)
		assert.ErrorIs(t, err, domain.ErrAccountInUse)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("foreign owner", func(t *testing.T) {
		err := e.accounts.DeleteAccount(ctx, "U2", unused.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unused account", func(t *testing.T) {
		require.NoError(t, e.accounts.DeleteAccount(ctx, owner, unused.ID))

		_, err := e.accounts.GetAccount(ctx, owner, unused.ID)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		assert.Contains(t, eventTypes(t, e), domain.EventTypeAccountDeleted)
	})

	assert.Equal(t, float64(2), testutil.ToFloat64(e.metrics.OperationErrors.WithLabelValues("delete_account", "forbidden"))+
		testutil.ToFloat64(e.metrics.OperationErrors.WithLabelValues("delete_account", "conflict")))
}
