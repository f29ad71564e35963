package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

func TestLedgerUseCase_CreateLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("creates special accounts", func(t *testing.T) {
		e := newEngine(t)

		result, err := e.ledgers.CreateLedger(ctx, usecase.CreateLedgerInput{OwnerID: owner, Name: "Personal"})
		require.NoError(t, err)
		require.Len(t, result.Accounts, 3)

		names := map[string]bool{}
		for _, a := range result.Accounts {
			assert.Equal(t, result.Ledger.ID, a.LedgerID)
			assert.Equal(t, domain.AccountTypeEquity, a.Type)
			assert.Equal(t, domain.InternalTypeLiabilityLike, a.InternalType)
			assert.True(t, a.IsSpecial())
			names[a.Name] = true
		}
		assert.True(t, names[domain.AccountNameIncome])
		assert.True(t, names[domain.AccountNameOffBudget])
		assert.True(t, names[domain.AccountNameUnassigned])

		accounts, err := e.accounts.ListAccounts(ctx, result.Ledger.ID, owner)
		require.NoError(t, err)
		assert.Len(t, accounts, 3)
	})

	tests := []struct {
		name  string
		input usecase.CreateLedgerInput
		want  error
	}{
		{name: "missing owner", input: usecase.CreateLedgerInput{Name: "Personal"}, want: domain.ErrMissingOwner},
		{name: "empty name", input: usecase.CreateLedgerInput{OwnerID: owner}, want: domain.ErrInvalidLedgerName},
		{name: "name too long", input: usecase.CreateLedgerInput{OwnerID: owner, Name: strings.Repeat("x", 300)}, want: domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t)
			_, err := e.ledgers.CreateLedger(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("name is unique per owner", func(t *testing.T) {
		e := newEngine(t)
		e.newBook(t, "Personal")

		_, err := e.ledgers.CreateLedger(ctx, usecase.CreateLedgerInput{OwnerID: owner, Name: "Personal"})
		assert.ErrorIs(t, err, domain.ErrConflict)

		_, err = e.ledgers.CreateLedger(ctx, usecase.CreateLedgerInput{OwnerID: "U2", Name: "Personal"})
		assert.NoError(t, err)
	})
}

func TestLedgerUseCase_GetAndList(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	first := e.newBook(t, "Personal")
	e.newBook(t, "Business")

	got, err := e.ledgers.GetLedger(ctx, owner, first.ledger.ID)
	require.NoError(t, err)
	assert.Equal(t, "Personal", got.Name)

	_, err = e.ledgers.GetLedger(ctx, "U2", first.ledger.ID)
	assert.ErrorIs(t, err, domain.ErrLedgerNotFound)

	all, err := e.ledgers.ListLedgers(ctx, usecase.ListLedgersInput{OwnerID: owner})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	page, err := e.ledgers.ListLedgers(ctx, usecase.ListLedgersInput{OwnerID: owner, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	none, err := e.ledgers.ListLedgers(ctx, usecase.ListLedgersInput{OwnerID: "U2"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLedgerUseCase_DeleteLedger(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	b := e.newBook(t, "Personal")
	checking := e.account(t, b, "Checking", domain.AccountTypeAsset)
	e.post(t, b, domain.FlowInflow, 100, checking, nil)

	err := e.ledgers.DeleteLedger(ctx, "U2", b.ledger.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, e.ledgers.DeleteLedger(ctx, owner, b.ledger.ID))

	_, err = e.ledgers.GetLedger(ctx, owner, b.ledger.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.accounts.GetAccount(ctx, owner, checking.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The name is free again
	e.newBook(t, "Personal")
}
