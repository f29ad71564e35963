package domain

import (
	"errors"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		accountType AccountType
		want        InternalType
	}{
		{AccountTypeAsset, InternalTypeAssetLike},
		{AccountTypeExpense, InternalTypeAssetLike},
		{AccountTypeLiability, InternalTypeLiabilityLike},
		{AccountTypeEquity, InternalTypeLiabilityLike},
		{AccountTypeRevenue, InternalTypeLiabilityLike},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			got, err := Classify(tt.accountType)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Classify(%s) = %s, want %s", tt.accountType, got, tt.want)
			}
		})
	}

	if _, err := Classify("cash"); !errors.Is(err, ErrInvalidAccountType) {
		t.Fatalf("expected ErrInvalidAccountType, got %v", err)
	}
}

func TestAccount_ClassifyReappliesOnTypeChange(t *testing.T) {
	acc := &Account{Type: AccountTypeAsset}
	if err := acc.Classify(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acc.IsAssetLike() {
		t.Fatalf("expected asset_like, got %s", acc.InternalType)
	}

	acc.Type = AccountTypeLiability
	if err := acc.Classify(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.IsAssetLike() {
		t.Fatalf("expected liability_like after type change, got %s", acc.InternalType)
	}
}

func TestAccount_SpecialAndCategory(t *testing.T) {
	now := time.Now()
	for _, name := range SpecialAccountNames {
		acc := NewSpecialAccount("id", "ledger", "owner", name, now)
		if !acc.IsSpecial() {
			t.Fatalf("expected %s to be special", name)
		}
		if acc.IsCategory() {
			t.Fatalf("expected %s not to be a category", name)
		}
		if acc.InternalType != InternalTypeLiabilityLike {
			t.Fatalf("expected %s to be liability_like", name)
		}
	}

	groceries := &Account{Name: "Groceries", Type: AccountTypeEquity}
	if groceries.IsSpecial() || !groceries.IsCategory() {
		t.Fatalf("expected Groceries to be a plain category")
	}

	// Name match alone does not make an asset account special.
	checking := &Account{Name: AccountNameIncome, Type: AccountTypeAsset}
	if checking.IsSpecial() {
		t.Fatalf("asset account named Income should not be special")
	}
}
