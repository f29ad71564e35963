package domain

import (
	"fmt"
	"time"
)

// AccountType is the semantic type of an account.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// InternalType is the behavioral polarity of an account: whether debits or
// credits increase its balance.
type InternalType string

const (
	InternalTypeAssetLike     InternalType = "asset_like"
	InternalTypeLiabilityLike InternalType = "liability_like"
)

// Special account names. Every ledger owns exactly one of each.
const (
	AccountNameIncome     = "Income"
	AccountNameOffBudget  = "Off-budget"
	AccountNameUnassigned = "Unassigned"
)

// SpecialAccountNames lists the accounts created together with a ledger, in
// creation order.
var SpecialAccountNames = []string{
	AccountNameIncome,
	AccountNameOffBudget,
	AccountNameUnassigned,
}

// Classify derives the internal type from a semantic account type.
func Classify(t AccountType) (InternalType, error) {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return InternalTypeAssetLike, nil
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return InternalTypeLiabilityLike, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, t)
	}
}

// ParseAccountType validates a raw type string.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if _, err := Classify(t); err != nil {
		return "", err
	}
	return t, nil
}

// Account is a named bucket of value inside a ledger.
type Account struct {
	ID           string
	LedgerID     string
	OwnerID      string
	Name         string
	Description  string
	Type         AccountType
	InternalType InternalType
	Metadata     map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Classify recomputes InternalType from Type. It must run before an account is
// persisted and whenever its type changes.
func (a *Account) Classify() error {
	it, err := Classify(a.Type)
	if err != nil {
		return err
	}
	a.InternalType = it
	return nil
}

// IsSpecial reports whether the account is one of the ledger's protected
// accounts.
func (a *Account) IsSpecial() bool {
	if a.Type != AccountTypeEquity {
		return false
	}
	return IsSpecialAccountName(a.Name)
}

// IsCategory reports whether the account is a budget category: an equity
// account that is not special.
func (a *Account) IsCategory() bool {
	return a.Type == AccountTypeEquity && !IsSpecialAccountName(a.Name)
}

// IsAssetLike reports the account polarity.
func (a *Account) IsAssetLike() bool {
	return a.InternalType == InternalTypeAssetLike
}

// IsCashLike reports whether the account holds real-world money, i.e. is an
// asset or a liability rather than a category or a revenue/expense bucket.
func (a *Account) IsCashLike() bool {
	return a.Type == AccountTypeAsset || a.Type == AccountTypeLiability
}

// IsSpecialAccountName reports whether name is reserved for a special account.
func IsSpecialAccountName(name string) bool {
	for _, n := range SpecialAccountNames {
		if n == name {
			return true
		}
	}
	return false
}

// NewSpecialAccount builds one of the protected accounts of a ledger.
func NewSpecialAccount(id, ledgerID, ownerID, name string, now time.Time) *Account {
	return &Account{
		ID:           id,
		LedgerID:     ledgerID,
		OwnerID:      ownerID,
		Name:         name,
		Type:         AccountTypeEquity,
		InternalType: InternalTypeLiabilityLike,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
