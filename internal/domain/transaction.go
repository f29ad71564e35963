package domain

import (
	"time"
)

// ReversalPrefix is prepended to the description of reversal transactions.
const ReversalPrefix = "REVERSAL: "

// Flow is the user-facing direction of money relative to a subject account.
type Flow string

const (
	FlowInflow  Flow = "inflow"
	FlowOutflow Flow = "outflow"
)

// ParseFlow validates a raw flow literal.
func ParseFlow(s string) (Flow, error) {
	switch f := Flow(s); f {
	case FlowInflow, FlowOutflow:
		return f, nil
	default:
		return "", ErrInvalidFlow
	}
}

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPosted  TransactionStatus = "posted"
)

// ParseTransactionStatus validates a raw status, defaulting to posted.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch st := TransactionStatus(s); st {
	case "":
		return TransactionStatusPosted, nil
	case TransactionStatusPending, TransactionStatusPosted:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Leg identifies one side of a double-entry transaction.
type Leg string

const (
	LegDebit  Leg = "debit"
	LegCredit Leg = "credit"
)

// Transaction is a balanced movement of Amount from the credit account to the
// debit account. It is immutable once created; corrections append a reversal
// and mark the original as deleted.
type Transaction struct {
	ID              string
	LedgerID        string
	OwnerID         string
	Date            time.Time
	Description     string
	Amount          int64
	DebitAccountID  string
	CreditAccountID string
	Status          TransactionStatus
	Metadata        map[string]any
	ReversalOf      *string
	DeletedAt       *time.Time
	Sequence        int64
	CreatedAt       time.Time
}

// Validate checks the structural invariants of a transaction.
func (t *Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.DebitAccountID == t.CreditAccountID {
		return ErrSameAccount
	}
	return nil
}

// IsReversal reports whether t cancels another transaction.
func (t *Transaction) IsReversal() bool {
	return t.ReversalOf != nil
}

// IsDeleted reports whether t has been reversed out.
func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsActive reports whether t counts toward budget aggregates: neither a
// reversal nor reversed out.
func (t *Transaction) IsActive() bool {
	return !t.IsReversal() && !t.IsDeleted()
}

// Touches reports whether accountID is one of t's legs.
func (t *Transaction) Touches(accountID string) bool {
	return t.DebitAccountID == accountID || t.CreditAccountID == accountID
}

// LegOf returns which side of t accountID sits on.
func (t *Transaction) LegOf(accountID string) Leg {
	if t.DebitAccountID == accountID {
		return LegDebit
	}
	return LegCredit
}

// Reversal builds the transaction that cancels t: same amount and date, legs
// swapped.
func (t *Transaction) Reversal(id string, now time.Time) *Transaction {
	originalID := t.ID
	return &Transaction{
		ID:              id,
		LedgerID:        t.LedgerID,
		OwnerID:         t.OwnerID,
		Date:            t.Date,
		Description:     ReversalPrefix + t.Description,
		Amount:          t.Amount,
		DebitAccountID:  t.CreditAccountID,
		CreditAccountID: t.DebitAccountID,
		Status:          TransactionStatusPosted,
		ReversalOf:      &originalID,
		CreatedAt:       now,
	}
}

// ResolveLegs maps a subject account, a flow and a category account onto the
// debit and credit account ids.
//
//	subject        flow     debit     credit
//	asset_like     inflow   subject   category
//	asset_like     outflow  category  subject
//	liability_like inflow   category  subject
//	liability_like outflow  subject   category
func ResolveLegs(subject InternalType, flow Flow, subjectID, categoryID string) (debitID, creditID string) {
	subjectIsDebit := (subject == InternalTypeAssetLike) == (flow == FlowInflow)
	if subjectIsDebit {
		return subjectID, categoryID
	}
	return categoryID, subjectID
}

// SignedDelta returns the balance change an account of the given polarity
// sees when it sits on leg of a transaction of amount. Debits increase
// asset-like accounts and credits increase liability-like ones.
func SignedDelta(it InternalType, leg Leg, amount int64) int64 {
	debitSign := int64(-1)
	if it == InternalTypeAssetLike {
		debitSign = 1
	}
	if leg == LegDebit {
		return debitSign * amount
	}
	return -debitSign * amount
}

// NormalizeDate truncates t to a UTC calendar day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
