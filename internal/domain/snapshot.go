package domain

import "time"

// OperationType tags why a balance snapshot was written.
type OperationType string

const (
	OperationTransactionInsert         OperationType = "transaction_insert"
	OperationTransactionUpdate         OperationType = "transaction_update"
	OperationTransactionUpdateReversal OperationType = "transaction_update_reversal"
	OperationTransactionDelete         OperationType = "transaction_delete"
	OperationBalanceRebuild            OperationType = "balance_rebuild"
)

// BalanceSnapshot records an account balance immediately after one
// transaction. Rows for an account form an append-only chain ordered by
// Sequence.
type BalanceSnapshot struct {
	ID              string
	AccountID       string
	TransactionID   string
	LedgerID        string
	OwnerID         string
	PreviousBalance int64
	Delta           int64
	Balance         int64
	OperationType   OperationType
	Sequence        int64
	CreatedAt       time.Time
}

// Verify checks balance = previous_balance + delta.
func (s *BalanceSnapshot) Verify() error {
	if s.PreviousBalance+s.Delta != s.Balance {
		return NewEntityError("balance snapshot", s.ID, s.LedgerID, ErrBrokenBalanceChain)
	}
	return nil
}

// Follows reports whether s links onto prev, i.e. starts where prev ended.
func (s *BalanceSnapshot) Follows(prev *BalanceSnapshot) bool {
	if prev == nil {
		return s.PreviousBalance == 0
	}
	return s.PreviousBalance == prev.Balance
}

// NextSnapshot derives the snapshot that follows latest (nil for an empty
// chain) after applying delta.
func NextSnapshot(latest *BalanceSnapshot, delta int64) (previous, balance int64) {
	if latest != nil {
		previous = latest.Balance
	}
	return previous, previous + delta
}
