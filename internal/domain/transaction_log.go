package domain

import "time"

// MutationType is the kind of change recorded in the transaction log.
type MutationType string

const (
	MutationCorrection MutationType = "correction"
	MutationDeletion   MutationType = "deletion"
)

// TransactionLog links a reversed-out transaction to its reversal and, for
// corrections, to its replacement. Rows are never updated.
type TransactionLog struct {
	ID                      string
	LedgerID                string
	OwnerID                 string
	OriginalTransactionID   string
	ReversalTransactionID   *string
	CorrectionTransactionID *string
	MutationType            MutationType
	Reason                  string
	CreatedAt               time.Time
}
