package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine wraps exactly one of these.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInconsistent = errors.New("inconsistent")
)

var (
	// Ledger errors
	ErrLedgerNotFound    = fmt.Errorf("ledger %w", ErrNotFound)
	ErrLedgerNameTaken   = fmt.Errorf("%w: ledger name already exists", ErrConflict)
	ErrInvalidLedgerName = fmt.Errorf("%w: invalid ledger name", ErrInvalidInput)

	// Account errors
	ErrAccountNotFound         = fmt.Errorf("account %w", ErrNotFound)
	ErrCategoryNotFound        = fmt.Errorf("category %w", ErrNotFound)
	ErrAccountNameTaken        = fmt.Errorf("%w: account name already exists", ErrConflict)
	ErrInvalidAccountName      = fmt.Errorf("%w: invalid account name", ErrInvalidInput)
	ErrInvalidAccountType      = fmt.Errorf("%w: invalid account type", ErrInvalidInput)
	ErrSpecialAccountProtected = fmt.Errorf("%w: special accounts cannot be deleted", ErrForbidden)
	ErrAccountInUse            = fmt.Errorf("%w: account is referenced by transactions", ErrConflict)

	// Transaction errors
	ErrTransactionNotFound    = fmt.Errorf("transaction %w", ErrNotFound)
	ErrInvalidAmount          = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	ErrAmountTooLarge         = fmt.Errorf("%w: amount exceeds maximum allowed", ErrInvalidInput)
	ErrInvalidFlow            = fmt.Errorf("%w: flow must be inflow or outflow", ErrInvalidInput)
	ErrInvalidStatus          = fmt.Errorf("%w: status must be pending or posted", ErrInvalidInput)
	ErrSameAccount            = fmt.Errorf("%w: debit and credit accounts must differ", ErrInvalidInput)
	ErrInvalidDescription     = fmt.Errorf("%w: invalid description", ErrInvalidInput)
	ErrInvalidDateRange       = fmt.Errorf("%w: start date is after end date", ErrInvalidInput)
	ErrMetadataTooLarge       = fmt.Errorf("%w: metadata size exceeds limit", ErrInvalidInput)
	ErrEmptyBatch             = fmt.Errorf("%w: batch contains no transactions", ErrInvalidInput)
	ErrReversalNotCorrectable = fmt.Errorf("%w: reversal transactions cannot be corrected or deleted", ErrInvalidInput)
	ErrTransactionReversed    = fmt.Errorf("%w: transaction has already been reversed", ErrConflict)
	ErrMissingOwner           = fmt.Errorf("%w: owner is required", ErrInvalidInput)

	// Balance errors
	ErrBrokenBalanceChain = fmt.Errorf("%w: balance snapshot chain is broken", ErrInconsistent)
	ErrLedgerUnbalanced   = fmt.Errorf("%w: ledger debits and credits do not net to zero", ErrInconsistent)
)

// EntityError attaches the entity kind, identifier and ledger to an error so
// callers can act on it.
type EntityError struct {
	Entity   string
	ID       string
	LedgerID string
	Err      error
}

func (e *EntityError) Error() string {
	msg := e.Entity
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.LedgerID != "" {
		msg += " (ledger " + e.LedgerID + ")"
	}
	return msg + ": " + e.Err.Error()
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// NewEntityError wraps err with entity context.
func NewEntityError(entity, id, ledgerID string, err error) error {
	return &EntityError{Entity: entity, ID: id, LedgerID: ledgerID, Err: err}
}

// Kind returns the taxonomy sentinel err belongs to, or nil when err is not a
// domain error.
func Kind(err error) error {
	for _, k := range []error{ErrInvalidInput, ErrNotFound, ErrConflict, ErrForbidden, ErrInconsistent} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// KindName returns a short label for metrics and logs.
func KindName(err error) string {
	switch Kind(err) {
	case ErrInvalidInput:
		return "invalid_input"
	case ErrNotFound:
		return "not_found"
	case ErrConflict:
		return "conflict"
	case ErrForbidden:
		return "forbidden"
	case ErrInconsistent:
		return "inconsistent"
	default:
		return "internal"
	}
}
