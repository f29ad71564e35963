package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxNameLength        = 255
	MinNameLength        = 1
	MaxDescriptionLength = 1024
	MaxMetadataSize      = 10240 // 10KB
	// MaxAmount caps a single posting, in minor units.
	MaxAmount = int64(1_000_000_000_000)
	// DateLayout is the wire format of transaction dates.
	DateLayout = "2006-01-02"
	// MinorUnitExponent is the number of decimal places shown for amounts.
	MinorUnitExponent = 2
)

// ValidateLedgerName validates a ledger name.
func ValidateLedgerName(name string) error {
	if err := validateName(name); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLedgerName, err.Error())
	}
	return nil
}

// ValidateAccountName validates an account or category name.
func ValidateAccountName(name string) error {
	if err := validateName(name); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAccountName, err.Error())
	}
	return nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if len(trimmed) < MinNameLength {
		return fmt.Errorf("name cannot be empty")
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("name exceeds %d characters", MaxNameLength)
	}

	return nil
}

// ValidateAmount validates a posting amount in minor units.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if amount > MaxAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateDescription validates a transaction description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}
	return nil
}

// ValidateMetadata validates metadata size
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("%w: metadata is not serializable", ErrInvalidInput)
	}

	if len(raw) > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, len(raw), MaxMetadataSize)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// ParseDate parses a YYYY-MM-DD date. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return &d, nil
}

// FormatMinorUnits renders an amount in minor units as a fixed-point string,
// e.g. 123456 -> "1234.56".
func FormatMinorUnits(amount int64) string {
	return decimal.New(amount, -MinorUnitExponent).StringFixed(MinorUnitExponent)
}
