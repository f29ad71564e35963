package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Groceries"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateAccountName("   ")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected error to be invalid input, got %v", err)
		}
	})

	t.Run("multibyte name counted in characters", func(t *testing.T) {
		name := strings.Repeat("食", MaxNameLength)
		if err := ValidateAccountName(name); err != nil {
			t.Fatalf("expected %d runes to be accepted, got %v", MaxNameLength, err)
		}
		if err := ValidateAccountName(name + "費"); !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName past %d runes, got %v", MaxNameLength, err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxNameLength+1)
		err := ValidateAccountName(tooLong)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})
}

func TestValidateLedgerName(t *testing.T) {
	t.Parallel()

	if err := ValidateLedgerName("Personal"); err != nil {
		t.Fatalf("expected valid ledger name, got %v", err)
	}

	if err := ValidateLedgerName(""); !errors.Is(err, ErrInvalidLedgerName) {
		t.Fatalf("expected ErrInvalidLedgerName, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  int64
		wantErr error
	}{
		{name: "positive", amount: 1},
		{name: "zero", amount: 0, wantErr: ErrInvalidAmount},
		{name: "negative", amount: -500, wantErr: ErrInvalidAmount},
		{name: "at maximum", amount: MaxAmount},
		{name: "above maximum", amount: MaxAmount + 1, wantErr: ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateMetadata(t *testing.T) {
	t.Parallel()

	if err := ValidateMetadata(nil); err != nil {
		t.Fatalf("nil metadata should be valid, got %v", err)
	}

	small := map[string]any{"note": "weekly shop"}
	if err := ValidateMetadata(small); err != nil {
		t.Fatalf("expected small metadata to pass, got %v", err)
	}

	large := map[string]any{"blob": strings.Repeat("x", MaxMetadataSize)}
	if err := ValidateMetadata(large); !errors.Is(err, ErrMetadataTooLarge) {
		t.Fatalf("expected ErrMetadataTooLarge, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -10)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults (50,0), got (%d,%d)", limit, offset)
	}

	limit, offset = ValidatePagination(5000, 20)
	if limit != 1000 || offset != 20 {
		t.Fatalf("expected limit capped to 1000 and offset 20, got (%d,%d)", limit, offset)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 15 {
		t.Fatalf("unexpected date %v", d)
	}

	if d, err := ParseDate(""); err != nil || d != nil {
		t.Fatalf("expected nil date for empty input, got %v, %v", d, err)
	}

	if _, err := ParseDate("15/03/2024"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFormatMinorUnits(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		0:       "0.00",
		5:       "0.05",
		123456:  "1234.56",
		-120000: "-1200.00",
	}

	for in, want := range tests {
		if got := FormatMinorUnits(in); got != want {
			t.Fatalf("FormatMinorUnits(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateDescription(t *testing.T) {
	t.Parallel()

	if err := ValidateDescription(strings.Repeat("é", MaxDescriptionLength)); err != nil {
		t.Fatalf("expected %d runes to be accepted, got %v", MaxDescriptionLength, err)
	}
	if err := ValidateDescription(strings.Repeat("e", MaxDescriptionLength+1)); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("expected ErrInvalidDescription, got %v", err)
	}
}
