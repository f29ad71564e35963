package domain

import "time"

// Ledger is a top-level container of accounts owned by one user.
type Ledger struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
