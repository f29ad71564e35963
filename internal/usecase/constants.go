package usecase

import "time"

const (
	// DefaultBalanceCacheTTL bounds how long a cached balance may be served.
	DefaultBalanceCacheTTL = 5 * time.Minute

	// DefaultHistoryLimit is the number of snapshots returned when the caller
	// does not ask for a specific amount.
	DefaultHistoryLimit = 50
)
