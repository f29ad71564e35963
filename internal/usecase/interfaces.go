package usecase

import (
	"context"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// LedgerRepository defines data access for ledgers.
type LedgerRepository interface {
	Create(ctx context.Context, tx Transaction, ledger *domain.Ledger) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Ledger, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Ledger, error)
	// Delete removes the ledger and everything it owns.
	Delete(ctx context.Context, tx Transaction, ownerID, id string) error
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error)
	GetByName(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error)
	// GetByIDsForUpdate locks the given accounts for the rest of tx. Callers
	// pass ids sorted ascending.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	ListByLedger(ctx context.Context, ledgerID, ownerID string) ([]*domain.Account, error)
	Delete(ctx context.Context, tx Transaction, id string) error
}

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	// Create inserts t and assigns its Sequence.
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	MarkDeleted(ctx context.Context, tx Transaction, id string, deletedAt time.Time) error
	ListByLedger(ctx context.Context, ledgerID, ownerID string, limit, offset int) ([]*domain.Transaction, error)
	// ListByAccount returns every transaction touching the account in
	// insertion order, reversals and reversed-out originals included.
	ListByAccount(ctx context.Context, tx Transaction, accountID string) ([]*domain.Transaction, error)
	CountByAccount(ctx context.Context, tx Transaction, accountID string) (int, error)
}

// SnapshotRepository defines data access for balance snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, tx Transaction, snapshot *domain.BalanceSnapshot) error
	// GetLatest returns nil, nil when the account has no snapshots.
	GetLatest(ctx context.Context, accountID string) (*domain.BalanceSnapshot, error)
	GetLatestTx(ctx context.Context, tx Transaction, accountID string) (*domain.BalanceSnapshot, error)
	// ListByAccount returns the newest snapshots first. limit <= 0 means all.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.BalanceSnapshot, error)
	// LatestBalances returns the current balance of every account in the
	// ledger that has at least one snapshot.
	LatestBalances(ctx context.Context, ledgerID string) (map[string]int64, error)
	DeleteByAccount(ctx context.Context, tx Transaction, accountID string) error
}

// TransactionLogRepository defines data access for the correction audit trail.
type TransactionLogRepository interface {
	Create(ctx context.Context, tx Transaction, log *domain.TransactionLog) error
	ListByTransaction(ctx context.Context, ownerID, transactionID string) ([]*domain.TransactionLog, error)
}

// BudgetRepository aggregates active transactions for the budget view.
type BudgetRepository interface {
	CategoryFlows(ctx context.Context, ledgerID, incomeAccountID string, period domain.Period) (map[string]domain.CategoryFlow, error)
	IncomeFlow(ctx context.Context, ledgerID, incomeAccountID string, period domain.Period) (domain.IncomeFlow, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations. Entries carry a version and a write
// never replaces an entry with an equal or higher version.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// SetIfNewer stores value unless the entry already holds version or a
	// later one. It reports whether value was written.
	SetIfNewer(ctx context.Context, key string, version int64, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not succeed so it can be retried.
	Release(ctx context.Context, key string) error
}
