package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// AccountBalance is the current materialized balance of one account.
type AccountBalance struct {
	AccountID    string             `json:"account_id"`
	LedgerID     string             `json:"ledger_id"`
	Name         string             `json:"name"`
	Type         domain.AccountType `json:"type"`
	Balance      int64              `json:"balance"`
	SnapshotID   string             `json:"snapshot_id,omitempty"`
	Sequence     int64              `json:"sequence"`
	LastActivity *time.Time         `json:"last_activity,omitempty"`
}

// BalanceUseCase serves materialized balances and rebuilds broken chains.
type BalanceUseCase struct {
	hooks
	txManager    TransactionManager
	ledgerRepo   LedgerRepository
	accountRepo  AccountRepository
	txRepo       TransactionRepository
	snapshotRepo SnapshotRepository
	materializer *BalanceMaterializer
	idGen        IDGenerator
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	txManager TransactionManager,
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	snapshotRepo SnapshotRepository,
	materializer *BalanceMaterializer,
	idGen IDGenerator,
	opts ...Option,
) *BalanceUseCase {
	return &BalanceUseCase{
		hooks:        newHooks(opts),
		txManager:    txManager,
		ledgerRepo:   ledgerRepo,
		accountRepo:  accountRepo,
		txRepo:       txRepo,
		snapshotRepo: snapshotRepo,
		materializer: materializer,
		idGen:        idGen,
	}
}

// GetAccountBalance returns the account's latest snapshot balance, 0 when it
// has none.
func (uc *BalanceUseCase) GetAccountBalance(ctx context.Context, ownerID, accountID string) (*AccountBalance, error) {
	account, err := uc.accountRepo.GetByID(ctx, ownerID, accountID)
	if err != nil {
		return nil, domain.NewEntityError("account", accountID, "", err)
	}

	if cached, ok := uc.cachedBalance(ctx, accountID); ok {
		return cached, nil
	}

	latest, err := uc.snapshotRepo.GetLatest(ctx, accountID)
	if err != nil {
		return nil, err
	}

	balance := newAccountBalance(account, latest)
	if uc.cache != nil {
		// A writer that committed after the read above has already cached a
		// later sequence, which this fill cannot replace.
		_ = uc.cacheBalance(ctx, balance)
	}

	return balance, nil
}

// newAccountBalance describes account at snapshot latest, which may be nil.
func newAccountBalance(account *domain.Account, latest *domain.BalanceSnapshot) *AccountBalance {
	balance := &AccountBalance{
		AccountID: account.ID,
		LedgerID:  account.LedgerID,
		Name:      account.Name,
		Type:      account.Type,
	}
	if latest != nil {
		balance.Balance = latest.Balance
		balance.SnapshotID = latest.ID
		balance.Sequence = latest.Sequence
		balance.LastActivity = &latest.CreatedAt
	}
	return balance
}

func (uc *BalanceUseCase) cachedBalance(ctx context.Context, accountID string) (*AccountBalance, bool) {
	if uc.cache == nil {
		return nil, false
	}

	raw, err := uc.cache.Get(ctx, balanceCacheKey(accountID))
	if err != nil || raw == nil {
		uc.countCache("miss")
		return nil, false
	}

	var balance AccountBalance
	if err := json.Unmarshal(raw, &balance); err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("discarding unreadable cached balance")
		uc.countCache("miss")
		return nil, false
	}

	uc.countCache("hit")
	return &balance, true
}

func (uc *BalanceUseCase) countCache(result string) {
	if uc.metrics != nil {
		uc.metrics.BalanceCacheRequests.WithLabelValues(result).Inc()
	}
}

// GetAccountBalanceHistory returns up to limit snapshots, newest first.
func (uc *BalanceUseCase) GetAccountBalanceHistory(ctx context.Context, ownerID, accountID string, limit int) ([]*domain.BalanceSnapshot, error) {
	if _, err := uc.accountRepo.GetByID(ctx, ownerID, accountID); err != nil {
		return nil, domain.NewEntityError("account", accountID, "", err)
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit, _ = domain.ValidatePagination(limit, 0)

	return uc.snapshotRepo.ListByAccount(ctx, accountID, limit)
}

// GetLedgerBalances returns the balance of every account in a ledger, sorted
// by account name.
func (uc *BalanceUseCase) GetLedgerBalances(ctx context.Context, ownerID, ledgerID string) ([]*AccountBalance, error) {
	if _, err := uc.ledgerRepo.GetByID(ctx, ownerID, ledgerID); err != nil {
		return nil, domain.NewEntityError("ledger", ledgerID, ledgerID, err)
	}

	accounts, err := uc.accountRepo.ListByLedger(ctx, ledgerID, ownerID)
	if err != nil {
		return nil, err
	}

	latest, err := uc.snapshotRepo.LatestBalances(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	balances := make([]*AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		balances = append(balances, &AccountBalance{
			AccountID: a.ID,
			LedgerID:  a.LedgerID,
			Name:      a.Name,
			Type:      a.Type,
			Balance:   latest[a.ID],
		})
	}

	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Name < balances[j].Name
	})

	return balances, nil
}

// RebuildAccountBalance recomputes an account's snapshot chain from its full
// transaction history.
func (uc *BalanceUseCase) RebuildAccountBalance(ctx context.Context, ownerID, accountID string) (*RebuildResult, error) {
	result, err := uc.rebuild(ctx, ownerID, accountID)
	uc.observeError("rebuild_balance", err)
	return result, err
}

func (uc *BalanceUseCase) rebuild(ctx context.Context, ownerID, accountID string) (*RebuildResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, ownerID, accountID)
	if err != nil {
		return nil, domain.NewEntityError("account", accountID, "", err)
	}

	var result *RebuildResult
	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		locked, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, []string{account.ID})
		if err != nil {
			return err
		}
		if len(locked) != 1 {
			return domain.NewEntityError("account", account.ID, account.LedgerID, domain.ErrAccountNotFound)
		}

		history, err := uc.txRepo.ListByAccount(ctx, tx, account.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		result, err = uc.materializer.Rebuild(ctx, tx, locked[0], history, now)
		if err != nil {
			return err
		}

		event := domain.NewOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeAccount,
			account.ID,
			domain.EventTypeBalanceRebuilt,
			map[string]any{
				"account_id":       account.ID,
				"ledger_id":        account.LedgerID,
				"previous_balance": result.PreviousBalance,
				"balance":          result.Balance,
				"replayed":         result.Replayed,
			},
			now,
		)
		if err := uc.emit(ctx, tx, event); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.refreshBalances(ctx, uc.snapshotRepo, account)

	if uc.metrics != nil {
		uc.metrics.BalanceRebuilds.Inc()
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("ledger_id", account.LedgerID).
		Int64("previous_balance", result.PreviousBalance).
		Int64("balance", result.Balance).
		Int("replayed", result.Replayed).
		Msg("account balance rebuilt")

	return result, nil
}
