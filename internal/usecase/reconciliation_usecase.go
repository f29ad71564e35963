package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// ReconciliationUseCase checks materialized balances against the
// transaction history they were derived from.
type ReconciliationUseCase struct {
	hooks
	ledgerRepo   LedgerRepository
	accountRepo  AccountRepository
	txRepo       TransactionRepository
	snapshotRepo SnapshotRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	snapshotRepo SnapshotRepository,
	opts ...Option,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		hooks:        newHooks(opts),
		ledgerRepo:   ledgerRepo,
		accountRepo:  accountRepo,
		txRepo:       txRepo,
		snapshotRepo: snapshotRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	LedgerID          string
	AccountName       string
	RecordedBalance   int64
	CalculatedBalance int64
	Difference        int64
	Snapshots         int
	BrokenSnapshots   []string
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount replays an account's transactions and compares the result
// with its latest snapshot. It also walks the snapshot chain and reports every
// row that breaks balance = previous_balance + delta or does not link onto
// its predecessor.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, ownerID, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, ownerID, accountID)
	if err != nil {
		return nil, domain.NewEntityError("account", accountID, "", err)
	}
	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	history, err := uc.txRepo.ListByAccount(ctx, nil, account.ID)
	if err != nil {
		return nil, err
	}

	snapshots, err := uc.snapshotRepo.ListByAccount(ctx, account.ID, 0)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		AccountID:         account.ID,
		LedgerID:          account.LedgerID,
		AccountName:       account.Name,
		CalculatedBalance: replayBalance(account, history),
		Snapshots:         len(snapshots),
		BrokenSnapshots:   []string{},
		LastChecked:       time.Now().UTC(),
	}

	// Snapshots come newest first; walk them oldest first
	var prev *domain.BalanceSnapshot
	for i := len(snapshots) - 1; i >= 0; i-- {
		s := snapshots[i]
		if s.Verify() != nil || !s.Follows(prev) {
			result.BrokenSnapshots = append(result.BrokenSnapshots, s.ID)
		}
		prev = s
	}
	if prev != nil {
		result.RecordedBalance = prev.Balance
	}

	result.Difference = result.RecordedBalance - result.CalculatedBalance
	result.IsReconciled = result.Difference == 0 && len(result.BrokenSnapshots) == 0

	if !result.IsReconciled {
		if uc.metrics != nil {
			uc.metrics.InconsistenciesDetected.Inc()
		}
		uc.logger.Error().
			Str("account_id", account.ID).
			Str("ledger_id", account.LedgerID).
			Int64("recorded_balance", result.RecordedBalance).
			Int64("calculated_balance", result.CalculatedBalance).
			Strs("broken_snapshots", result.BrokenSnapshots).
			Msg("account failed reconciliation")
	}

	return result, nil
}

// ReconcileLedger reconciles every account of a ledger.
func (uc *ReconciliationUseCase) ReconcileLedger(ctx context.Context, ownerID, ledgerID string) ([]*ReconciliationResult, error) {
	if _, err := uc.ledgerRepo.GetByID(ctx, ownerID, ledgerID); err != nil {
		return nil, domain.NewEntityError("ledger", ledgerID, ledgerID, err)
	}

	accounts, err := uc.accountRepo.ListByLedger(ctx, ledgerID, ownerID)
	if err != nil {
		return nil, err
	}

	results := make([]*ReconciliationResult, 0, len(accounts))
	for _, account := range accounts {
		result, err := uc.reconcile(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ConsistencyResult holds the ledger-wide double-entry totals.
type ConsistencyResult struct {
	LedgerID           string
	AssetLikeTotal     int64
	LiabilityLikeTotal int64
	Difference         int64
	Consistent         bool
}

// CheckLedgerConsistency verifies that the asset-like balances of a ledger
// equal its liability-like balances. An unbalanced ledger is returned
// together with an error wrapping domain.ErrLedgerUnbalanced.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context, ownerID, ledgerID string) (*ConsistencyResult, error) {
	if _, err := uc.ledgerRepo.GetByID(ctx, ownerID, ledgerID); err != nil {
		return nil, domain.NewEntityError("ledger", ledgerID, ledgerID, err)
	}

	accounts, err := uc.accountRepo.ListByLedger(ctx, ledgerID, ownerID)
	if err != nil {
		return nil, err
	}

	balances, err := uc.snapshotRepo.LatestBalances(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	result := &ConsistencyResult{LedgerID: ledgerID}
	for _, a := range accounts {
		if a.IsAssetLike() {
			result.AssetLikeTotal += balances[a.ID]
		} else {
			result.LiabilityLikeTotal += balances[a.ID]
		}
	}

	result.Difference = result.AssetLikeTotal - result.LiabilityLikeTotal
	result.Consistent = result.Difference == 0

	if !result.Consistent {
		err := domain.NewEntityError("ledger", ledgerID, ledgerID, fmt.Errorf(
			"%w: asset_like=%d liability_like=%d difference=%d",
			domain.ErrLedgerUnbalanced,
			result.AssetLikeTotal,
			result.LiabilityLikeTotal,
			result.Difference,
		))
		uc.observeError("check_consistency", err)
		return result, err
	}

	return result, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	LedgerID           string
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	Consistency        *ConsistencyResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport reconciles every account of a ledger and
// checks ledger-wide consistency.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context, ownerID, ledgerID string) (*ReconciliationReport, error) {
	results, err := uc.ReconcileLedger(ctx, ownerID, ledgerID)
	if err != nil {
		return nil, err
	}

	consistency, err := uc.CheckLedgerConsistency(ctx, ownerID, ledgerID)
	if consistency == nil {
		return nil, err
	}

	report := &ReconciliationReport{
		LedgerID:         ledgerID,
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		Consistency:      consistency,
		LedgerConsistent: consistency.Consistent,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
