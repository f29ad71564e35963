package usecase

import (
	"context"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// BalanceMaterializer maintains the append-only chain of balance snapshots.
// Callers must hold the row locks of every account they pass in.
type BalanceMaterializer struct {
	hooks
	snapshotRepo SnapshotRepository
	idGen        IDGenerator
}

// NewBalanceMaterializer creates a new BalanceMaterializer. Only the metrics
// and logger options apply.
func NewBalanceMaterializer(snapshotRepo SnapshotRepository, idGen IDGenerator, opts ...Option) *BalanceMaterializer {
	return &BalanceMaterializer{
		hooks:        newHooks(opts),
		snapshotRepo: snapshotRepo,
		idGen:        idGen,
	}
}

// Apply appends one snapshot per leg of t, debit account first.
func (m *BalanceMaterializer) Apply(
	ctx context.Context,
	tx Transaction,
	t *domain.Transaction,
	accounts map[string]*domain.Account,
	op domain.OperationType,
	now time.Time,
) ([]*domain.BalanceSnapshot, error) {
	legs := [2]struct {
		accountID string
		leg       domain.Leg
	}{
		{t.DebitAccountID, domain.LegDebit},
		{t.CreditAccountID, domain.LegCredit},
	}

	snapshots := make([]*domain.BalanceSnapshot, 0, len(legs))
	for _, l := range legs {
		account := accounts[l.accountID]
		if account == nil {
			return nil, domain.NewEntityError("account", l.accountID, t.LedgerID, domain.ErrAccountNotFound)
		}

		latest, err := m.snapshotRepo.GetLatestTx(ctx, tx, account.ID)
		if err != nil {
			return nil, err
		}

		if latest != nil {
			if err := latest.Verify(); err != nil {
				m.reportInconsistency(account, t, latest, err)
				return nil, err
			}
		}

		delta := domain.SignedDelta(account.InternalType, l.leg, t.Amount)
		previous, balance := domain.NextSnapshot(latest, delta)

		snapshot := &domain.BalanceSnapshot{
			ID:              m.idGen.Generate(),
			AccountID:       account.ID,
			TransactionID:   t.ID,
			LedgerID:        t.LedgerID,
			OwnerID:         t.OwnerID,
			PreviousBalance: previous,
			Delta:           delta,
			Balance:         balance,
			OperationType:   op,
			CreatedAt:       now,
		}

		if err := m.snapshotRepo.Create(ctx, tx, snapshot); err != nil {
			return nil, err
		}

		if m.metrics != nil {
			m.metrics.SnapshotsWritten.WithLabelValues(string(op)).Inc()
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// RebuildResult describes a recomputed snapshot chain.
type RebuildResult struct {
	AccountID       string
	LedgerID        string
	PreviousBalance int64
	Balance         int64
	Replayed        int
	RebuiltAt       time.Time
}

// Rebuild discards the account's snapshot chain and replays history, which
// must be every transaction touching the account in insertion order. This is
// the only operation allowed to remove snapshots.
func (m *BalanceMaterializer) Rebuild(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	history []*domain.Transaction,
	now time.Time,
) (*RebuildResult, error) {
	before, err := m.snapshotRepo.GetLatestTx(ctx, tx, account.ID)
	if err != nil {
		return nil, err
	}

	if err := m.snapshotRepo.DeleteByAccount(ctx, tx, account.ID); err != nil {
		return nil, err
	}

	var latest *domain.BalanceSnapshot
	for _, t := range history {
		delta := domain.SignedDelta(account.InternalType, t.LegOf(account.ID), t.Amount)
		previous, balance := domain.NextSnapshot(latest, delta)

		snapshot := &domain.BalanceSnapshot{
			ID:              m.idGen.Generate(),
			AccountID:       account.ID,
			TransactionID:   t.ID,
			LedgerID:        account.LedgerID,
			OwnerID:         account.OwnerID,
			PreviousBalance: previous,
			Delta:           delta,
			Balance:         balance,
			OperationType:   domain.OperationBalanceRebuild,
			CreatedAt:       now,
		}

		if err := m.snapshotRepo.Create(ctx, tx, snapshot); err != nil {
			return nil, err
		}

		latest = snapshot
	}

	result := &RebuildResult{
		AccountID: account.ID,
		LedgerID:  account.LedgerID,
		Replayed:  len(history),
		RebuiltAt: now,
	}
	if before != nil {
		result.PreviousBalance = before.Balance
	}
	if latest != nil {
		result.Balance = latest.Balance
	}

	if m.metrics != nil {
		m.metrics.SnapshotsWritten.WithLabelValues(string(domain.OperationBalanceRebuild)).Add(float64(len(history)))
	}

	return result, nil
}

func (m *BalanceMaterializer) reportInconsistency(account *domain.Account, t *domain.Transaction, latest *domain.BalanceSnapshot, err error) {
	if m.metrics != nil {
		m.metrics.InconsistenciesDetected.Inc()
	}

	m.logger.Error().
		Err(err).
		Str("account_id", account.ID).
		Str("ledger_id", account.LedgerID).
		Str("transaction_id", t.ID).
		Str("snapshot_id", latest.ID).
		Int64("previous_balance", latest.PreviousBalance).
		Int64("delta", latest.Delta).
		Int64("balance", latest.Balance).
		Msg("balance snapshot chain is broken")
}

// replayBalance computes an account balance from its full history without
// touching storage.
func replayBalance(account *domain.Account, history []*domain.Transaction) int64 {
	var balance int64
	for _, t := range history {
		if !t.Touches(account.ID) {
			continue
		}
		balance += domain.SignedDelta(account.InternalType, t.LegOf(account.ID), t.Amount)
	}
	return balance
}
