package usecase

import (
	"context"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// CorrectionUseCase replaces or removes posted transactions by appending
// reversals. Transactions and snapshots are never edited in place.
type CorrectionUseCase struct {
	hooks
	resolver
	poster
	txManager TransactionManager
	logRepo   TransactionLogRepository
	idGen     IDGenerator
}

// NewCorrectionUseCase creates a new CorrectionUseCase.
func NewCorrectionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	logRepo TransactionLogRepository,
	materializer *BalanceMaterializer,
	idGen IDGenerator,
	opts ...Option,
) *CorrectionUseCase {
	return &CorrectionUseCase{
		hooks:     newHooks(opts),
		resolver:  resolver{accountRepo: accountRepo, idGen: idGen},
		poster:    poster{accountRepo: accountRepo, txRepo: txRepo, materializer: materializer},
		txManager: txManager,
		logRepo:   logRepo,
		idGen:     idGen,
	}
}

// CorrectTransactionInput represents the replacement values for a
// transaction. The ledger is always the original's.
type CorrectTransactionInput struct {
	Date              *time.Time
	Metadata          map[string]any
	OwnerID           string
	TransactionID     string
	Description       string
	Flow              string
	Status            string
	SubjectAccountID  string
	CategoryAccountID string
	Reason            string
	Amount            int64
}

// DeleteTransactionInput represents input for reversing out a transaction.
type DeleteTransactionInput struct {
	OwnerID       string
	TransactionID string
	Reason        string
}

// CorrectionResult holds every row a correction or deletion wrote.
type CorrectionResult struct {
	Original   *domain.Transaction
	Reversal   *domain.Transaction
	Correction *domain.Transaction
	Log        *domain.TransactionLog
}

// CorrectTransaction reverses the original and posts the corrected values in
// one unit of work.
func (uc *CorrectionUseCase) CorrectTransaction(ctx context.Context, input CorrectTransactionInput) (*CorrectionResult, error) {
	start := time.Now()
	result, err := uc.correct(ctx, input)
	uc.observeError("correct_transaction", err)
	uc.observeDuration(start)
	return result, err
}

// DeleteTransaction reverses the original without a replacement.
func (uc *CorrectionUseCase) DeleteTransaction(ctx context.Context, input DeleteTransactionInput) (*CorrectionResult, error) {
	start := time.Now()
	result, err := uc.remove(ctx, input)
	uc.observeError("delete_transaction", err)
	uc.observeDuration(start)
	return result, err
}

func (uc *CorrectionUseCase) correct(ctx context.Context, input CorrectTransactionInput) (*CorrectionResult, error) {
	original, err := uc.loadCorrectable(ctx, input.OwnerID, input.TransactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p, err := uc.resolve(ctx, PostTransactionInput{
		LedgerID:          original.LedgerID,
		OwnerID:           input.OwnerID,
		Date:              input.Date,
		Description:       input.Description,
		Flow:              input.Flow,
		Status:            input.Status,
		Amount:            input.Amount,
		SubjectAccountID:  input.SubjectAccountID,
		CategoryAccountID: input.CategoryAccountID,
		Metadata:          input.Metadata,
	}, now)
	if err != nil {
		return nil, err
	}

	result, err := uc.apply(ctx, original.ID, domain.MutationCorrection, input.Reason, p.transaction, now)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCorrected.Inc()
	}

	uc.logger.Info().
		Str("ledger_id", original.LedgerID).
		Str("transaction_id", original.ID).
		Str("correction_id", result.Correction.ID).
		Msg("transaction corrected")

	return result, nil
}

func (uc *CorrectionUseCase) remove(ctx context.Context, input DeleteTransactionInput) (*CorrectionResult, error) {
	original, err := uc.loadCorrectable(ctx, input.OwnerID, input.TransactionID)
	if err != nil {
		return nil, err
	}

	result, err := uc.apply(ctx, original.ID, domain.MutationDeletion, input.Reason, nil, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsDeleted.Inc()
	}

	uc.logger.Info().
		Str("ledger_id", original.LedgerID).
		Str("transaction_id", original.ID).
		Str("reversal_id", result.Reversal.ID).
		Msg("transaction deleted")

	return result, nil
}

// loadCorrectable runs the pre-write checks on the original transaction.
func (uc *CorrectionUseCase) loadCorrectable(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	if ownerID == "" {
		return nil, domain.ErrMissingOwner
	}

	original, err := uc.txRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, domain.NewEntityError("transaction", id, "", err)
	}

	if err := checkCorrectable(original); err != nil {
		return nil, err
	}

	return original, nil
}

func checkCorrectable(t *domain.Transaction) error {
	if t.IsReversal() {
		return domain.NewEntityError("transaction", t.ID, t.LedgerID, domain.ErrReversalNotCorrectable)
	}
	if t.IsDeleted() {
		return domain.NewEntityError("transaction", t.ID, t.LedgerID, domain.ErrTransactionReversed)
	}
	return nil
}

// apply writes the reversal, marks the original deleted, posts the
// correction when one is given and appends the log row.
func (uc *CorrectionUseCase) apply(
	ctx context.Context,
	originalID string,
	mutation domain.MutationType,
	reason string,
	correction *domain.Transaction,
	now time.Time,
) (*CorrectionResult, error) {
	reversalOp := domain.OperationTransactionDelete
	eventType := domain.EventTypeTransactionDeleted
	if mutation == domain.MutationCorrection {
		reversalOp = domain.OperationTransactionUpdateReversal
		eventType = domain.EventTypeTransactionCorrected
	}

	var (
		result *CorrectionResult
		locked map[string]*domain.Account
	)
	reversalID := uc.idGen.Generate()
	logID := uc.idGen.Generate()

	err := uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		// 1. Lock the original and re-check it under the lock
		original, err := uc.txRepo.GetByIDForUpdate(ctx, tx, originalID)
		if err != nil {
			return domain.NewEntityError("transaction", originalID, "", err)
		}
		if err := checkCorrectable(original); err != nil {
			return err
		}

		reversal := original.Reversal(reversalID, now)

		// 2. Lock every affected account in sorted order
		touched := []*domain.Transaction{reversal}
		if correction != nil {
			touched = append(touched, correction)
		}
		accounts, err := uc.lock(ctx, tx, transactionAccountIDs(touched...))
		if err != nil {
			return err
		}

		// 3. Reverse, retire the original, then post the replacement
		if err := uc.post(ctx, tx, reversal, accounts, reversalOp, now); err != nil {
			return err
		}

		if err := uc.txRepo.MarkDeleted(ctx, tx, original.ID, now); err != nil {
			return err
		}
		original.DeletedAt = &now

		log := &domain.TransactionLog{
			ID:                    logID,
			LedgerID:              original.LedgerID,
			OwnerID:               original.OwnerID,
			OriginalTransactionID: original.ID,
			ReversalTransactionID: &reversal.ID,
			MutationType:          mutation,
			Reason:                reason,
			CreatedAt:             now,
		}

		if correction != nil {
			if err := uc.post(ctx, tx, correction, accounts, domain.OperationTransactionUpdate, now); err != nil {
				return err
			}
			log.CorrectionTransactionID = &correction.ID
		}

		if err := uc.logRepo.Create(ctx, tx, log); err != nil {
			return err
		}

		payload := map[string]any{
			"transaction_id": original.ID,
			"ledger_id":      original.LedgerID,
			"reversal_id":    reversal.ID,
			"reason":         reason,
		}
		if correction != nil {
			payload["correction_id"] = correction.ID
			payload["correction"] = domain.TransactionPayload(correction)
		}
		event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeTransaction, original.ID, eventType, payload, now)
		if err := uc.emit(ctx, tx, event); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = &CorrectionResult{
			Original:   original,
			Reversal:   reversal,
			Correction: correction,
			Log:        log,
		}
		locked = accounts
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.refreshBalances(ctx, uc.materializer.snapshotRepo, sortedAccounts(locked)...)

	return result, nil
}

// ListTransactionLog returns the audit trail of a transaction.
func (uc *CorrectionUseCase) ListTransactionLog(ctx context.Context, ownerID, transactionID string) ([]*domain.TransactionLog, error) {
	if _, err := uc.txRepo.GetByID(ctx, ownerID, transactionID); err != nil {
		return nil, domain.NewEntityError("transaction", transactionID, "", err)
	}
	return uc.logRepo.ListByTransaction(ctx, ownerID, transactionID)
}
