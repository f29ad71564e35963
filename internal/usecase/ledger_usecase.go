package usecase

import (
	"context"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// LedgerUseCase handles ledger lifecycle.
type LedgerUseCase struct {
	hooks
	txManager   TransactionManager
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	idGen       IDGenerator
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	idGen IDGenerator,
	opts ...Option,
) *LedgerUseCase {
	return &LedgerUseCase{
		hooks:       newHooks(opts),
		txManager:   txManager,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// CreateLedgerInput represents input for creating a ledger.
type CreateLedgerInput struct {
	OwnerID     string
	Name        string
	Description string
	Metadata    map[string]any
}

// CreateLedgerResult is a new ledger together with its special accounts.
type CreateLedgerResult struct {
	Ledger   *domain.Ledger
	Accounts []*domain.Account
}

// CreateLedger creates a ledger and its Income, Off-budget and Unassigned
// accounts in one unit of work.
func (uc *LedgerUseCase) CreateLedger(ctx context.Context, input CreateLedgerInput) (*CreateLedgerResult, error) {
	result, err := uc.createLedger(ctx, input)
	uc.observeError("create_ledger", err)
	return result, err
}

func (uc *LedgerUseCase) createLedger(ctx context.Context, input CreateLedgerInput) (*CreateLedgerResult, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrMissingOwner
	}
	if err := domain.ValidateLedgerName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}
	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	var result *CreateLedgerResult
	err := uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		now := time.Now().UTC()
		ledger := &domain.Ledger{
			ID:          uc.idGen.Generate(),
			OwnerID:     input.OwnerID,
			Name:        input.Name,
			Description: input.Description,
			Metadata:    input.Metadata,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := uc.ledgerRepo.Create(ctx, tx, ledger); err != nil {
			return err
		}

		accounts := make([]*domain.Account, 0, len(domain.SpecialAccountNames))
		for _, name := range domain.SpecialAccountNames {
			account := domain.NewSpecialAccount(uc.idGen.Generate(), ledger.ID, ledger.OwnerID, name, now)
			if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
				return err
			}
			accounts = append(accounts, account)
		}

		event := domain.NewOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeLedger,
			ledger.ID,
			domain.EventTypeLedgerCreated,
			map[string]any{
				"ledger_id": ledger.ID,
				"owner_id":  ledger.OwnerID,
				"name":      ledger.Name,
			},
			now,
		)
		if err := uc.emit(ctx, tx, event); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = &CreateLedgerResult{Ledger: ledger, Accounts: accounts}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgersCreated.Inc()
	}

	uc.logger.Info().
		Str("ledger_id", result.Ledger.ID).
		Str("owner_id", result.Ledger.OwnerID).
		Msg("ledger created")

	return result, nil
}

// GetLedger retrieves a ledger visible to ownerID.
func (uc *LedgerUseCase) GetLedger(ctx context.Context, ownerID, id string) (*domain.Ledger, error) {
	ledger, err := uc.ledgerRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, domain.NewEntityError("ledger", id, id, err)
	}
	return ledger, nil
}

// ListLedgersInput represents input for listing ledgers.
type ListLedgersInput struct {
	OwnerID string
	Limit   int
	Offset  int
}

// ListLedgers lists the owner's ledgers with pagination.
func (uc *LedgerUseCase) ListLedgers(ctx context.Context, input ListLedgersInput) ([]*domain.Ledger, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrMissingOwner
	}
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.ledgerRepo.List(ctx, input.OwnerID, limit, offset)
}

// DeleteLedger removes a ledger with all of its accounts, transactions and
// snapshots.
func (uc *LedgerUseCase) DeleteLedger(ctx context.Context, ownerID, id string) error {
	err := uc.deleteLedger(ctx, ownerID, id)
	uc.observeError("delete_ledger", err)
	return err
}

func (uc *LedgerUseCase) deleteLedger(ctx context.Context, ownerID, id string) error {
	accounts, err := uc.accountRepo.ListByLedger(ctx, id, ownerID)
	if err != nil {
		return err
	}

	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := uc.ledgerRepo.Delete(ctx, tx, ownerID, id); err != nil {
			return domain.NewEntityError("ledger", id, id, err)
		}

		event := domain.NewOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeLedger,
			id,
			domain.EventTypeLedgerDeleted,
			map[string]any{"ledger_id": id, "owner_id": ownerID},
			time.Now().UTC(),
		)
		if err := uc.emit(ctx, tx, event); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	uc.invalidateBalances(ctx, ids...)

	if uc.metrics != nil {
		uc.metrics.LedgersDeleted.Inc()
	}

	uc.logger.Info().Str("ledger_id", id).Str("owner_id", ownerID).Msg("ledger deleted")

	return nil
}
