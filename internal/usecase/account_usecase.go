package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// AccountUseCase handles account and category business logic.
type AccountUseCase struct {
	hooks
	txManager   TransactionManager
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	txRepo      TransactionRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	idGen IDGenerator,
	opts ...Option,
) *AccountUseCase {
	return &AccountUseCase{
		hooks:       newHooks(opts),
		txManager:   txManager,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	LedgerID    string
	OwnerID     string
	Name        string
	Type        string
	Description string
	Metadata    map[string]any
}

// CreateAccount creates a new account in a ledger owned by the caller.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	account, err := uc.createAccount(ctx, input)
	uc.observeError("create_account", err)
	return account, err
}

// CreateCategory creates a budget category, an equity account.
func (uc *AccountUseCase) CreateCategory(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error) {
	return uc.CreateAccount(ctx, CreateAccountInput{
		LedgerID: ledgerID,
		OwnerID:  ownerID,
		Name:     name,
		Type:     string(domain.AccountTypeEquity),
	})
}

func (uc *AccountUseCase) createAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrMissingOwner
	}
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}
	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	if _, err := uc.ledgerRepo.GetByID(ctx, input.OwnerID, input.LedgerID); err != nil {
		return nil, domain.NewEntityError("ledger", input.LedgerID, input.LedgerID, err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		LedgerID:    input.LedgerID,
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		Description: input.Description,
		Type:        accountType,
		Metadata:    input.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := account.Classify(); err != nil {
		return nil, err
	}

	err = uc.retry(ctx, func() error {
		account.ID = uc.idGen.Generate()

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
			return domain.NewEntityError("account", input.Name, input.LedgerID, err)
		}

		event := domain.NewOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeAccount,
			account.ID,
			domain.EventTypeAccountCreated,
			map[string]any{
				"account_id":    account.ID,
				"ledger_id":     account.LedgerID,
				"name":          account.Name,
				"type":          string(account.Type),
				"internal_type": string(account.InternalType),
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

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.WithLabelValues(string(account.Type)).Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, domain.NewEntityError("account", id, "", err)
	}
	return account, nil
}

// ListAccounts lists every account of a ledger, special accounts included.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, ledgerID, ownerID string) ([]*domain.Account, error) {
	if _, err := uc.ledgerRepo.GetByID(ctx, ownerID, ledgerID); err != nil {
		return nil, domain.NewEntityError("ledger", ledgerID, ledgerID, err)
	}
	return uc.accountRepo.ListByLedger(ctx, ledgerID, ownerID)
}

// FindCategoryByName looks a category up by its exact, case-sensitive name.
func (uc *AccountUseCase) FindCategoryByName(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByName(ctx, ledgerID, ownerID, name)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			err = domain.ErrCategoryNotFound
		}
		return nil, domain.NewEntityError("category", name, ledgerID, err)
	}

	if account.Type != domain.AccountTypeEquity {
		return nil, domain.NewEntityError("category", name, ledgerID, domain.ErrCategoryNotFound)
	}

	return account, nil
}

// DeleteAccount hard-deletes an account no transaction references. Special
// accounts cannot be deleted.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, ownerID, id string) error {
	err := uc.deleteAccount(ctx, ownerID, id)
	uc.observeError("delete_account", err)
	return err
}

func (uc *AccountUseCase) deleteAccount(ctx context.Context, ownerID, id string) error {
	account, err := uc.accountRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.NewEntityError("account", id, "", err)
	}

	if account.IsSpecial() {
		return domain.NewEntityError("account", id, account.LedgerID, domain.ErrSpecialAccountProtected)
	}

	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		locked, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, []string{id})
		if err != nil {
			return err
		}
		if len(locked) != 1 {
			return domain.NewEntityError("account", id, account.LedgerID, domain.ErrAccountNotFound)
		}

		count, err := uc.txRepo.CountByAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.NewEntityError("account", id, account.LedgerID, domain.ErrAccountInUse)
		}

		if err := uc.accountRepo.Delete(ctx, tx, id); err != nil {
			return domain.NewEntityError("account", id, account.LedgerID, err)
		}

		event := domain.NewOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeAccount,
			id,
			domain.EventTypeAccountDeleted,
			map[string]any{"account_id": id, "ledger_id": account.LedgerID},
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

	uc.invalidateBalances(ctx, id)

	if uc.metrics != nil {
		uc.metrics.AccountsDeleted.Inc()
	}

	return nil
}
