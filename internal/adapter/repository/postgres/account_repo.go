package postgres

import (
	"context"
	"fmt"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/postgres/generated"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts an account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	metadata, err := marshalMetadata(account.Metadata)
	if err != nil {
		return err
	}

	err = queries(r.queries, tx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:           account.ID,
		LedgerID:     account.LedgerID,
		OwnerID:      account.OwnerID,
		Name:         account.Name,
		Description:  account.Description,
		Type:         string(account.Type),
		InternalType: string(account.InternalType),
		Metadata:     metadata,
		CreatedAt:    timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return translate(err, nil, domain.ErrAccountNameTaken, domain.ErrLedgerNotFound)
	}
	return nil
}

// GetByID retrieves an account owned by ownerID.
func (r *AccountRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, generated.GetAccountByIDParams{ID: id, OwnerID: ownerID})
	if err != nil {
		return nil, translate(err, domain.ErrAccountNotFound, nil, nil)
	}
	return rowToAccount(row), nil
}

// GetByName retrieves an account by its name within a ledger.
func (r *AccountRepository) GetByName(ctx context.Context, ledgerID, ownerID, name string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByName(ctx, generated.GetAccountByNameParams{
		LedgerID: ledgerID,
		OwnerID:  ownerID,
		Name:     name,
	})
	if err != nil {
		return nil, translate(err, domain.ErrAccountNotFound, nil, nil)
	}
	return rowToAccount(row), nil
}

// GetByIDsForUpdate locks the accounts in id order with FOR UPDATE. Missing
// ids are absent from the result.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	rows, err := queries(r.queries, tx).GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}
	return accounts, nil
}

// ListByLedger lists a ledger's accounts by name.
func (r *AccountRepository) ListByLedger(ctx context.Context, ledgerID, ownerID string) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByLedger(ctx, generated.ListAccountsByLedgerParams{
		LedgerID: ledgerID,
		OwnerID:  ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}
	return accounts, nil
}

// Delete removes an account. Accounts referenced by transactions are kept
// by the foreign keys and reported as in use.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	n, err := queries(r.queries, tx).DeleteAccount(ctx, id)
	if err != nil {
		return translate(err, nil, nil, domain.ErrAccountInUse)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:           row.ID,
		LedgerID:     row.LedgerID,
		OwnerID:      row.OwnerID,
		Name:         row.Name,
		Description:  row.Description,
		Type:         domain.AccountType(row.Type),
		InternalType: domain.InternalType(row.InternalType),
		Metadata:     unmarshalMetadata(row.Metadata),
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}
