package dto

import (
	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// CreateLedgerRequest represents a request to create a ledger.
type CreateLedgerRequest struct {
	Name        string         `json:"name"                  validate:"required,max=255"`
	Description string         `json:"description,omitempty" validate:"max=1024"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLedgerRequest) ToUseCaseInput(ownerID string) usecase.CreateLedgerInput {
	return usecase.CreateLedgerInput{
		OwnerID:     ownerID,
		Name:        r.Name,
		Description: r.Description,
		Metadata:    r.Metadata,
	}
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name        string         `json:"name"                  validate:"required,max=255"`
	Type        string         `json:"type"                  validate:"required,oneof=asset liability equity revenue expense"`
	Description string         `json:"description,omitempty" validate:"max=1024"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(ledgerID, ownerID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		LedgerID:    ledgerID,
		OwnerID:     ownerID,
		Name:        r.Name,
		Type:        r.Type,
		Description: r.Description,
		Metadata:    r.Metadata,
	}
}

// CreateCategoryRequest represents a request to create a budget category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// PostTransactionRequest represents a transaction expressed as a flow on a
// subject account against a category. Amounts are in minor units.
type PostTransactionRequest struct {
	Date        string         `json:"date,omitempty"        validate:"omitempty,datetime=2006-01-02"`
	Description string         `json:"description,omitempty" validate:"max=1024"`
	Flow        string         `json:"flow"                  validate:"required,oneof=inflow outflow"`
	Status      string         `json:"status,omitempty"      validate:"omitempty,oneof=pending posted"`
	AccountID   string         `json:"account_id"            validate:"required"`
	CategoryID  string         `json:"category_id"           validate:"required"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Amount      int64          `json:"amount"                validate:"gt=0"`
}

// ToUseCaseInput converts to use case input.
func (r *PostTransactionRequest) ToUseCaseInput(ledgerID, ownerID string) (usecase.PostTransactionInput, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return usecase.PostTransactionInput{}, err
	}

	return usecase.PostTransactionInput{
		Date:              date,
		Metadata:          r.Metadata,
		LedgerID:          ledgerID,
		OwnerID:           ownerID,
		Description:       r.Description,
		Flow:              r.Flow,
		Status:            r.Status,
		SubjectAccountID:  r.AccountID,
		CategoryAccountID: r.CategoryID,
		Amount:            r.Amount,
	}, nil
}

// BulkPostTransactionsRequest represents transactions posted all or nothing.
type BulkPostTransactionsRequest struct {
	Transactions []PostTransactionRequest `json:"transactions" validate:"required,min=1,max=1000,dive"`
}

// ToUseCaseInput converts to use case input.
func (r *BulkPostTransactionsRequest) ToUseCaseInput(ledgerID, ownerID string) (usecase.BulkPostTransactionsInput, error) {
	items := make([]usecase.PostTransactionInput, len(r.Transactions))
	for i := range r.Transactions {
		item, err := r.Transactions[i].ToUseCaseInput(ledgerID, ownerID)
		if err != nil {
			return usecase.BulkPostTransactionsInput{}, err
		}
		items[i] = item
	}

	return usecase.BulkPostTransactionsInput{
		LedgerID: ledgerID,
		OwnerID:  ownerID,
		Items:    items,
	}, nil
}

// AssignToCategoryRequest represents money moved from Income into a category.
type AssignToCategoryRequest struct {
	Date        string `json:"date,omitempty"        validate:"omitempty,datetime=2006-01-02"`
	CategoryID  string `json:"category_id"           validate:"required"`
	Description string `json:"description,omitempty" validate:"max=1024"`
	Amount      int64  `json:"amount"                validate:"gt=0"`
}

// ToUseCaseInput converts to use case input.
func (r *AssignToCategoryRequest) ToUseCaseInput(ledgerID, ownerID string) (usecase.AssignToCategoryInput, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return usecase.AssignToCategoryInput{}, err
	}

	return usecase.AssignToCategoryInput{
		Date:        date,
		LedgerID:    ledgerID,
		OwnerID:     ownerID,
		CategoryID:  r.CategoryID,
		Description: r.Description,
		Amount:      r.Amount,
	}, nil
}

// CorrectTransactionRequest carries the full replacement values of a
// transaction.
type CorrectTransactionRequest struct {
	PostTransactionRequest
	Reason string `json:"reason,omitempty" validate:"max=1024"`
}

// ToUseCaseInput converts to use case input.
func (r *CorrectTransactionRequest) ToUseCaseInput(transactionID, ownerID string) (usecase.CorrectTransactionInput, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return usecase.CorrectTransactionInput{}, err
	}

	return usecase.CorrectTransactionInput{
		Date:              date,
		Metadata:          r.Metadata,
		OwnerID:           ownerID,
		TransactionID:     transactionID,
		Description:       r.Description,
		Flow:              r.Flow,
		Status:            r.Status,
		SubjectAccountID:  r.AccountID,
		CategoryAccountID: r.CategoryID,
		Reason:            r.Reason,
		Amount:            r.Amount,
	}, nil
}
