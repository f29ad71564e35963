package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// Bulk item statuses.
const (
	BulkItemPosted     = "posted"
	BulkItemFailed     = "failed"
	BulkItemRolledBack = "rolled_back"
	BulkItemSkipped    = "skipped"
)

// BulkItemResult reports what happened to one item of a bulk posting.
type BulkItemResult struct {
	Transaction *domain.Transaction
	Err         error
	Status      string
	Index       int
}

// BulkError names the item that aborted a bulk posting. Index is -1 when the
// failure cannot be tied to an item, such as a failed commit.
type BulkError struct {
	Err   error
	Index int
}

func (e *BulkError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("bulk commit failed: %v", e.Err)
	}
	return fmt.Sprintf("bulk item %d: %v", e.Index, e.Err)
}

func (e *BulkError) Unwrap() error {
	return e.Err
}

// TransactionUseCase is the transaction engine: it validates postings and
// writes them with their balance snapshots.
type TransactionUseCase struct {
	hooks
	resolver
	poster
	txManager  TransactionManager
	ledgerRepo LedgerRepository
	idGen      IDGenerator
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	materializer *BalanceMaterializer,
	idGen IDGenerator,
	opts ...Option,
) *TransactionUseCase {
	return &TransactionUseCase{
		hooks:      newHooks(opts),
		resolver:   resolver{accountRepo: accountRepo, idGen: idGen},
		poster:     poster{accountRepo: accountRepo, txRepo: txRepo, materializer: materializer},
		txManager:  txManager,
		ledgerRepo: ledgerRepo,
		idGen:      idGen,
	}
}

// BulkPostTransactionsInput represents input for an all-or-nothing batch.
type BulkPostTransactionsInput struct {
	LedgerID string
	OwnerID  string
	Items    []PostTransactionInput
}

// PostTransaction posts a single transaction.
func (uc *TransactionUseCase) PostTransaction(ctx context.Context, input PostTransactionInput) (*domain.Transaction, error) {
	results, err := uc.BulkPostTransactions(ctx, BulkPostTransactionsInput{
		LedgerID: input.LedgerID,
		OwnerID:  input.OwnerID,
		Items:    []PostTransactionInput{input},
	})
	if err != nil {
		var bulkErr *BulkError
		if errors.As(err, &bulkErr) {
			return nil, bulkErr.Err
		}
		return nil, err
	}

	return results[0].Transaction, nil
}

// BulkPostTransactions validates every item, then posts them in order inside
// one unit of work. Any failure rolls the whole batch back; the returned
// results say what happened to each item.
func (uc *TransactionUseCase) BulkPostTransactions(ctx context.Context, input BulkPostTransactionsInput) ([]BulkItemResult, error) {
	start := time.Now()
	results, err := uc.bulkPost(ctx, input)
	uc.observeError("post_transaction", err)
	uc.observeDuration(start)
	return results, err
}

func (uc *TransactionUseCase) bulkPost(ctx context.Context, input BulkPostTransactionsInput) ([]BulkItemResult, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	now := time.Now().UTC()
	results := newBulkResults(len(input.Items))

	// 1. Validate everything before the first write
	postings := make([]*posting, len(input.Items))
	for i, item := range input.Items {
		if item.LedgerID == "" {
			item.LedgerID = input.LedgerID
		}
		if item.OwnerID == "" {
			item.OwnerID = input.OwnerID
		}

		p, err := uc.resolve(ctx, item, now)
		if err != nil {
			results[i].Status = BulkItemFailed
			results[i].Err = err
			return results, &BulkError{Index: i, Err: err}
		}
		postings[i] = p
	}

	// 2. Apply sequentially in one unit of work
	var accountIDs []string
	for _, p := range postings {
		accountIDs = append(accountIDs, p.transaction.DebitAccountID, p.transaction.CreditAccountID)
	}

	var locked map[string]*domain.Account
	err := uc.retry(ctx, func() error {
		results = newBulkResults(len(postings))

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return &BulkError{Index: -1, Err: err}
		}
		defer func() { _ = tx.Rollback(ctx) }()

		accounts, err := uc.lock(ctx, tx, accountIDs)
		if err != nil {
			i := itemForAccountError(postings, err)
			if i >= 0 {
				results[i].Status = BulkItemFailed
				results[i].Err = err
			}
			return &BulkError{Index: i, Err: err}
		}

		for i, p := range postings {
			if err := uc.postOne(ctx, tx, p, accounts, now); err != nil {
				markRolledBack(results, i)
				results[i].Status = BulkItemFailed
				results[i].Err = err
				return &BulkError{Index: i, Err: err}
			}
			results[i].Status = BulkItemPosted
			results[i].Transaction = p.transaction
		}

		if err := tx.Commit(ctx); err != nil {
			markRolledBack(results, len(postings))
			return &BulkError{Index: -1, Err: err}
		}

		locked = accounts
		return nil
	})
	if err != nil {
		return results, err
	}

	uc.refreshBalances(ctx, uc.materializer.snapshotRepo, sortedAccounts(locked)...)

	if uc.metrics != nil {
		uc.metrics.BatchSize.Observe(float64(len(postings)))
		for _, p := range postings {
			uc.metrics.TransactionsPosted.WithLabelValues(string(p.flow)).Inc()
			uc.metrics.PostingAmount.Observe(float64(p.transaction.Amount))
		}
	}

	uc.logger.Debug().
		Str("ledger_id", input.LedgerID).
		Int("count", len(postings)).
		Msg("transactions posted")

	return results, nil
}

func (uc *TransactionUseCase) postOne(ctx context.Context, tx Transaction, p *posting, accounts map[string]*domain.Account, now time.Time) error {
	if err := uc.post(ctx, tx, p.transaction, accounts, domain.OperationTransactionInsert, now); err != nil {
		return err
	}

	event := domain.NewOutboxEvent(
		uc.idGen.Generate(),
		domain.AggregateTypeTransaction,
		p.transaction.ID,
		domain.EventTypeTransactionPosted,
		domain.TransactionPayload(p.transaction),
		now,
	)
	return uc.emit(ctx, tx, event)
}

// itemForAccountError returns the first posting that references the account
// err reports as missing, or -1.
func itemForAccountError(postings []*posting, err error) int {
	var entityErr *domain.EntityError
	if !errors.Is(err, domain.ErrAccountNotFound) || !errors.As(err, &entityErr) {
		return -1
	}

	for i, p := range postings {
		if p.transaction.Touches(entityErr.ID) {
			return i
		}
	}
	return -1
}

func newBulkResults(n int) []BulkItemResult {
	results := make([]BulkItemResult, n)
	for i := range results {
		results[i] = BulkItemResult{Index: i, Status: BulkItemSkipped}
	}
	return results
}

// markRolledBack flags every item before upTo that had been posted.
func markRolledBack(results []BulkItemResult, upTo int) {
	for i := 0; i < upTo && i < len(results); i++ {
		if results[i].Status == BulkItemPosted {
			results[i].Status = BulkItemRolledBack
			results[i].Transaction = nil
		}
	}
}

// AssignToCategoryInput represents input for budgeting money into a category.
type AssignToCategoryInput struct {
	Date        *time.Time
	LedgerID    string
	OwnerID     string
	CategoryID  string
	Description string
	Amount      int64
}

// AssignToCategory moves money from Income into a category.
func (uc *TransactionUseCase) AssignToCategory(ctx context.Context, input AssignToCategoryInput) (*domain.Transaction, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrMissingOwner
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	category, err := uc.ledgerAccount(ctx, input.LedgerID, input.OwnerID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsCategory() {
		return nil, domain.NewEntityError("category", input.CategoryID, input.LedgerID, domain.ErrCategoryNotFound)
	}

	income, err := uc.resolver.accountRepo.GetByName(ctx, input.LedgerID, input.OwnerID, domain.AccountNameIncome)
	if err != nil {
		return nil, domain.NewEntityError("account", domain.AccountNameIncome, input.LedgerID, err)
	}

	return uc.PostTransaction(ctx, PostTransactionInput{
		LedgerID:          input.LedgerID,
		OwnerID:           input.OwnerID,
		Date:              input.Date,
		Description:       input.Description,
		Flow:              string(domain.FlowOutflow),
		Amount:            input.Amount,
		SubjectAccountID:  income.ID,
		CategoryAccountID: category.ID,
	})
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	t, err := uc.txRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, domain.NewEntityError("transaction", id, "", err)
	}
	return t, nil
}

// ListTransactionsInput represents input for listing transactions.
type ListTransactionsInput struct {
	LedgerID string
	OwnerID  string
	Limit    int
	Offset   int
}

// ListTransactions lists a ledger's transactions newest first, reversals
// included.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	if _, err := uc.ledgerRepo.GetByID(ctx, input.OwnerID, input.LedgerID); err != nil {
		return nil, domain.NewEntityError("ledger", input.LedgerID, input.LedgerID, err)
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.txRepo.ListByLedger(ctx, input.LedgerID, input.OwnerID, limit, offset)
}
