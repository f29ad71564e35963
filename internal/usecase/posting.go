package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
)

// PostTransactionInput represents input for posting a transaction.
type PostTransactionInput struct {
	Date              *time.Time
	Metadata          map[string]any
	LedgerID          string
	OwnerID           string
	Description       string
	Flow              string
	Status            string
	SubjectAccountID  string
	CategoryAccountID string
	Amount            int64
}

// posting is a validated transaction ready to be written.
type posting struct {
	transaction *domain.Transaction
	flow        domain.Flow
}

// resolver validates posting input and resolves it onto debit and credit
// accounts. It never writes.
type resolver struct {
	accountRepo AccountRepository
	idGen       IDGenerator
}

// resolve runs the posting checks in a fixed order and stops at the first
// failure.
func (r resolver) resolve(ctx context.Context, input PostTransactionInput, now time.Time) (*posting, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrMissingOwner
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	flow, err := domain.ParseFlow(input.Flow)
	if err != nil {
		return nil, err
	}

	subject, err := r.ledgerAccount(ctx, input.LedgerID, input.OwnerID, input.SubjectAccountID)
	if err != nil {
		return nil, err
	}
	if err := subject.Classify(); err != nil {
		return nil, domain.NewEntityError("account", subject.ID, subject.LedgerID, err)
	}

	category, err := r.category(ctx, input)
	if err != nil {
		return nil, err
	}

	if subject.ID == category.ID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	status, err := domain.ParseTransactionStatus(input.Status)
	if err != nil {
		return nil, err
	}

	date := domain.NormalizeDate(now)
	if input.Date != nil {
		date = domain.NormalizeDate(*input.Date)
	}

	debitID, creditID := domain.ResolveLegs(subject.InternalType, flow, subject.ID, category.ID)

	t := &domain.Transaction{
		ID:              r.idGen.Generate(),
		LedgerID:        input.LedgerID,
		OwnerID:         input.OwnerID,
		Date:            date,
		Description:     input.Description,
		Amount:          input.Amount,
		DebitAccountID:  debitID,
		CreditAccountID: creditID,
		Status:          status,
		Metadata:        input.Metadata,
		CreatedAt:       now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	return &posting{transaction: t, flow: flow}, nil
}

func (r resolver) category(ctx context.Context, input PostTransactionInput) (*domain.Account, error) {
	if input.CategoryAccountID != "" {
		return r.ledgerAccount(ctx, input.LedgerID, input.OwnerID, input.CategoryAccountID)
	}

	account, err := r.accountRepo.GetByName(ctx, input.LedgerID, input.OwnerID, domain.AccountNameUnassigned)
	if err != nil {
		return nil, domain.NewEntityError("account", domain.AccountNameUnassigned, input.LedgerID, err)
	}
	return account, nil
}

// ledgerAccount loads an account the owner can see and checks it lives in
// ledgerID. A foreign account is reported as missing.
func (r resolver) ledgerAccount(ctx context.Context, ledgerID, ownerID, id string) (*domain.Account, error) {
	account, err := r.accountRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, domain.NewEntityError("account", id, ledgerID, err)
	}
	if account.LedgerID != ledgerID {
		return nil, domain.NewEntityError("account", id, ledgerID, domain.ErrAccountNotFound)
	}
	return account, nil
}

// poster writes transactions and their snapshots inside a unit of work.
type poster struct {
	accountRepo  AccountRepository
	txRepo       TransactionRepository
	materializer *BalanceMaterializer
}

// lock takes row locks on the accounts in ascending id order and returns the
// locked rows by id.
func (p poster) lock(ctx context.Context, tx Transaction, ids []string) (map[string]*domain.Account, error) {
	ids = sortedUnique(ids)

	accounts, err := p.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	for _, id := range ids {
		if byID[id] == nil {
			return nil, domain.NewEntityError("account", id, "", domain.ErrAccountNotFound)
		}
	}

	return byID, nil
}

// post inserts t and materializes both legs.
func (p poster) post(
	ctx context.Context,
	tx Transaction,
	t *domain.Transaction,
	accounts map[string]*domain.Account,
	op domain.OperationType,
	now time.Time,
) error {
	if err := p.txRepo.Create(ctx, tx, t); err != nil {
		return err
	}

	_, err := p.materializer.Apply(ctx, tx, t, accounts, op, now)
	return err
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)
	return unique
}

// sortedAccounts returns the accounts of byID in ascending id order.
func sortedAccounts(byID map[string]*domain.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(byID))
	for _, a := range byID {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts
}

func transactionAccountIDs(ts ...*domain.Transaction) []string {
	ids := make([]string, 0, 2*len(ts))
	for _, t := range ts {
		ids = append(ids, t.DebitAccountID, t.CreditAccountID)
	}
	return ids
}
