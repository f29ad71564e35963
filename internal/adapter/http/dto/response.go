package dto

import (
	"encoding/json"
	"time"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// Money is an amount in minor units. It encodes both the exact integer and
// its fixed-point rendering.
type Money int64

type moneyJSON struct {
	MinorUnits int64  `json:"minor_units"`
	Value      string `json:"value"`
}

func (m Money) String() string {
	return domain.FormatMinorUnits(int64(m))
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{MinorUnits: int64(m), Value: domain.FormatMinorUnits(int64(m))})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Money(v.MinorUnits)
	return nil
}

// LedgerResponse represents a ledger in API responses.
type LedgerResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// LedgerFromDomain converts domain ledger to response.
func LedgerFromDomain(l *domain.Ledger) *LedgerResponse {
	return &LedgerResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Metadata:    l.Metadata,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// LedgersFromDomain converts domain ledgers to responses.
func LedgersFromDomain(ledgers []*domain.Ledger) []*LedgerResponse {
	result := make([]*LedgerResponse, len(ledgers))
	for i, l := range ledgers {
		result[i] = LedgerFromDomain(l)
	}
	return result
}

// CreateLedgerResponse is a new ledger with its special accounts.
type CreateLedgerResponse struct {
	*LedgerResponse
	Accounts []*AccountResponse `json:"accounts"`
}

// CreateLedgerFromResult converts a use case result to response.
func CreateLedgerFromResult(r *usecase.CreateLedgerResult) *CreateLedgerResponse {
	return &CreateLedgerResponse{
		LedgerResponse: LedgerFromDomain(r.Ledger),
		Accounts:       AccountsFromDomain(r.Accounts),
	}
}

// ListLedgersResponse represents a page of ledgers.
type ListLedgersResponse struct {
	Ledgers []*LedgerResponse `json:"ledgers"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID           string         `json:"id"`
	LedgerID     string         `json:"ledger_id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Type         string         `json:"type"`
	InternalType string         `json:"internal_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:           a.ID,
		LedgerID:     a.LedgerID,
		Name:         a.Name,
		Description:  a.Description,
		Type:         string(a.Type),
		InternalType: string(a.InternalType),
		Metadata:     a.Metadata,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents the accounts of a ledger.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID              string         `json:"id"`
	LedgerID        string         `json:"ledger_id"`
	Date            string         `json:"date"`
	Description     string         `json:"description"`
	Amount          Money          `json:"amount"`
	DebitAccountID  string         `json:"debit_account_id"`
	CreditAccountID string         `json:"credit_account_id"`
	Status          string         `json:"status"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	ReversalOf      *string        `json:"reversal_of,omitempty"`
	DeletedAt       *time.Time     `json:"deleted_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	if t == nil {
		return nil
	}
	return &TransactionResponse{
		ID:              t.ID,
		LedgerID:        t.LedgerID,
		Date:            t.Date.Format(domain.DateLayout),
		Description:     t.Description,
		Amount:          Money(t.Amount),
		DebitAccountID:  t.DebitAccountID,
		CreditAccountID: t.CreditAccountID,
		Status:          string(t.Status),
		Metadata:        t.Metadata,
		ReversalOf:      t.ReversalOf,
		DeletedAt:       t.DeletedAt,
		CreatedAt:       t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse represents a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// BulkItemResponse is the outcome of one bulk item.
type BulkItemResponse struct {
	Index       int                  `json:"index"`
	Status      string               `json:"status"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// BulkPostResponse lists the outcome of every bulk item. Error is set when
// the batch was rolled back.
type BulkPostResponse struct {
	Results []*BulkItemResponse `json:"results"`
	Error   *ErrorResponse      `json:"error,omitempty"`
}

// BulkPostFromResults converts use case results to response.
func BulkPostFromResults(results []usecase.BulkItemResult) *BulkPostResponse {
	resp := &BulkPostResponse{Results: make([]*BulkItemResponse, len(results))}
	for i, r := range results {
		item := &BulkItemResponse{
			Index:       r.Index,
			Status:      r.Status,
			Transaction: TransactionFromDomain(r.Transaction),
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		resp.Results[i] = item
	}
	return resp
}

// TransactionLogResponse represents a transaction log row.
type TransactionLogResponse struct {
	ID                      string    `json:"id"`
	OriginalTransactionID   string    `json:"original_transaction_id"`
	ReversalTransactionID   *string   `json:"reversal_transaction_id,omitempty"`
	CorrectionTransactionID *string   `json:"correction_transaction_id,omitempty"`
	MutationType            string    `json:"mutation_type"`
	Reason                  string    `json:"reason,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
}

// TransactionLogFromDomain converts a domain log row to response.
func TransactionLogFromDomain(l *domain.TransactionLog) *TransactionLogResponse {
	if l == nil {
		return nil
	}
	return &TransactionLogResponse{
		ID:                      l.ID,
		OriginalTransactionID:   l.OriginalTransactionID,
		ReversalTransactionID:   l.ReversalTransactionID,
		CorrectionTransactionID: l.CorrectionTransactionID,
		MutationType:            string(l.MutationType),
		Reason:                  l.Reason,
		CreatedAt:               l.CreatedAt,
	}
}

// TransactionLogsFromDomain converts domain log rows to responses.
func TransactionLogsFromDomain(logs []*domain.TransactionLog) []*TransactionLogResponse {
	result := make([]*TransactionLogResponse, len(logs))
	for i, l := range logs {
		result[i] = TransactionLogFromDomain(l)
	}
	return result
}

// CorrectionResponse lists every row a correction or deletion wrote.
type CorrectionResponse struct {
	Original   *TransactionResponse    `json:"original"`
	Reversal   *TransactionResponse    `json:"reversal"`
	Correction *TransactionResponse    `json:"correction,omitempty"`
	Log        *TransactionLogResponse `json:"log"`
}

// CorrectionFromResult converts a use case result to response.
func CorrectionFromResult(r *usecase.CorrectionResult) *CorrectionResponse {
	return &CorrectionResponse{
		Original:   TransactionFromDomain(r.Original),
		Reversal:   TransactionFromDomain(r.Reversal),
		Correction: TransactionFromDomain(r.Correction),
		Log:        TransactionLogFromDomain(r.Log),
	}
}

// BalanceResponse represents the current balance of an account.
type BalanceResponse struct {
	AccountID    string     `json:"account_id"`
	LedgerID     string     `json:"ledger_id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Balance      Money      `json:"balance"`
	SnapshotID   string     `json:"snapshot_id,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// BalanceFromUseCase converts a use case balance to response.
func BalanceFromUseCase(b *usecase.AccountBalance) *BalanceResponse {
	return &BalanceResponse{
		AccountID:    b.AccountID,
		LedgerID:     b.LedgerID,
		Name:         b.Name,
		Type:         string(b.Type),
		Balance:      Money(b.Balance),
		SnapshotID:   b.SnapshotID,
		LastActivity: b.LastActivity,
	}
}

// BalancesFromUseCase converts use case balances to responses.
func BalancesFromUseCase(balances []*usecase.AccountBalance) []*BalanceResponse {
	result := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = BalanceFromUseCase(b)
	}
	return result
}

// SnapshotResponse represents one link of a balance chain.
type SnapshotResponse struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	TransactionID   string    `json:"transaction_id,omitempty"`
	PreviousBalance Money     `json:"previous_balance"`
	Delta           Money     `json:"delta"`
	Balance         Money     `json:"balance"`
	OperationType   string    `json:"operation_type"`
	Sequence        int64     `json:"sequence"`
	CreatedAt       time.Time `json:"created_at"`
}

// SnapshotsFromDomain converts domain snapshots to responses.
func SnapshotsFromDomain(snapshots []*domain.BalanceSnapshot) []*SnapshotResponse {
	result := make([]*SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		result[i] = &SnapshotResponse{
			ID:              s.ID,
			AccountID:       s.AccountID,
			TransactionID:   s.TransactionID,
			PreviousBalance: Money(s.PreviousBalance),
			Delta:           Money(s.Delta),
			Balance:         Money(s.Balance),
			OperationType:   string(s.OperationType),
			Sequence:        s.Sequence,
			CreatedAt:       s.CreatedAt,
		}
	}
	return result
}

// RebuildResponse reports a balance rebuild.
type RebuildResponse struct {
	AccountID       string    `json:"account_id"`
	LedgerID        string    `json:"ledger_id"`
	PreviousBalance Money     `json:"previous_balance"`
	Balance         Money     `json:"balance"`
	Replayed        int       `json:"replayed"`
	RebuiltAt       time.Time `json:"rebuilt_at"`
}

// RebuildFromResult converts a use case result to response.
func RebuildFromResult(r *usecase.RebuildResult) *RebuildResponse {
	return &RebuildResponse{
		AccountID:       r.AccountID,
		LedgerID:        r.LedgerID,
		PreviousBalance: Money(r.PreviousBalance),
		Balance:         Money(r.Balance),
		Replayed:        r.Replayed,
		RebuiltAt:       r.RebuiltAt,
	}
}

// CategoryStatusResponse is one row of the budget view.
type CategoryStatusResponse struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Budgeted     Money  `json:"budgeted"`
	Activity     Money  `json:"activity"`
	Balance      Money  `json:"balance"`
}

// BudgetStatusFromDomain converts domain budget rows to responses.
func BudgetStatusFromDomain(statuses []*domain.CategoryStatus) []*CategoryStatusResponse {
	result := make([]*CategoryStatusResponse, len(statuses))
	for i, s := range statuses {
		result[i] = &CategoryStatusResponse{
			CategoryID:   s.CategoryID,
			CategoryName: s.CategoryName,
			Budgeted:     Money(s.Budgeted),
			Activity:     Money(s.Activity),
			Balance:      Money(s.Balance),
		}
	}
	return result
}

// BudgetTotalsResponse summarizes a ledger's budget.
type BudgetTotalsResponse struct {
	Income                       Money `json:"income"`
	IncomeRemainingFromLastMonth Money `json:"income_remaining_from_last_month"`
	Budgeted                     Money `json:"budgeted"`
	LeftToBudget                 Money `json:"left_to_budget"`
}

// BudgetTotalsFromDomain converts domain totals to response.
func BudgetTotalsFromDomain(t *domain.BudgetTotals) *BudgetTotalsResponse {
	return &BudgetTotalsResponse{
		Income:                       Money(t.Income),
		IncomeRemainingFromLastMonth: Money(t.IncomeRemainingFromLastMonth),
		Budgeted:                     Money(t.Budgeted),
		LeftToBudget:                 Money(t.LeftToBudget),
	}
}

// ReconciliationResponse reports one account reconciliation.
type ReconciliationResponse struct {
	AccountID         string    `json:"account_id"`
	LedgerID          string    `json:"ledger_id"`
	AccountName       string    `json:"account_name"`
	RecordedBalance   Money     `json:"recorded_balance"`
	CalculatedBalance Money     `json:"calculated_balance"`
	Difference        Money     `json:"difference"`
	Snapshots         int       `json:"snapshots"`
	BrokenSnapshots   []string  `json:"broken_snapshots"`
	IsReconciled      bool      `json:"is_reconciled"`
	LastChecked       time.Time `json:"last_checked"`
}

// ReconciliationFromResult converts a use case result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		LedgerID:          r.LedgerID,
		AccountName:       r.AccountName,
		RecordedBalance:   Money(r.RecordedBalance),
		CalculatedBalance: Money(r.CalculatedBalance),
		Difference:        Money(r.Difference),
		Snapshots:         r.Snapshots,
		BrokenSnapshots:   r.BrokenSnapshots,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ConsistencyResponse reports the ledger-wide double-entry totals.
type ConsistencyResponse struct {
	LedgerID           string `json:"ledger_id"`
	AssetLikeTotal     Money  `json:"asset_like_total"`
	LiabilityLikeTotal Money  `json:"liability_like_total"`
	Difference         Money  `json:"difference"`
	Consistent         bool   `json:"consistent"`
}

// ConsistencyFromResult converts a use case result to response.
func ConsistencyFromResult(r *usecase.ConsistencyResult) *ConsistencyResponse {
	return &ConsistencyResponse{
		LedgerID:           r.LedgerID,
		AssetLikeTotal:     Money(r.AssetLikeTotal),
		LiabilityLikeTotal: Money(r.LiabilityLikeTotal),
		Difference:         Money(r.Difference),
		Consistent:         r.Consistent,
	}
}

// ReconciliationReportResponse is a full ledger reconciliation.
type ReconciliationReportResponse struct {
	LedgerID           string                    `json:"ledger_id"`
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	Consistency        *ConsistencyResponse      `json:"consistency"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromResult converts a use case report to response.
func ReportFromResult(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		LedgerID:           r.LedgerID,
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*ReconciliationResponse, len(r.Discrepancies)),
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromResult(d)
	}
	if r.Consistency != nil {
		resp.Consistency = ConsistencyFromResult(r.Consistency)
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
