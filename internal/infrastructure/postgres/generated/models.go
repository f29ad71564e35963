package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID           string             `json:"id"`
	LedgerID     string             `json:"ledger_id"`
	OwnerID      string             `json:"owner_id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Type         string             `json:"type"`
	InternalType string             `json:"internal_type"`
	Metadata     []byte             `json:"metadata"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

type BalanceSnapshot struct {
	ID              string             `json:"id"`
	AccountID       string             `json:"account_id"`
	TransactionID   string             `json:"transaction_id"`
	LedgerID        string             `json:"ledger_id"`
	OwnerID         string             `json:"owner_id"`
	PreviousBalance int64              `json:"previous_balance"`
	Delta           int64              `json:"delta"`
	Balance         int64              `json:"balance"`
	OperationType   string             `json:"operation_type"`
	Sequence        int64              `json:"sequence"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

type Ledger struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"owner_id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Metadata    []byte             `json:"metadata"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	Published     bool               `json:"published"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
}

type Transaction struct {
	ID              string             `json:"id"`
	LedgerID        string             `json:"ledger_id"`
	OwnerID         string             `json:"owner_id"`
	Date            pgtype.Date        `json:"date"`
	Description     string             `json:"description"`
	Amount          int64              `json:"amount"`
	DebitAccountID  string             `json:"debit_account_id"`
	CreditAccountID string             `json:"credit_account_id"`
	Status          string             `json:"status"`
	Metadata        []byte             `json:"metadata"`
	ReversalOf      pgtype.Text        `json:"reversal_of"`
	DeletedAt       pgtype.Timestamptz `json:"deleted_at"`
	Sequence        int64              `json:"sequence"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

type TransactionLog struct {
	ID                      string             `json:"id"`
	LedgerID                string             `json:"ledger_id"`
	OwnerID                 string             `json:"owner_id"`
	OriginalTransactionID   string             `json:"original_transaction_id"`
	ReversalTransactionID   pgtype.Text        `json:"reversal_transaction_id"`
	CorrectionTransactionID pgtype.Text        `json:"correction_transaction_id"`
	MutationType            string             `json:"mutation_type"`
	Reason                  string             `json:"reason"`
	CreatedAt               pgtype.Timestamptz `json:"created_at"`
}
