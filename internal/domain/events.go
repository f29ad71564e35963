package domain

import "time"

// Event types
const (
	EventTypeLedgerCreated        = "ledger.created"
	EventTypeLedgerDeleted        = "ledger.deleted"
	EventTypeAccountCreated       = "account.created"
	EventTypeAccountDeleted       = "account.deleted"
	EventTypeTransactionPosted    = "transaction.posted"
	EventTypeTransactionCorrected = "transaction.corrected"
	EventTypeTransactionDeleted   = "transaction.deleted"
	EventTypeBalanceRebuilt       = "balance.rebuilt"
)

// Aggregate types
const (
	AggregateTypeLedger      = "ledger"
	AggregateTypeAccount     = "account"
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewOutboxEvent builds an unpublished event.
func NewOutboxEvent(id, aggregateType, aggregateID, eventType string, payload map[string]any, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

// TransactionPayload is the event payload for a posted transaction.
func TransactionPayload(t *Transaction) map[string]any {
	payload := map[string]any{
		"transaction_id":    t.ID,
		"ledger_id":         t.LedgerID,
		"owner_id":          t.OwnerID,
		"debit_account_id":  t.DebitAccountID,
		"credit_account_id": t.CreditAccountID,
		"amount":            t.Amount,
		"date":              t.Date.Format(DateLayout),
		"status":            string(t.Status),
	}
	if t.ReversalOf != nil {
		payload["reversal_of"] = *t.ReversalOf
	}
	return payload
}
