package memory

import (
	"maps"

	"github.com/j0lvera/pgbudget/internal/domain"
)

func cloneLedger(l *domain.Ledger) *domain.Ledger {
	c := *l
	c.Metadata = maps.Clone(l.Metadata)
	return &c
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	c.Metadata = maps.Clone(a.Metadata)
	return &c
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	c.Metadata = maps.Clone(t.Metadata)
	if t.ReversalOf != nil {
		id := *t.ReversalOf
		c.ReversalOf = &id
	}
	if t.DeletedAt != nil {
		at := *t.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func cloneSnapshot(s *domain.BalanceSnapshot) *domain.BalanceSnapshot {
	c := *s
	return &c
}

func cloneLog(l *domain.TransactionLog) *domain.TransactionLog {
	c := *l
	if l.ReversalTransactionID != nil {
		id := *l.ReversalTransactionID
		c.ReversalTransactionID = &id
	}
	if l.CorrectionTransactionID != nil {
		id := *l.CorrectionTransactionID
		c.CorrectionTransactionID = &id
	}
	return &c
}

func cloneEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	c := *e
	c.Payload = maps.Clone(e.Payload)
	if e.PublishedAt != nil {
		at := *e.PublishedAt
		c.PublishedAt = &at
	}
	return &c
}
