// Package memory is an in-process implementation of the repositories. Row
// locks are per-key mutexes held until the unit of work ends, and rollback
// replays an undo log, so the store honors the same locking and atomicity
// contracts as the Postgres adapter.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// ErrTxDone is returned when committing a unit of work that already ended.
var ErrTxDone = errors.New("memory: transaction has already been committed or rolled back")

// Store holds all ledger data in memory.
type Store struct {
	mu    sync.RWMutex
	locks lockTable

	ledgers      map[string]*domain.Ledger
	accounts     map[string]*domain.Account
	transactions map[string]*domain.Transaction
	txOrder      []string
	snapshots    map[string][]*domain.BalanceSnapshot
	logs         []*domain.TransactionLog
	outbox       []*domain.OutboxEvent

	txSeq       int64
	snapshotSeq int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		locks:        lockTable{locks: make(map[string]chan struct{})},
		ledgers:      make(map[string]*domain.Ledger),
		accounts:     make(map[string]*domain.Account),
		transactions: make(map[string]*domain.Transaction),
		snapshots:    make(map[string][]*domain.BalanceSnapshot),
	}
}

// Begin starts a unit of work. It implements usecase.TransactionManager.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: s, held: make(map[string]struct{})}, nil
}

// Tx is a unit of work against a Store. Writes are applied immediately and
// undone on rollback; row locks are released when the unit of work ends.
type Tx struct {
	store *Store

	mu        sync.Mutex
	held      map[string]struct{}
	heldOrder []string
	undo      []func()
	done      bool
}

// Commit keeps every write and releases the row locks.
func (t *Tx) Commit(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.undo = nil
	t.releaseLocked()
	return nil
}

// Rollback undoes every write in reverse order and releases the row locks.
// Rolling back a finished unit of work is a no-op.
func (t *Tx) Rollback(_ context.Context) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return nil
	}
	t.done = true
	undo := t.undo
	t.undo = nil
	t.mu.Unlock()

	t.store.mu.Lock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
	t.store.mu.Unlock()

	t.mu.Lock()
	t.releaseLocked()
	t.mu.Unlock()
	return nil
}

// lock acquires the row lock for key unless t already holds it.
func (t *Tx) lock(ctx context.Context, key string) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return ErrTxDone
	}
	if _, ok := t.held[key]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if err := t.store.locks.acquire(ctx, key); err != nil {
		return err
	}

	t.mu.Lock()
	t.held[key] = struct{}{}
	t.heldOrder = append(t.heldOrder, key)
	t.mu.Unlock()
	return nil
}

// onRollback registers f to run, under the store lock, if t rolls back.
func (t *Tx) onRollback(f func()) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.undo = append(t.undo, f)
	t.mu.Unlock()
}

func (t *Tx) releaseLocked() {
	for i := len(t.heldOrder) - 1; i >= 0; i-- {
		t.store.locks.release(t.heldOrder[i])
	}
	t.held = nil
	t.heldOrder = nil
}

// txOf unwraps a usecase transaction. A nil transaction means autocommit.
func txOf(tx usecase.Transaction) *Tx {
	if tx == nil {
		return nil
	}
	return tx.(*Tx)
}

// lockTable hands out one exclusive lock per key. Waiting honors context
// cancellation.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func (l *lockTable) acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *lockTable) release(key string) {
	l.mu.Lock()
	ch := l.locks[key]
	l.mu.Unlock()
	<-ch
}

func accountLockKey(id string) string {
	return "account:" + id
}

func transactionLockKey(id string) string {
	return "transaction:" + id
}
