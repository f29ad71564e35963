package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/metrics"
)

// hooks carries the optional collaborators shared by the mutating use cases.
// Every field may be left unset.
type hooks struct {
	outboxRepo OutboxRepository
	cache      Cache
	cacheTTL   time.Duration
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func newHooks(opts []Option) hooks {
	h := hooks{logger: zerolog.Nop(), cacheTTL: DefaultBalanceCacheTTL}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Option configures an optional collaborator of a use case.
type Option func(*hooks)

// WithOutbox records domain events in the same unit of work as the change.
func WithOutbox(repo OutboxRepository) Option {
	return func(h *hooks) { h.outboxRepo = repo }
}

// WithCache enables balance caching. A ttl <= 0 keeps DefaultBalanceCacheTTL.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(h *hooks) {
		h.cache = cache
		if ttl > 0 {
			h.cacheTTL = ttl
		}
	}
}

// WithRetrier retries units of work on transient storage failures.
func WithRetrier(retrier Retrier) Option {
	return func(h *hooks) { h.retrier = retrier }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *hooks) { h.metrics = m }
}

// WithLogger sets the use case logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *hooks) { h.logger = logger }
}

// retry runs op through the configured retrier, or once without one.
func (h *hooks) retry(ctx context.Context, op func() error) error {
	if h.retrier == nil {
		return op()
	}
	return h.retrier.Retry(ctx, op)
}

// emit writes an outbox event inside tx.
func (h *hooks) emit(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error {
	if h.outboxRepo == nil {
		return nil
	}
	return h.outboxRepo.Create(ctx, tx, event)
}

// invalidateBalances drops cached balances. Failures are
// logged; the cache TTL bounds staleness.
func (h *hooks) invalidateBalances(ctx context.Context, accountIDs ...string) {
	if h.cache == nil || len(accountIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		keys = append(keys, balanceCacheKey(id))
	}

	if err := h.cache.Delete(ctx, keys...); err != nil {
		h.logger.Warn().Err(err).Strs("account_ids", accountIDs).Msg("failed to invalidate cached balances")
	}
}

// refreshBalances writes the committed balances of accounts through to the
// cache. It runs after commit so the latest snapshot it reads is at least as
// new as the writer's own.
func (h *hooks) refreshBalances(ctx context.Context, snapshots SnapshotRepository, accounts ...*domain.Account) {
	if h.cache == nil {
		return
	}

	for _, account := range accounts {
		latest, err := snapshots.GetLatest(ctx, account.ID)
		if err != nil {
			h.logger.Warn().Err(err).Str("account_id", account.ID).Msg("failed to load balance for cache refresh")
			h.invalidateBalances(ctx, account.ID)
			continue
		}

		// An emptied chain has no version to order by
		if latest == nil {
			h.invalidateBalances(ctx, account.ID)
			continue
		}

		if err := h.cacheBalance(ctx, newAccountBalance(account, latest)); err != nil {
			h.invalidateBalances(ctx, account.ID)
		}
	}
}

// cacheBalance stores balance unless the cache already holds the same or a
// later snapshot.
func (h *hooks) cacheBalance(ctx context.Context, balance *AccountBalance) error {
	raw, err := json.Marshal(balance)
	if err != nil {
		return err
	}

	if _, err := h.cache.SetIfNewer(ctx, balanceCacheKey(balance.AccountID), balance.Sequence, raw, h.cacheTTL); err != nil {
		h.logger.Warn().Err(err).Str("account_id", balance.AccountID).Msg("failed to cache balance")
		return err
	}
	return nil
}

// observeError counts a failed operation by error kind and logs engine
// inconsistencies, which always need an operator.
func (h *hooks) observeError(operation string, err error) {
	if err == nil {
		return
	}

	kind := domain.KindName(err)
	if h.metrics != nil {
		h.metrics.OperationErrors.WithLabelValues(operation, kind).Inc()
	}

	if kind == "inconsistent" {
		h.logger.Error().Err(err).Str("operation", operation).Msg("balance chain inconsistency, rebuild required")
	}
}

func (h *hooks) observeDuration(start time.Time) {
	if h.metrics != nil {
		h.metrics.PostingDuration.Observe(time.Since(start).Seconds())
	}
}

func balanceCacheKey(accountID string) string {
	return "balance:" + accountID
}
