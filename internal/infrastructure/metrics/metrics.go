package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Registry metrics
	LedgersCreated  prometheus.Counter
	LedgersDeleted  prometheus.Counter
	AccountsCreated *prometheus.CounterVec
	AccountsDeleted prometheus.Counter

	// Posting metrics
	TransactionsPosted *prometheus.CounterVec
	PostingDuration    prometheus.Histogram
	PostingAmount      prometheus.Histogram
	BatchSize          prometheus.Histogram

	// Correction metrics
	TransactionsCorrected prometheus.Counter
	TransactionsDeleted   prometheus.Counter

	// Balance metrics
	SnapshotsWritten        *prometheus.CounterVec
	BalanceRebuilds         prometheus.Counter
	InconsistenciesDetected prometheus.Counter
	BalanceCacheRequests    *prometheus.CounterVec

	// Errors by operation and domain error kind
	OperationErrors *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter

	// Storage metrics
	StorageRetries prometheus.Counter

	// HTTP edge metrics
	RateLimitHits      prometheus.Counter
	IdempotencyReplays prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LedgersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_ledgers_created_total",
			Help: "Total number of ledgers created",
		}),
		LedgersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_ledgers_deleted_total",
			Help: "Total number of ledgers deleted",
		}),
		AccountsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgbudget_accounts_created_total",
				Help: "Total number of accounts created by type",
			},
			[]string{"type"},
		),
		AccountsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_accounts_deleted_total",
			Help: "Total number of accounts deleted",
		}),

		TransactionsPosted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgbudget_transactions_posted_total",
				Help: "Total number of transactions posted by flow",
			},
			[]string{"flow"},
		),
		PostingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pgbudget_posting_duration_seconds",
			Help:    "Duration of posting units of work",
			Buckets: prometheus.DefBuckets,
		}),
		PostingAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pgbudget_posting_amount_minor_units",
			Help:    "Posted transaction amounts in minor units",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pgbudget_bulk_batch_size",
			Help:    "Number of transactions per bulk posting",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		}),

		TransactionsCorrected: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_transactions_corrected_total",
			Help: "Total number of transactions corrected",
		}),
		TransactionsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_transactions_deleted_total",
			Help: "Total number of transactions deleted by reversal",
		}),

		SnapshotsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgbudget_balance_snapshots_written_total",
				Help: "Total balance snapshots written by operation type",
			},
			[]string{"operation_type"},
		),
		BalanceRebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_balance_rebuilds_total",
			Help: "Total number of account balance rebuilds",
		}),
		InconsistenciesDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_balance_inconsistencies_total",
			Help: "Total number of broken balance chains detected",
		}),
		BalanceCacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgbudget_balance_cache_requests_total",
				Help: "Balance cache lookups by result",
			},
			[]string{"result"},
		),

		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgbudget_operation_errors_total",
				Help: "Total engine errors by operation and kind",
			},
			[]string{"operation", "kind"},
		),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_outbox_failures_total",
			Help: "Total outbox events that failed to publish",
		}),

		StorageRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_storage_retries_total",
			Help: "Total units of work retried after serialization failures or deadlocks",
		}),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
		IdempotencyReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgbudget_idempotency_replays_total",
			Help: "Total responses served from the idempotency store",
		}),
	}
}
