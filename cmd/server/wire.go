package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/j0lvera/pgbudget/internal/adapter/http"
	"github.com/j0lvera/pgbudget/internal/adapter/http/handler"
	"github.com/j0lvera/pgbudget/internal/adapter/http/middleware"
	"github.com/j0lvera/pgbudget/internal/adapter/messaging/amqp"
	memoryRepo "github.com/j0lvera/pgbudget/internal/adapter/repository/memory"
	postgresRepo "github.com/j0lvera/pgbudget/internal/adapter/repository/postgres"
	"github.com/j0lvera/pgbudget/internal/infrastructure/auth"
	"github.com/j0lvera/pgbudget/internal/infrastructure/config"
	"github.com/j0lvera/pgbudget/internal/infrastructure/eventpublisher"
	"github.com/j0lvera/pgbudget/internal/infrastructure/metrics"
	"github.com/j0lvera/pgbudget/internal/infrastructure/postgres"
	"github.com/j0lvera/pgbudget/internal/infrastructure/redis"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// storage is the set of repositories behind one storage driver.
type storage struct {
	txManager    usecase.TransactionManager
	ledgers      usecase.LedgerRepository
	accounts     usecase.AccountRepository
	transactions usecase.TransactionRepository
	snapshots    usecase.SnapshotRepository
	logs         usecase.TransactionLogRepository
	budgets      usecase.BudgetRepository
	outbox       usecase.OutboxRepository
	retrier      usecase.Retrier
	checks       []handler.HealthCheck
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return newMemoryStorage(), nil
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, err
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		MaxConnLifetime: cfg.DatabaseMaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	logger.Info().Msg("connected to postgres")

	return newPostgresStorage(pool, logger, m), nil
}

func newPostgresStorage(pool *pgxpool.Pool, logger zerolog.Logger, m *metrics.Metrics) *storage {
	return &storage{
		txManager:    postgresRepo.NewTxManager(pool),
		ledgers:      postgresRepo.NewLedgerRepository(pool),
		accounts:     postgresRepo.NewAccountRepository(pool),
		transactions: postgresRepo.NewTransactionRepository(pool),
		snapshots:    postgresRepo.NewSnapshotRepository(pool),
		logs:         postgresRepo.NewTransactionLogRepository(pool),
		budgets:      postgresRepo.NewBudgetRepository(pool),
		outbox:       postgresRepo.NewOutboxRepository(pool),
		retrier:      postgresRepo.NewRetrier(logger, m),
		checks:       []handler.HealthCheck{{Name: "postgres", Check: pool.Ping}},
		close:        pool.Close,
	}
}

func newMemoryStorage() *storage {
	store := memoryRepo.NewStore()
	return &storage{
		txManager:    store,
		ledgers:      memoryRepo.NewLedgerRepository(store),
		accounts:     memoryRepo.NewAccountRepository(store),
		transactions: memoryRepo.NewTransactionRepository(store),
		snapshots:    memoryRepo.NewSnapshotRepository(store),
		logs:         memoryRepo.NewTransactionLogRepository(store),
		budgets:      memoryRepo.NewBudgetRepository(store),
		outbox:       memoryRepo.NewOutboxRepository(store),
		close:        func() {},
	}
}

// services holds the use cases served over HTTP.
type services struct {
	ledgers        *usecase.LedgerUseCase
	accounts       *usecase.AccountUseCase
	transactions   *usecase.TransactionUseCase
	corrections    *usecase.CorrectionUseCase
	balances       *usecase.BalanceUseCase
	budgets        *usecase.BudgetUseCase
	reconciliation *usecase.ReconciliationUseCase
}

func newServices(st *storage, cache usecase.Cache, cacheTTL time.Duration, m *metrics.Metrics, logger zerolog.Logger) *services {
	idGen := postgresRepo.NewULIDGenerator()

	opts := []usecase.Option{
		usecase.WithOutbox(st.outbox),
		usecase.WithMetrics(m),
		usecase.WithLogger(logger),
	}
	if st.retrier != nil {
		opts = append(opts, usecase.WithRetrier(st.retrier))
	}
	if cache != nil {
		opts = append(opts, usecase.WithCache(cache, cacheTTL))
	}

	materializer := usecase.NewBalanceMaterializer(st.snapshots, idGen, opts...)

	return &services{
		ledgers:        usecase.NewLedgerUseCase(st.txManager, st.ledgers, st.accounts, idGen, opts...),
		accounts:       usecase.NewAccountUseCase(st.txManager, st.ledgers, st.accounts, st.transactions, idGen, opts...),
		transactions:   usecase.NewTransactionUseCase(st.txManager, st.ledgers, st.accounts, st.transactions, materializer, idGen, opts...),
		corrections:    usecase.NewCorrectionUseCase(st.txManager, st.accounts, st.transactions, st.logs, materializer, idGen, opts...),
		balances:       usecase.NewBalanceUseCase(st.txManager, st.ledgers, st.accounts, st.transactions, st.snapshots, materializer, idGen, opts...),
		budgets:        usecase.NewBudgetUseCase(st.ledgers, st.accounts, st.snapshots, st.budgets),
		reconciliation: usecase.NewReconciliationUseCase(st.ledgers, st.accounts, st.transactions, st.snapshots, opts...),
	}
}

// routerDeps are the optional HTTP collaborators.
type routerDeps struct {
	idempotency    usecase.IdempotencyStore
	rateLimiter    *middleware.RateLimiter
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	checks         []handler.HealthCheck
	logger         zerolog.Logger
}

func newRouter(cfg *config.Config, svc *services, deps routerDeps) http.Handler {
	routerCfg := httpAdapter.RouterConfig{
		LedgerHandler:         handler.NewLedgerHandler(svc.ledgers),
		AccountHandler:        handler.NewAccountHandler(svc.accounts),
		TransactionHandler:    handler.NewTransactionHandler(svc.transactions, svc.corrections),
		BalanceHandler:        handler.NewBalanceHandler(svc.balances),
		BudgetHandler:         handler.NewBudgetHandler(svc.budgets),
		ReconciliationHandler: handler.NewReconciliationHandler(svc.reconciliation),
		HealthHandler:         handler.NewHealthHandler(deps.checks...),
		RateLimiter:           deps.rateLimiter,
		IdempotencyStore:      deps.idempotency,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		Metrics:               deps.metrics,
		MetricsHandler:        deps.metricsHandler,
		Logger:                deps.logger,
		RequestTimeout:        cfg.HTTPRequestTimeout,
	}

	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}
	return httpAdapter.NewRouter(routerCfg)
}

// newRateLimiter returns nil when RATE_LIMIT_RPS is zero.
func newRateLimiter(cfg *config.Config, m *metrics.Metrics) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
}

// openRedis connects to Redis when REDIS_URL is set. A nil client means
// idempotency and caching are disabled.
func openRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*goredis.Client, error) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set; idempotency and balance caching disabled")
		return nil, nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info().Msg("connected to redis")
	return client, nil
}

// newEventPublisher picks the AMQP publisher when AMQP_URL is set and the log
// publisher otherwise. The returned closer releases the broker connection.
func newEventPublisher(cfg *config.Config, outbox usecase.OutboxRepository, m *metrics.Metrics, logger zerolog.Logger) (*eventpublisher.EventPublisher, func(), error) {
	var (
		publisher eventpublisher.Publisher
		closer    = func() {}
	)

	if cfg.AMQPURL != "" {
		p, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to amqp: %w", err)
		}
		publisher = p
		closer = func() {
			if err := p.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close amqp publisher")
			}
		}
		logger.Info().Str("exchange", cfg.AMQPExchange).Msg("connected to amqp")
	} else {
		publisher = eventpublisher.NewLogPublisher(logger)
	}

	ep := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outbox,
		Publisher:  publisher,
		Logger:     logger.With().Str("component", "event_publisher").Logger(),
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	return ep, closer, nil
}
