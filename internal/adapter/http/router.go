package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/j0lvera/pgbudget/internal/adapter/http/handler"
	"github.com/j0lvera/pgbudget/internal/adapter/http/middleware"
	"github.com/j0lvera/pgbudget/internal/infrastructure/metrics"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler         *handler.LedgerHandler
	AccountHandler        *handler.AccountHandler
	TransactionHandler    *handler.TransactionHandler
	BalanceHandler        *handler.BalanceHandler
	BudgetHandler         *handler.BudgetHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	// TokenVerifier enables bearer authentication. When nil the owner is
	// read from the X-Owner-ID header.
	TokenVerifier    middleware.TokenVerifier
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
	RequestTimeout   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))

		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Metrics, cfg.Logger)
			r.Use(idempotency.Wrap)
		}

		// Ledgers
		r.Route("/ledgers", func(r chi.Router) {
			r.Post("/", cfg.LedgerHandler.Create)
			r.Get("/", cfg.LedgerHandler.List)

			r.Route("/{ledgerID}", func(r chi.Router) {
				r.Get("/", cfg.LedgerHandler.Get)
				r.Delete("/", cfg.LedgerHandler.Delete)

				r.Post("/accounts", cfg.AccountHandler.Create)
				r.Get("/accounts", cfg.AccountHandler.List)
				r.Post("/categories", cfg.AccountHandler.CreateCategory)
				r.Get("/categories", cfg.AccountHandler.FindCategory)

				r.Post("/transactions", cfg.TransactionHandler.Create)
				r.Get("/transactions", cfg.TransactionHandler.List)
				r.Post("/transactions/bulk", cfg.TransactionHandler.CreateBulk)
				r.Post("/assignments", cfg.TransactionHandler.Assign)

				r.Get("/balances", cfg.BalanceHandler.ListByLedger)
				r.Get("/budget", cfg.BudgetHandler.Status)
				r.Get("/budget/totals", cfg.BudgetHandler.Totals)

				r.Get("/consistency", cfg.ReconciliationHandler.Consistency)
				r.Get("/reconciliation", cfg.ReconciliationHandler.Report)
			})
		})

		// Accounts
		r.Route("/accounts/{accountID}", func(r chi.Router) {
			r.Get("/", cfg.AccountHandler.Get)
			r.Delete("/", cfg.AccountHandler.Delete)
			r.Get("/balance", cfg.BalanceHandler.Get)
			r.Get("/balance/history", cfg.BalanceHandler.History)
			r.Post("/balance/rebuild", cfg.BalanceHandler.Rebuild)
			r.Get("/reconciliation", cfg.ReconciliationHandler.Account)
		})

		// Transactions
		r.Route("/transactions/{transactionID}", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.Get)
			r.Put("/", cfg.TransactionHandler.Correct)
			r.Delete("/", cfg.TransactionHandler.Delete)
			r.Get("/log", cfg.TransactionHandler.Log)
		})
	})

	return r
}
