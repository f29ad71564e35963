package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/j0lvera/pgbudget/internal/adapter/http/handler"
	redisRepo "github.com/j0lvera/pgbudget/internal/adapter/repository/redis"
	"github.com/j0lvera/pgbudget/internal/infrastructure/config"
	"github.com/j0lvera/pgbudget/internal/infrastructure/logger"
	"github.com/j0lvera/pgbudget/internal/infrastructure/metrics"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "pgbudget",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger, prometheus.DefaultRegisterer); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// run serves HTTP and relays outbox events until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer) error {
	m := metrics.New(reg)

	st, err := openStorage(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer st.close()

	redisClient, err := openRedis(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var (
		cache       usecase.Cache
		idempotency usecase.IdempotencyStore
		checks      = st.checks
	)
	if redisClient != nil {
		defer redisClient.Close()
		cache = redisRepo.NewCache(redisClient)
		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	publisher, closePublisher, err := newEventPublisher(cfg, st.outbox, m, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	svc := newServices(st, cache, cfg.BalanceCacheTTL, m, logger)

	var metricsHandler http.Handler
	if gatherer, ok := reg.(prometheus.Gatherer); ok {
		metricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	limiter := newRateLimiter(cfg, m)

	router := newRouter(cfg, svc, routerDeps{
		idempotency:    idempotency,
		rateLimiter:    limiter,
		metrics:        m,
		metricsHandler: metricsHandler,
		checks:         checks,
		logger:         logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(limiterCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					limiter.CleanupLimiters(limiterCleanupInterval)
				}
			}
		})
	}

	return g.Wait()
}
