package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadmarket_backend/internal/adapters"
	"leadmarket_backend/internal/catalog"
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/http/router"
	"leadmarket_backend/internal/jobs"
	"leadmarket_backend/internal/notification"
	"leadmarket_backend/internal/offers"
	"leadmarket_backend/internal/professionals"
	"leadmarket_backend/internal/requests"
	"leadmarket_backend/internal/wallet"
	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/db"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, cfg, val, log)
	professionalsModule := professionals.NewModule(pool, val, log)
	walletModule := wallet.NewModule(pool, eventBus, val, log)

	policyResolver := adapters.NewCatalogPolicyResolver(catalogModule.Service())
	requestsModule := requests.NewModule(pool, policyResolver, cfg, eventBus, val, log)

	requestCompleter := adapters.NewRequestCompleterAdapter(requestsModule.Service())
	jobsModule := jobs.NewModule(pool, requestCompleter, eventBus, val, log)

	// The acceptance path spans the wallet, jobs and requests tables in one
	// transaction, so the offers module gets Tx ports over those repositories.
	walletTx := adapters.NewWalletTxAdapter(walletModule.Repository())
	jobsTx := adapters.NewJobsTxAdapter(jobsModule.Repository())
	requestsTx := adapters.NewRequestsTxAdapter(requestsModule.Repository())
	eligibility := adapters.NewProfessionalEligibilityAdapter(professionalsModule.Service())
	offersModule := offers.NewModule(pool, walletTx, jobsTx, requestsTx, eligibility, cfg, eventBus, val, log)

	// Break the requests <-> offers cycle with setter injection.
	offerDispatch := adapters.NewOfferDispatchAdapter(offersModule.Service())
	requestsModule.Service().SetDispatcher(offerDispatch)
	requestsModule.Service().SetCanceller(offerDispatch)

	// Notification module subscribes to domain events and fills the outbox.
	lostFinder := adapters.NewLostProfessionalsAdapter(offersModule.Repository())
	notificationModule := notification.NewModule(pool, lostFinder, eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			professionalsModule,
			walletModule,
			requestsModule,
			offersModule,
			jobsModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
