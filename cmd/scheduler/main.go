package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadmarket_backend/internal/adapters"
	"leadmarket_backend/internal/catalog"
	"leadmarket_backend/internal/email"
	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/jobs"
	"leadmarket_backend/internal/notification"
	"leadmarket_backend/internal/offers"
	"leadmarket_backend/internal/professionals"
	"leadmarket_backend/internal/requests"
	"leadmarket_backend/internal/scheduler"
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

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	val := validator.New()

	// Worker-side module wiring (no HTTP handlers required). The sweeps
	// publish domain events on this process's bus, so the notification
	// module subscribes here too.
	catalogModule := catalog.NewModule(pool, cfg, val, log)
	professionalsModule := professionals.NewModule(pool, val, log)
	walletModule := wallet.NewModule(pool, eventBus, val, log)

	policyResolver := adapters.NewCatalogPolicyResolver(catalogModule.Service())
	requestsModule := requests.NewModule(pool, policyResolver, cfg, eventBus, val, log)

	requestCompleter := adapters.NewRequestCompleterAdapter(requestsModule.Service())
	jobsModule := jobs.NewModule(pool, requestCompleter, eventBus, val, log)

	walletTx := adapters.NewWalletTxAdapter(walletModule.Repository())
	jobsTx := adapters.NewJobsTxAdapter(jobsModule.Repository())
	requestsTx := adapters.NewRequestsTxAdapter(requestsModule.Repository())
	eligibility := adapters.NewProfessionalEligibilityAdapter(professionalsModule.Service())
	offersModule := offers.NewModule(pool, walletTx, jobsTx, requestsTx, eligibility, cfg, eventBus, val, log)

	offerDispatch := adapters.NewOfferDispatchAdapter(offersModule.Service())
	requestsModule.Service().SetDispatcher(offerDispatch)
	requestsModule.Service().SetCanceller(offerDispatch)

	lostFinder := adapters.NewLostProfessionalsAdapter(offersModule.Repository())
	notificationModule := notification.NewModule(pool, lostFinder, eventBus, log)

	contacts := adapters.NewProfessionalContactsAdapter(professionalsModule.Repository())
	describer := adapters.NewLeadDescriberAdapter(requestsModule.Repository(), catalogModule.Repository())
	dispatcher := scheduler.NewNotificationOutboxDispatcher(notificationModule.Outbox(), sender, contacts, describer, log)
	go dispatcher.Run(ctx)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	sweeps := scheduler.NewSweepScheduler(client, cfg.GetSweepInterval(), log)
	go sweeps.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, requestsModule.Service(), offersModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
