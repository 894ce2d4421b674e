package scheduler

import (
	"context"
	"fmt"

	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// RequestSweeper expires stale requests.
type RequestSweeper interface {
	ExpireRequests(ctx context.Context) (int, error)
}

// OfferSweeper expires stale offers.
type OfferSweeper interface {
	ExpireOffers(ctx context.Context) (int, error)
}

// Worker consumes scheduler tasks.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	requests RequestSweeper
	offers   OfferSweeper
	log      *logger.Logger
}

// NewWorker creates an asynq worker wired to the sweep handlers.
func NewWorker(cfg config.SchedulerConfig, requests RequestSweeper, offers OfferSweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		requests: requests,
		offers:   offers,
		log:      log,
	}

	mux.HandleFunc(TaskSweepRequests, w.handleSweepRequests)
	mux.HandleFunc(TaskSweepOffers, w.handleSweepOffers)

	return w, nil
}

func (w *Worker) handleSweepRequests(ctx context.Context, task *asynq.Task) error {
	// Offer sweeps run on their own task; expiring a request only cascades
	// to its still-open offers.
	_, err := w.requests.ExpireRequests(ctx)
	return err
}

func (w *Worker) handleSweepOffers(ctx context.Context, task *asynq.Task) error {
	_, err := w.offers.ExpireOffers(ctx)
	return err
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
