package scheduler

import (
	"context"
	"time"

	"leadmarket_backend/platform/logger"
)

// SweepScheduler periodically enqueues the sweep tasks. Sweeps are
// idempotent, so overlapping runs from multiple instances are harmless.
type SweepScheduler struct {
	client   *Client
	interval time.Duration
	log      *logger.Logger
}

// NewSweepScheduler creates a sweep scheduler.
func NewSweepScheduler(client *Client, interval time.Duration, log *logger.Logger) *SweepScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SweepScheduler{client: client, interval: interval, log: log}
}

// Run enqueues sweeps until the context is cancelled.
func (s *SweepScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := s.client.EnqueueSweeps(ctx); err != nil {
			s.log.Warn("failed to enqueue sweeps", "error", err)
		}
	}
}
