// Package scheduler runs the periodic sweeps and the notification outbox
// dispatcher on top of asynq.
package scheduler

import "github.com/hibiken/asynq"

const (
	// TaskSweepRequests expires stale open and broadcasted requests.
	TaskSweepRequests = "leads.sweep.requests"
	// TaskSweepOffers expires open offers past their deadline.
	TaskSweepOffers = "leads.sweep.offers"
)

// NewSweepRequestsTask creates a request sweep task. Sweeps carry no payload;
// the handlers derive everything from the database.
func NewSweepRequestsTask() *asynq.Task {
	return asynq.NewTask(TaskSweepRequests, nil)
}

// NewSweepOffersTask creates an offer sweep task.
func NewSweepOffersTask() *asynq.Task {
	return asynq.NewTask(TaskSweepOffers, nil)
}
