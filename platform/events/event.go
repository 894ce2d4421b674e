// Package events carries the in-process event bus that lead, offer,
// wallet and job modules use to talk to each other without importing
// one another. It is platform plumbing and knows nothing about leads.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event published on the bus.
type Event interface {
	// EventName identifies the event type, e.g. "offer.accepted".
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp shared by all event types.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt reports when the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function act as a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle invokes the wrapped function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events and routes them to subscribers.
type Bus interface {
	// Publish fans the event out to its subscribers. Delivery is
	// asynchronous; publishers do not wait for handlers.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and blocks until every handler
	// has run, returning the first handler error.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an event name as returned
	// by Event.EventName().
	Subscribe(eventName string, handler Handler)
}
