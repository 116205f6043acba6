package interfaces

import (
	"context"
)

// Event represents something that happened in the catalog.
type Event interface {
	// EventType returns the type of the event
	EventType() string

	// Timestamp returns when the event occurred
	Timestamp() int64

	// AggregateID returns the ID of the entity the event is about
	AggregateID() string
}

// EventHandler handles events of a specific type.
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event Event) error

	// EventType returns the type of events this handler processes
	EventType() string
}

// EventBus provides pub/sub functionality for catalog events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a handler for a specific event type
	Subscribe(eventType string, handler EventHandler) error

	// Start starts the event bus
	Start(ctx context.Context) error

	// Stop stops the event bus
	Stop() error
}
