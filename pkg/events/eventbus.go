package events

import (
	"context"
	"sync"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// InMemoryEventBus is an in-memory implementation of EventBus
type InMemoryEventBus struct {
	handlers map[string][]interfaces.EventHandler
	mu       sync.RWMutex
	logger   interfaces.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger interfaces.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]interfaces.EventHandler),
		logger:   logger,
	}
}

// Publish publishes an event to all subscribers
func (eb *InMemoryEventBus) Publish(ctx context.Context, event interfaces.Event) error {
	eb.mu.RLock()
	handlers := append([]interfaces.EventHandler(nil), eb.handlers[event.EventType()]...)
	handlers = append(handlers, eb.handlers[Wildcard]...)
	eb.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			eb.logger.Error("Event handler failed",
				interfaces.String("event_type", event.EventType()),
				interfaces.String("handler", handler.EventType()),
				interfaces.Error(err))
			// Continue processing other handlers
		}
	}

	return nil
}

// Subscribe registers a handler for a specific event type
func (eb *InMemoryEventBus) Subscribe(eventType string, handler interfaces.EventHandler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("Event handler subscribed",
		interfaces.String("event_type", eventType),
		interfaces.String("handler", handler.EventType()))

	return nil
}

// Start starts the event bus
func (eb *InMemoryEventBus) Start(ctx context.Context) error {
	eb.logger.Info("Event bus started")
	return nil
}

// Stop stops the event bus. Publish is synchronous, so no delivery is in flight.
func (eb *InMemoryEventBus) Stop() error {
	eb.logger.Info("Event bus stopped")
	return nil
}
