// Package nats forwards catalog events to NATS JetStream.
package nats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/narwhalmedia/catalog/pkg/events"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// StreamPublisher is the part of JetStream the publisher needs.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventEnvelope wraps an event with metadata for transport
type EventEnvelope struct {
	ID          string           `json:"id"`
	AggregateID string           `json:"aggregate_id,omitempty"`
	EventType   string           `json:"event_type"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Data        interfaces.Event `json:"data"`
}

// Publisher forwards every event it handles to a JetStream subject. It is
// meant to be subscribed to the in-process bus under the wildcard type.
type Publisher struct {
	js      StreamPublisher
	logger  interfaces.Logger
	timeout time.Duration
}

// NewPublisher creates a new NATS event publisher
func NewPublisher(js StreamPublisher, logger interfaces.Logger) *Publisher {
	return &Publisher{
		js:      js,
		logger:  logger.WithFields(interfaces.String("component", "nats_publisher")),
		timeout: 5 * time.Second,
	}
}

// SubjectFor returns the subject an event type is published on.
func SubjectFor(eventType string) string {
	return SubjectPrefix + "." + eventType
}

// MessageID identifies an event for JetStream deduplication.
func MessageID(event interfaces.Event) string {
	return event.EventType() + ":" + event.AggregateID() + ":" + strconv.FormatInt(event.Timestamp(), 10)
}

// Handle publishes event to JetStream.
func (p *Publisher) Handle(ctx context.Context, event interfaces.Event) error {
	subject := SubjectFor(event.EventType())
	msgID := MessageID(event)

	data, err := json.Marshal(EventEnvelope{
		ID:          msgID,
		AggregateID: event.AggregateID(),
		EventType:   event.EventType(),
		OccurredAt:  time.Unix(0, event.Timestamp()).UTC(),
		Data:        event,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ack, err := p.js.Publish(pubCtx, subject, data, jetstream.WithMsgID(msgID))
	if err != nil {
		p.logger.Error("Failed to publish event",
			interfaces.String("event_type", event.EventType()),
			interfaces.String("subject", subject),
			interfaces.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published",
		interfaces.String("event_type", event.EventType()),
		interfaces.String("subject", subject),
		interfaces.Int64("sequence", int64(ack.Sequence)),
		interfaces.String("stream", ack.Stream))
	return nil
}

// EventType reports the wildcard type so the bus delivers every event.
func (p *Publisher) EventType() string {
	return events.Wildcard
}
