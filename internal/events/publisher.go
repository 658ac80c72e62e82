package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
// A nil Publisher is valid and drops all events, so callers do not need to
// branch on whether NATS is configured.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishFulfillment publishes a terminal fulfillment outcome.
func (p *Publisher) PublishFulfillment(ctx context.Context, event FulfillmentEvent) error {
	return p.publish(ctx, SubjectFulfillment, event)
}

// PublishVerification publishes a verification redemption result.
func (p *Publisher) PublishVerification(ctx context.Context, event VerificationEvent) error {
	return p.publish(ctx, SubjectVerification, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
