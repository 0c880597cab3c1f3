package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/avaldera/localmart-backend/pkg/logger"
)

// Event is the notification payload published per order transition.
type Event struct {
	Type        string          `json:"type"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Publisher dispatches notification events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

type dispatcher struct {
	topic topicPublisher
	logg  *logger.Logger
}

// NewDispatcher builds a publisher bound to the notification topic.
func NewDispatcher(topic topicPublisher, logg *logger.Logger) (Publisher, error) {
	if topic == nil {
		return nil, fmt.Errorf("notification topic required")
	}
	return &dispatcher{topic: topic, logg: logg}, nil
}

// Publish sends the event. Delivery is fire-and-forget from the caller's
// perspective: the outbox worker retries on error, consumers deduplicate.
func (d *dispatcher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	res := d.topic.Publish(ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"type":         event.Type,
			"order_number": event.OrderNumber,
		},
	})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	if d.logg != nil {
		fields := map[string]any{"type": event.Type, "order_number": event.OrderNumber}
		d.logg.Info(d.logg.WithFields(ctx, fields), "notification published")
	}
	return nil
}
