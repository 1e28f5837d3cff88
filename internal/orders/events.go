package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

const EventOrderCreated = "order.created"

// EventPublisher announces finalized orders to downstream systems.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order Order) error
}

type orderEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Order      Order     `json:"order"`
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// PubSubEvents publishes order events on a Pub/Sub topic.
type PubSubEvents struct {
	topic topicPublisher
	now   func() time.Time
}

func NewPubSubEvents(topic *pubsub.Publisher) (*PubSubEvents, error) {
	if topic == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	return &PubSubEvents{topic: topic, now: time.Now}, nil
}

func (e *PubSubEvents) PublishOrderCreated(ctx context.Context, order Order) error {
	evt := orderEvent{
		EventID:    uuid.NewString(),
		Type:       EventOrderCreated,
		OccurredAt: e.now().UTC(),
		Order:      order,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	res := e.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": EventOrderCreated,
			"event_id":   evt.EventID,
			"order_id":   strconv.FormatInt(order.ID, 10),
		},
	})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}
