package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/card_market/pkg/logging"
)

const (
	TopicOrderEvents = "order_events"
	TopicUserEvents  = "user_events"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

type OrderEventLine struct {
	CardID   uint   `json:"cardId"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type OrderEvent struct {
	Type       string           `json:"type"`
	OrderID    string           `json:"orderId"`
	UserID     string           `json:"userId"`
	TotalPrice string           `json:"totalPrice"`
	Items      []OrderEventLine `json:"items,omitempty"`
	At         time.Time        `json:"at"`
}

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	ExternalID string    `json:"externalId"`
	Email      string    `json:"email"`
	At         time.Time `json:"at"`
}

// publish runs after the database work has committed. A failed publish is logged and dropped.
func publish(ctx context.Context, p Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "key", key, "error", err)
	}
}
