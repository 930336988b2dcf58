package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
)

type SessionLine struct {
	Name       string
	Image      string
	UnitAmount int64 // minor currency units
	Quantity   int64
}

type CheckoutSessionInput struct {
	OrderID        uuid.UUID
	ExternalUserID string
	Currency       string
	Lines          []SessionLine
}

type CheckoutSession struct {
	ID  string
	URL string
}

type PaymentEventKind int

const (
	PaymentEventIgnored PaymentEventKind = iota
	PaymentEventCheckoutCompleted
)

type PaymentEvent struct {
	Kind      PaymentEventKind
	Type      string
	OrderID   string
	SessionID string
	Paid      bool
}

// PaymentGateway is the hosted-checkout payment processor.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error)
	SessionPaid(ctx context.Context, sessionID string) (bool, error)
	ParseWebhookEvent(payload []byte, signature string) (PaymentEvent, error)
}

type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

// CardSearcher is implemented by the search index and by the database fallback.
type CardSearcher interface {
	SearchCards(ctx context.Context, f repo.CardFilter, offset, limit int) (int64, []models.Card, error)
}
