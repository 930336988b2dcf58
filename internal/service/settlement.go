package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/pkg/logging"
)

type SettlementResult struct {
	Order          *models.Order
	AlreadySettled bool
}

type SettlementService struct {
	Repo     *repo.GormRepo
	Payments PaymentGateway
	Events   Publisher
	Now      func() time.Time
}

func (s *SettlementService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// SettleAfterRedirect handles the browser's return from the processor. The redirect itself proves
// nothing, so the order's checkout session is checked with the processor before crediting.
func (s *SettlementService) SettleAfterRedirect(ctx context.Context, rawOrderID string) (*SettlementResult, error) {
	id, err := uuid.Parse(rawOrderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.Status == models.OrderStatusSettled {
		return &SettlementResult{Order: order, AlreadySettled: true}, nil
	}
	if order.PaymentSessionID == nil || *order.PaymentSessionID == "" {
		return nil, fmt.Errorf("%w: order has no checkout session", ErrPaymentNotConfirmed)
	}

	paid, err := s.Payments.SessionPaid(ctx, *order.PaymentSessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymentNotConfirmed, err)
	}
	if !paid {
		return nil, ErrPaymentNotConfirmed
	}
	return s.Settle(ctx, id)
}

// Settle credits the order's lines to its owner's inventory. Re-invoking it for a settled
// order changes nothing and still succeeds.
func (s *SettlementService) Settle(ctx context.Context, id uuid.UUID) (*SettlementResult, error) {
	l := logging.FromContext(ctx).With("op", "settle", "order_id", id.String())

	order, applied, err := s.Repo.SettleOrder(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		l.Error("settlement_failed", "error", err)
		return nil, fmt.Errorf("settle order: %w", err)
	}
	if !applied {
		l.Info("settlement_skipped", "reason", "already settled")
		return &SettlementResult{Order: order, AlreadySettled: true}, nil
	}

	publish(ctx, s.Events, TopicOrderEvents, order.UserID.String(), OrderEvent{
		Type:       "order_settled",
		OrderID:    order.ID.String(),
		UserID:     order.UserID.String(),
		TotalPrice: order.TotalPrice.StringFixed(2),
		Items:      eventLines(order.Items),
		At:         s.now(),
	})
	l.Info("order_settled", "lines", len(order.Items))
	return &SettlementResult{Order: order}, nil
}

// HandlePaymentWebhook settles orders on the processor's signed completion event.
func (s *SettlementService) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	l := logging.FromContext(ctx).With("op", "payment_webhook")

	evt, err := s.Payments.ParseWebhookEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if evt.Kind != PaymentEventCheckoutCompleted || !evt.Paid {
		l.Info("payment_event_ignored", "type", evt.Type, "paid", evt.Paid)
		return nil
	}

	id, err := uuid.Parse(evt.OrderID)
	if err != nil {
		l.Warn("payment_event_ignored", "type", evt.Type, "reason", "no order id in metadata")
		return nil
	}
	_, err = s.Settle(ctx, id)
	return err
}
