package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/pkg/logging"
)

type CheckoutLine struct {
	ItemID   string
	Quantity int
}

type CheckoutResult struct {
	OrderID    uuid.UUID
	URL        string
	TotalPrice decimal.Decimal
}

type CheckoutService struct {
	Repo     *repo.GormRepo
	Payments PaymentGateway
	Events   Publisher
	Currency string
}

// MaxLineQuantity bounds a single card's quantity in one order, after repeated ids are merged.
const MaxLineQuantity = 1000

var (
	hundred = decimal.NewFromInt(100)
	// maxOrderTotal is the largest value the NUMERIC(10,2) total column holds.
	maxOrderTotal = decimal.RequireFromString("99999999.99")
)

// Checkout prices the requested lines from the catalog, persists a pending order and
// returns the processor's hosted checkout URL for it.
func (s *CheckoutService) Checkout(ctx context.Context, externalUserID string, lines []CheckoutLine) (*CheckoutResult, error) {
	l := logging.FromContext(ctx).With("op", "checkout")

	if externalUserID == "" {
		return nil, ErrUnauthorized
	}
	ids, qty, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}

	user, err := s.Repo.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotProvisioned
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	cards, err := s.Repo.GetCardsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	byID := make(map[uint]models.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(ids))
	sessionLines := make([]SessionLine, 0, len(ids))
	for _, id := range ids {
		card, ok := byID[id]
		if !ok {
			return nil, &ItemNotFoundError{ItemID: strconv.FormatUint(uint64(id), 10)}
		}
		q := qty[id]
		unit := card.Price.Round(2)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(q))))

		items = append(items, models.OrderItem{CardID: id, Quantity: q, PriceAtPurchase: unit})
		sessionLines = append(sessionLines, SessionLine{
			Name:       card.Name,
			Image:      card.Image,
			UnitAmount: MinorUnits(unit),
			Quantity:   int64(q),
		})
	}

	if total.Round(2).GreaterThan(maxOrderTotal) {
		return nil, fmt.Errorf("%w: order total exceeds %s", ErrValidation, maxOrderTotal.StringFixed(2))
	}

	order := &models.Order{
		UserID:     user.ID,
		TotalPrice: total.Round(2),
		Status:     models.OrderStatusPending,
		Items:      items,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	l = l.With("order_id", order.ID.String())

	session, err := s.Payments.CreateCheckoutSession(ctx, CheckoutSessionInput{
		OrderID:        order.ID,
		ExternalUserID: externalUserID,
		Currency:       s.Currency,
		Lines:          sessionLines,
	})
	if err != nil {
		l.Error("checkout_session_failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}
	if session.URL == "" {
		l.Error("checkout_session_failed", "reason", "empty session url")
		return nil, fmt.Errorf("%w: processor returned no url", ErrCheckoutFailed)
	}
	if err := s.Repo.SetPaymentSession(ctx, order.ID, session.ID); err != nil {
		l.Error("checkout_session_record_failed", "error", err)
		return nil, fmt.Errorf("%w: record session: %w", ErrCheckoutFailed, err)
	}

	publish(ctx, s.Events, TopicOrderEvents, user.ID.String(), OrderEvent{
		Type:       "order_created",
		OrderID:    order.ID.String(),
		UserID:     user.ID.String(),
		TotalPrice: order.TotalPrice.StringFixed(2),
		Items:      eventLines(order.Items),
		At:         time.Now().UTC(),
	})
	l.Info("checkout_session_created", "total", order.TotalPrice.StringFixed(2), "lines", len(items))

	return &CheckoutResult{OrderID: order.ID, URL: session.URL, TotalPrice: order.TotalPrice}, nil
}

// normalizeLines validates the request and merges repeated ids, keeping first-seen order.
func normalizeLines(lines []CheckoutLine) ([]uint, map[uint]int, error) {
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	ids := make([]uint, 0, len(lines))
	qty := make(map[uint]int, len(lines))
	for _, ln := range lines {
		raw := strings.TrimSpace(ln.ItemID)
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return nil, nil, fmt.Errorf("%w: invalid item id %q", ErrValidation, ln.ItemID)
		}
		if ln.Quantity < 1 {
			return nil, nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		id := uint(n)
		prev, seen := qty[id]
		if !seen {
			ids = append(ids, id)
		}
		// Both operands are checked first, so the sum cannot wrap.
		if ln.Quantity > MaxLineQuantity || prev+ln.Quantity > MaxLineQuantity {
			return nil, nil, fmt.Errorf("%w: quantity of item %d exceeds %d", ErrValidation, id, MaxLineQuantity)
		}
		qty[id] = prev + ln.Quantity
	}
	return ids, qty, nil
}

// MinorUnits converts a decimal amount to the currency's smallest unit, rounding half up.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func eventLines(items []models.OrderItem) []OrderEventLine {
	out := make([]OrderEventLine, 0, len(items))
	for _, it := range items {
		out = append(out, OrderEventLine{CardID: it.CardID, Quantity: it.Quantity, Price: it.PriceAtPurchase.StringFixed(2)})
	}
	return out
}
