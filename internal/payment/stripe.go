// Package payment adapts Stripe hosted checkout to the storefront's payment gateway port.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/Skotchmaster/card_market/internal/service"
	"github.com/Skotchmaster/card_market/pkg/breaker"
)

const (
	MetadataOrderID = "transactionId"
	MetadataUserID  = "userId"
)

var ErrWebhookNotConfigured = errors.New("payment webhook secret not configured")

type Config struct {
	SecretKey       string
	WebhookSecret   string
	AppURL          string
	CatalogPagePath string
}

type StripeGateway struct {
	sc            *client.API
	cb            *gobreaker.CircuitBreaker
	webhookSecret string
	appURL        string
	catalogPath   string
}

func NewStripeGateway(cfg Config) *StripeGateway {
	return newStripeGateway(cfg, nil)
}

func newStripeGateway(cfg Config, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{
		sc:            client.New(cfg.SecretKey, backends),
		cb:            breaker.New("stripe", 30*time.Second),
		webhookSecret: cfg.WebhookSecret,
		appURL:        cfg.AppURL,
		catalogPath:   cfg.CatalogPagePath,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in service.CheckoutSessionInput) (*service.CheckoutSession, error) {
	params := g.sessionParams(in)
	params.Context = ctx

	cs, err := breaker.Execute(g.cb, func() (*stripe.CheckoutSession, error) {
		return g.sc.CheckoutSessions.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	if cs == nil {
		return nil, errors.New("stripe: empty checkout session")
	}
	return &service.CheckoutSession{ID: cs.ID, URL: cs.URL}, nil
}

func (g *StripeGateway) sessionParams(in service.CheckoutSessionInput) *stripe.CheckoutSessionParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Lines))
	for _, ln := range in.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(ln.Name),
		}
		if ln.Image != "" {
			product.Images = stripe.StringSlice([]string{ln.Image})
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(in.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(ln.UnitAmount),
			},
			Quantity: stripe.Int64(ln.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          items,
		SuccessURL:         stripe.String(g.appURL + "/success?transaction_id=" + url.QueryEscape(in.OrderID.String())),
		CancelURL:          stripe.String(g.appURL + g.catalogPath + "?canceled=true"),
		ClientReferenceID:  stripe.String(in.OrderID.String()),
	}
	params.AddMetadata(MetadataOrderID, in.OrderID.String())
	params.AddMetadata(MetadataUserID, in.ExternalUserID)
	return params
}

func (g *StripeGateway) SessionPaid(ctx context.Context, sessionID string) (bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := breaker.Execute(g.cb, func() (*stripe.CheckoutSession, error) {
		return g.sc.CheckoutSessions.Get(sessionID, params)
	})
	if err != nil {
		return false, fmt.Errorf("stripe: get checkout session: %w", err)
	}
	return sessionPaid(cs), nil
}

func sessionPaid(cs *stripe.CheckoutSession) bool {
	if cs == nil {
		return false
	}
	switch cs.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return true
	}
	return false
}

// ParseWebhookEvent verifies the Stripe-Signature header and decodes checkout session events.
func (g *StripeGateway) ParseWebhookEvent(payload []byte, signature string) (service.PaymentEvent, error) {
	if g.webhookSecret == "" {
		return service.PaymentEvent{}, ErrWebhookNotConfigured
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return service.PaymentEvent{}, err
	}
	return decodeEvent(evt)
}

func decodeEvent(evt stripe.Event) (service.PaymentEvent, error) {
	out := service.PaymentEvent{Type: string(evt.Type)}
	switch evt.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
	default:
		return out, nil
	}
	if evt.Data == nil {
		return out, errors.New("stripe: event without data")
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &cs); err != nil {
		return out, fmt.Errorf("stripe: decode checkout session: %w", err)
	}
	out.Kind = service.PaymentEventCheckoutCompleted
	out.SessionID = cs.ID
	out.OrderID = cs.Metadata[MetadataOrderID]
	if out.OrderID == "" {
		out.OrderID = cs.ClientReferenceID
	}
	out.Paid = sessionPaid(&cs)
	return out, nil
}
