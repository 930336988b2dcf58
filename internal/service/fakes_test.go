package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Skotchmaster/card_market/internal/service"
)

type fakeGateway struct {
	mu        sync.Mutex
	inputs    []service.CheckoutSessionInput
	createErr error
	paid      map[string]bool
	paidErr   error
	event     service.PaymentEvent
	eventErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{paid: map[string]bool{}}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, in service.CheckoutSessionInput) (*service.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.inputs = append(g.inputs, in)
	id := fmt.Sprintf("cs_test_%d", len(g.inputs))
	return &service.CheckoutSession{ID: id, URL: "https://checkout.example.com/" + id}, nil
}

func (g *fakeGateway) SessionPaid(_ context.Context, sessionID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paidErr != nil {
		return false, g.paidErr
	}
	return g.paid[sessionID], nil
}

func (g *fakeGateway) ParseWebhookEvent(_ []byte, _ string) (service.PaymentEvent, error) {
	return g.event, g.eventErr
}

func (g *fakeGateway) markPaid(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paid[sessionID] = true
}

type published struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Topic: topic, Key: key, Event: event})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		switch ev := e.Event.(type) {
		case service.OrderEvent:
			out = append(out, ev.Type)
		case service.UserEvent:
			out = append(out, ev.Type)
		}
	}
	return out
}

var errBadSignature = errors.New("bad signature")

type fakeVerifier struct {
	valid bool
}

func (v fakeVerifier) Verify([]byte, http.Header) error {
	if !v.valid {
		return errBadSignature
	}
	return nil
}
