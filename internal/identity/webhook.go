// Package identity verifies and decodes the identity provider's user lifecycle webhooks.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

var (
	ErrMissingHeaders   = errors.New("missing webhook signature headers")
	ErrInvalidSignature = errors.New("webhook signature mismatch")
)

var signatureHeaders = []string{"svix-id", "svix-timestamp", "svix-signature"}

type Verifier struct {
	wh *svix.Webhook
}

func NewVerifier(secret string) (*Verifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("identity webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify checks the payload signature. It must run before the payload is decoded.
func (v *Verifier) Verify(payload []byte, headers http.Header) error {
	for _, h := range signatureHeaders {
		if headers.Get(h) == "" {
			return ErrMissingHeaders
		}
	}
	if err := v.wh.Verify(payload, headers); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}

type EventKind int

const (
	EventUnknown EventKind = iota
	EventUserCreated
)

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type UserData struct {
	ID                    string         `json:"id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	ImageURL              string         `json:"image_url"`
}

// PrimaryEmail returns the address marked primary, else the first one listed.
func (u UserData) PrimaryEmail() string {
	for _, e := range u.EmailAddresses {
		if u.PrimaryEmailAddressID != "" && e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

type Event struct {
	Kind EventKind
	Type string
	User *UserData
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseEvent decodes a verified payload. Unknown event types come back as EventUnknown with no error.
func ParseEvent(payload []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Event{}, fmt.Errorf("decode webhook: %w", err)
	}
	switch env.Type {
	case "user.created":
		var u UserData
		if err := json.Unmarshal(env.Data, &u); err != nil {
			return Event{}, fmt.Errorf("decode user.created: %w", err)
		}
		return Event{Kind: EventUserCreated, Type: env.Type, User: &u}, nil
	default:
		return Event{Kind: EventUnknown, Type: env.Type}, nil
	}
}
