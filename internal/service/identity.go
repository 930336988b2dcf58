package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/card_market/internal/identity"
	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/pkg/logging"
)

type NewUser struct {
	ExternalID string
	Email      string
	ImageURL   string
}

type IdentityService struct {
	Repo     *repo.GormRepo
	Verifier WebhookVerifier
	Events   Publisher
}

// HandleWebhook verifies the delivery, then provisions a local user for user.created events.
// Other event types are acknowledged without side effects.
func (s *IdentityService) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	l := logging.FromContext(ctx).With("op", "identity_webhook")

	if err := s.Verifier.Verify(payload, headers); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	evt, err := identity.ParseEvent(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	switch evt.Kind {
	case identity.EventUserCreated:
		_, err := s.ProvisionUser(ctx, NewUser{
			ExternalID: evt.User.ID,
			Email:      evt.User.PrimaryEmail(),
			ImageURL:   evt.User.ImageURL,
		})
		return err
	default:
		l.Info("identity_event_ignored", "type", evt.Type)
		return nil
	}
}

// ProvisionUser inserts the user. A user that already exists counts as success. An email
// held by a different external id fails with ErrEmailConflict.
func (s *IdentityService) ProvisionUser(ctx context.Context, in NewUser) (bool, error) {
	l := logging.FromContext(ctx).With("op", "provision_user", "external_id", in.ExternalID)

	if strings.TrimSpace(in.ExternalID) == "" {
		return false, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return false, ErrMissingEmail
	}

	u := &models.User{ExternalID: in.ExternalID, Email: email}
	if in.ImageURL != "" {
		img := in.ImageURL
		u.ImageURL = &img
	}

	created, err := s.Repo.CreateUserIfAbsent(ctx, u)
	if errors.Is(err, repo.ErrEmailTaken) {
		l.Warn("user_email_conflict", "email", email)
		return false, fmt.Errorf("%w: %s", ErrEmailConflict, email)
	}
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	if !created {
		l.Info("user_already_provisioned")
		return false, nil
	}

	publish(ctx, s.Events, TopicUserEvents, u.ID.String(), UserEvent{
		Type:       "user_provisioned",
		UserID:     u.ID.String(),
		ExternalID: u.ExternalID,
		Email:      u.Email,
		At:         time.Now().UTC(),
	})
	l.Info("user_provisioned", "user_id", u.ID.String())
	return true, nil
}
