package config

import (
	"fmt"
	"log"
	"strings"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

// Validate reports every required setting that is missing.
func (c Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Payments.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.Identity.WebhookSecret == "" {
		missing = append(missing, "IDENTITY_WEBHOOK_SECRET")
	}
	if c.Identity.JWTPublicKey == "" && c.Identity.JWTSecret == "" {
		missing = append(missing, "IDENTITY_JWT_PUBLIC_KEY or IDENTITY_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}
	return nil
}
