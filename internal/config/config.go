package config

import (
	"log"

	"github.com/Skotchmaster/card_market/pkg/config"
)

type ServiceConfig struct {
	config.Config
}

// Load reads the storefront configuration and exits when a required setting is missing.
func Load(envFiles ...string) ServiceConfig {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.Payments.StripeSecretKey, "STRIPE_SECRET_KEY")
	config.MustNonEmpty(cfg.Identity.WebhookSecret, "IDENTITY_WEBHOOK_SECRET")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	return ServiceConfig{Config: cfg}
}

func (c ServiceConfig) CatalogURL() string {
	return c.AppURL + c.CatalogPagePath
}

func (c ServiceConfig) InventoryURL() string {
	return c.AppURL + "/inventory"
}
