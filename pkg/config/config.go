package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"card-market"`
	ServerPort  int    `env:"SERVER_PORT" env-default:"8080"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	DatabaseURL string `env:"DATABASE_URL"`

	AppURL          string `env:"APP_URL" env-default:"http://localhost:3000"`
	CatalogPagePath string `env:"CATALOG_PAGE_PATH" env-default:"/marketplace"`

	Identity Identity
	Payments Payments
	Kafka    Kafka
	Search   Search
	Redis    Redis
}

type Identity struct {
	JWTPublicKey  string `env:"IDENTITY_JWT_PUBLIC_KEY"`
	JWTSecret     string `env:"IDENTITY_JWT_SECRET"`
	WebhookSecret string `env:"IDENTITY_WEBHOOK_SECRET"`
}

type Payments struct {
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	Currency            string `env:"CURRENCY" env-default:"usd"`
}

type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" env-separator:","`
}

type Search struct {
	URL      string `env:"ES_URL"`
	User     string `env:"ES_USER"`
	Password string `env:"ES_PASSWORD"`
	Index    string `env:"ES_INDEX" env-default:"cards"`
}

type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	CartTTL  time.Duration `env:"CART_TTL" env-default:"168h"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("warning: could not load %s: %v", f, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	cfg.Kafka.Brokers = CSV(strings.Join(cfg.Kafka.Brokers, ","))
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
