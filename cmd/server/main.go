package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/card_market/internal/cart"
	appcfg "github.com/Skotchmaster/card_market/internal/config"
	"github.com/Skotchmaster/card_market/internal/httpserver"
	"github.com/Skotchmaster/card_market/internal/identity"
	"github.com/Skotchmaster/card_market/internal/payment"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/internal/search"
	"github.com/Skotchmaster/card_market/internal/service"
	pkgdb "github.com/Skotchmaster/card_market/pkg/db"
	pkgkafka "github.com/Skotchmaster/card_market/pkg/kafka"
	"github.com/Skotchmaster/card_market/pkg/logging"
	authmw "github.com/Skotchmaster/card_market/pkg/middleware/auth"
	"github.com/Skotchmaster/card_market/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/card_market/pkg/middleware/logging"
	"github.com/Skotchmaster/card_market/pkg/tokens"
)

func main() {
	cfg := appcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	r := repo.New(db)

	var events service.Publisher = service.NoopPublisher{}
	var producer *pkgkafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = pkgkafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		events = producer
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	catalog := &service.CatalogService{Repo: r}
	if cfg.Search.URL != "" {
		catalog.Search = startSearchIndex(cfg, r, logger)
	}

	var cartStorage cart.Storage = cart.NewMemoryStorage()
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		pingCancel()
		cartStorage = cart.NewRedisStorage(rdb, cfg.Redis.CartTTL)
	} else {
		logger.Warn("redis_disabled", "reason", "carts are kept in memory")
	}

	gateway := payment.NewStripeGateway(payment.Config{
		SecretKey:       cfg.Payments.StripeSecretKey,
		WebhookSecret:   cfg.Payments.StripeWebhookSecret,
		AppURL:          cfg.AppURL,
		CatalogPagePath: cfg.CatalogPagePath,
	})

	webhookVerifier, err := identity.NewVerifier(cfg.Identity.WebhookSecret)
	if err != nil {
		log.Fatalf("identity webhook secret: %v", err)
	}

	sessionVerifier := tokens.NewHMACVerifier([]byte(cfg.Identity.JWTSecret))
	if cfg.Identity.JWTPublicKey != "" {
		sessionVerifier, err = tokens.NewRSAVerifier(cfg.Identity.JWTPublicKey)
		if err != nil {
			log.Fatalf("identity public key: %v", err)
		}
	}

	settlement := &service.SettlementService{Repo: r, Payments: gateway, Events: events}
	checkout := &service.CheckoutService{Repo: r, Payments: gateway, Events: events, Currency: cfg.Payments.Currency}
	carts := &cart.Service{Storage: cartStorage, Cards: r}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger, "/health"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.AppURL},
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-CSRF-Token"},
	}))

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.TrustedOrigins = []string{cfg.AppURL}

	httpserver.Register(e, &httpserver.Deps{
		DB:       db,
		Catalog:  &httpserver.CatalogHTTP{Svc: catalog},
		Account:  &httpserver.AccountHTTP{Svc: &service.AccountService{Repo: r}},
		Checkout: &httpserver.CheckoutHTTP{Svc: checkout, Cart: carts},
		Cart:     &httpserver.CartHTTP{Svc: carts},
		Success: &httpserver.SuccessHTTP{
			Svc:          settlement,
			CatalogURL:   cfg.CatalogURL(),
			InventoryURL: cfg.InventoryURL(),
		},
		Webhooks: &httpserver.WebhookHTTP{
			Identity:   &service.IdentityService{Repo: r, Verifier: webhookVerifier, Events: events},
			Settlement: settlement,
		},
		Session: authmw.NewSessionMiddleware(sessionVerifier),
		CSRF:    csrfCfg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka_close_error", "error", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = pkgdb.Close(db)

	logger.Info("server stopped")
}

// startSearchIndex connects to Elasticsearch and pushes the catalog into the index.
// Search keeps working against the database when the index is unreachable.
func startSearchIndex(cfg appcfg.ServiceConfig, r *repo.GormRepo, logger *slog.Logger) service.CardSearcher {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	es, err := search.NewClient(ctx, search.Config{
		URL:      cfg.Search.URL,
		User:     cfg.Search.User,
		Password: cfg.Search.Password,
	})
	if err != nil {
		logger.Warn("search_disabled", "error", err)
		return nil
	}
	ix := &search.Index{ES: es, Name: cfg.Search.Index}

	cards, err := r.ListCards(ctx)
	if err != nil {
		logger.Warn("search_index_failed", "error", err)
		return ix
	}
	if err := ix.IndexCards(ctx, cards); err != nil {
		logger.Warn("search_index_failed", "error", err)
		return ix
	}
	logger.Info("search_index_ready", "cards", len(cards))
	return ix
}
