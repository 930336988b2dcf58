package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"
	"gorm.io/gorm"

	"github.com/Skotchmaster/card_market/internal/cart"
	"github.com/Skotchmaster/card_market/internal/identity"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/internal/service"
	"github.com/Skotchmaster/card_market/internal/testenv"
	"github.com/Skotchmaster/card_market/pkg/logging"
	authmw "github.com/Skotchmaster/card_market/pkg/middleware/auth"
	"github.com/Skotchmaster/card_market/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/card_market/pkg/middleware/logging"
	"github.com/Skotchmaster/card_market/pkg/tokens"
)

var (
	sessionSecret = []byte("session-test-secret")
	webhookSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("identity-webhook-test-secret"))
	fixedNow      = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
)

const catalogURL = "http://localhost:3000/marketplace"

type fakeGateway struct {
	mu        sync.Mutex
	inputs    []service.CheckoutSessionInput
	createErr error
	paid      map[string]bool
	event     service.PaymentEvent
	eventErr  error
	// onCreate runs before each session is created, outside the lock.
	onCreate func()
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, in service.CheckoutSessionInput) (*service.CheckoutSession, error) {
	if g.onCreate != nil {
		g.onCreate()
	}
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
	return g.paid[sessionID], nil
}

func (g *fakeGateway) ParseWebhookEvent([]byte, string) (service.PaymentEvent, error) {
	return g.event, g.eventErr
}

func (g *fakeGateway) lastOrderID(t *testing.T) string {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.inputs)
	return g.inputs[len(g.inputs)-1].OrderID.String()
}

func (g *fakeGateway) payAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.inputs {
		g.paid[fmt.Sprintf("cs_test_%d", i+1)] = true
	}
}

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	DB      *gorm.DB
	Gateway *fakeGateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testenv.NewSeededDB(t)
	r := repo.New(db)
	gw := &fakeGateway{paid: map[string]bool{}}

	verifier, err := identity.NewVerifier(webhookSecret)
	require.NoError(t, err)

	settlement := &service.SettlementService{Repo: r, Payments: gw, Events: service.NoopPublisher{}}
	checkout := &service.CheckoutService{Repo: r, Payments: gw, Events: service.NoopPublisher{}, Currency: "usd"}
	carts := &cart.Service{Storage: cart.NewMemoryStorage(), Cards: r}

	e := echo.New()
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter(io.Discard, "error")))
	Register(e, &Deps{
		DB:       db,
		Catalog:  &CatalogHTTP{Svc: &service.CatalogService{Repo: r}, Now: func() time.Time { return fixedNow }},
		Account:  &AccountHTTP{Svc: &service.AccountService{Repo: r}},
		Checkout: &CheckoutHTTP{Svc: checkout, Cart: carts},
		Cart:     &CartHTTP{Svc: carts},
		Success:  &SuccessHTTP{Svc: settlement, CatalogURL: catalogURL, InventoryURL: "http://localhost:3000/inventory"},
		Webhooks: &WebhookHTTP{
			Identity:   &service.IdentityService{Repo: r, Verifier: verifier, Events: service.NoopPublisher{}},
			Settlement: settlement,
		},
		Session: authmw.NewSessionMiddleware(tokens.NewHMACVerifier(sessionSecret)),
		CSRF:    csrf.DefaultConfig(),
	})

	return &testEnv{T: t, E: e, DB: db, Gateway: gw}
}

func (env *testEnv) token(externalID string) string {
	env.T.Helper()
	s, err := tokens.SignHS256(sessionSecret, tokens.SessionClaims{
		Name:  "Ada",
		Email: externalID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(env.T, err)
	return s
}

func (env *testEnv) doJSONRequest(method, path string, body any, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.T.Helper()
	headers := map[string]string{}
	if token != "" {
		headers[echo.HeaderAuthorization] = "Bearer " + token
	}
	return env.doJSONRequestWithHeaders(method, path, body, headers, cookies...)
}

func (env *testEnv) doJSONRequestWithHeaders(method, path string, body any, headers map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) signedHeaders(payload []byte) http.Header {
	env.T.Helper()
	wh, err := svix.NewWebhook(webhookSecret)
	require.NoError(env.T, err)
	now := time.Now()
	sig, err := wh.Sign("msg_1", now, payload)
	require.NoError(env.T, err)

	h := http.Header{}
	h.Set("svix-id", "msg_1")
	h.Set("svix-timestamp", strconv.FormatInt(now.Unix(), 10))
	h.Set("svix-signature", sig)
	return h
}

func (env *testEnv) postWebhook(payload []byte, headers http.Header) *httptest.ResponseRecorder {
	env.T.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(payload))
	for k, v := range headers {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) signedWebhook(payload []byte) *httptest.ResponseRecorder {
	env.T.Helper()
	return env.postWebhook(payload, env.signedHeaders(payload))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
