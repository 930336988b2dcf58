package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/card_market/pkg/tokens"
)

var secret = []byte("session-secret")

func signed(t *testing.T, sub string) string {
	t.Helper()
	s, err := tokens.SignHS256(secret, tokens.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return s
}

func echoUser(c echo.Context) error {
	id, ok := ExternalUserID(c)
	if !ok {
		return c.String(http.StatusOK, "guest")
	}
	return c.String(http.StatusOK, id)
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	mw := NewSessionMiddleware(tokens.NewHMACVerifier(secret))
	h := mw.RequireAuth(echoUser)

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{
			name:     "bearer header",
			prepare:  func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+signed(t, "user_a")) },
			wantCode: http.StatusOK,
			wantBody: "user_a",
		},
		{
			name:     "session cookie",
			prepare:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: signed(t, "user_b")}) },
			wantCode: http.StatusOK,
			wantBody: "user_b",
		},
		{
			name:     "missing",
			prepare:  func(r *http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "invalid",
			prepare:  func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer nope") },
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h(c)
			if tt.wantCode != http.StatusOK {
				var he *echo.HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, tt.wantCode, he.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	t.Parallel()

	mw := NewSessionMiddleware(tokens.NewHMACVerifier(secret))
	h := mw.OptionalAuth(echoUser)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer broken")
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, "guest", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed(t, "user_c"))
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, "user_c", rec.Body.String())
}
