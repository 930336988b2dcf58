package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/card_market/pkg/tokens"
)

const (
	SessionCookie = "__session"

	ContextExternalUserID = "external_user_id"
	ContextClaims         = "session_claims"
)

type SessionMiddleware struct {
	Verifier *tokens.Verifier
}

func NewSessionMiddleware(v *tokens.Verifier) *SessionMiddleware {
	return &SessionMiddleware{Verifier: v}
}

// RequireAuth rejects requests without a valid session.
func (m *SessionMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := sessionToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
		}
		claims, err := m.Verifier.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
		}
		setUserContext(c, claims)
		return next(c)
	}
}

// OptionalAuth attaches the session when one is present and valid and lets every request through.
func (m *SessionMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := sessionToken(c); raw != "" {
			if claims, err := m.Verifier.Parse(raw); err == nil {
				setUserContext(c, claims)
			}
		}
		return next(c)
	}
}

func sessionToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if v, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(v)
		}
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.SessionClaims) {
	c.Set(ContextExternalUserID, claims.Subject)
	c.Set(ContextClaims, claims)
}

func ExternalUserID(c echo.Context) (string, bool) {
	s, ok := c.Get(ContextExternalUserID).(string)
	return s, ok && s != ""
}

func Claims(c echo.Context) (*tokens.SessionClaims, bool) {
	cl, ok := c.Get(ContextClaims).(*tokens.SessionClaims)
	return cl, ok
}
