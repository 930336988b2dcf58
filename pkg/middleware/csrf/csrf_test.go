package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, req *http.Request, trusted ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	h := Middleware(Config{TrustedOrigins: trusted})(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	return rec, h(e.NewContext(req, rec))
}

func TestSafeMethodIssuesToken(t *testing.T) {
	t.Parallel()

	rec, err := run(t, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "XSRF-TOKEN=")
}

func TestBearerRequestSkipsCheck(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	rec, err := run(t, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCookieSessionRequiresToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		origin  string
		header  string
		trusted []string
		wantErr bool
	}{
		{name: "matching token", origin: "http://example.com", header: "tok", wantErr: false},
		{name: "trusted frontend origin", origin: "https://shop.example.com", header: "tok", trusted: []string{"https://shop.example.com"}},
		{name: "missing header", origin: "http://example.com", header: "", wantErr: true},
		{name: "mismatched token", origin: "http://example.com", header: "other", wantErr: true},
		{name: "foreign origin", origin: "https://evil.example.org", header: "tok", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
			req.AddCookie(&http.Cookie{Name: "__session", Value: "jwt"})
			req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
			req.Header.Set("Origin", tt.origin)
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			_, err := run(t, req, tt.trusted...)
			if tt.wantErr {
				var he *echo.HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, http.StatusForbidden, he.Code)
				return
			}
			require.NoError(t, err)
		})
	}
}
