package tokens

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims are the claims the identity provider puts in its session token.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	key    any
	method jwt.SigningMethod
}

func NewRSAVerifier(pemKey string) (*Verifier, error) {
	pemKey = strings.ReplaceAll(pemKey, `\n`, "\n")
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("parse identity public key: %w", err)
	}
	return &Verifier{key: key, method: jwt.SigningMethodRS256}, nil
}

func NewHMACVerifier(secret []byte) *Verifier {
	return &Verifier{key: secret, method: jwt.SigningMethodHS256}
}

func (v *Verifier) Parse(raw string) (*SessionClaims, error) {
	var claims SessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{v.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return &claims, nil
}

// SignHS256 issues a session token. Used by tests and local tooling standing in for the identity provider.
func SignHS256(secret []byte, claims SessionClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
