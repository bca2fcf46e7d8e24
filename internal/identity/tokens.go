package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the JWT payload of an access token.
type TokenClaims struct {
	Tenants []string          `json:"tenants,omitempty"`
	Roles   []string          `json:"roles,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	policies *PolicySet
	now      func() time.Time
}

type TokensOption func(*Tokens)

func WithIssuer(iss string) TokensOption {
	return func(t *Tokens) { t.issuer = strings.TrimSpace(iss) }
}

// WithTokenPolicies attaches ps to every principal Parse returns.
func WithTokenPolicies(ps *PolicySet) TokensOption {
	return func(t *Tokens) { t.policies = ps }
}

func WithTokenClock(now func() time.Time) TokensOption {
	return func(t *Tokens) {
		if now != nil {
			t.now = now
		}
	}
}

func NewTokens(secret string, ttl time.Duration, opts ...TokensOption) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	t := &Tokens{secret: []byte(secret), ttl: ttl, issuer: "tenantdesk", now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs an access token for p.
func (t *Tokens) Issue(p *Principal) (string, time.Time, error) {
	if !p.IsAuthenticated() {
		return "", time.Time{}, fmt.Errorf("cannot issue token for anonymous principal")
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := TokenClaims{
		Tenants: p.Tenants(),
		Roles:   p.Roles(),
		Attrs:   p.Claims(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies token and rebuilds its principal.
func (t *Tokens) Parse(token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	keyFunc := func(*jwt.Token) (interface{}, error) { return t.secret, nil }
	var claims TokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return NewPrincipal(claims.Subject,
		InTenants(claims.Tenants...),
		WithRoles(claims.Roles...),
		WithClaims(claims.Attrs),
		WithPolicies(t.policies),
	), nil
}
