// Package identity turns bearer tokens into callers the authorization
// evaluator understands.
package identity

import (
	"context"
	"strings"

	"github.com/yungbote/tenantdesk-backend/internal/authz"
)

// Principal is an authenticated (or anonymous) caller. It implements
// authz.Identity. Principals are immutable once built.
type Principal struct {
	userID   string
	tenants  map[string]struct{}
	roles    []string
	claims   map[string]string
	policies *PolicySet
}

type PrincipalOption func(*Principal)

func InTenants(ids ...string) PrincipalOption {
	return func(p *Principal) {
		for _, id := range ids {
			if id = strings.TrimSpace(id); id != "" {
				p.tenants[id] = struct{}{}
			}
		}
	}
}

func WithRoles(roles ...string) PrincipalOption {
	return func(p *Principal) {
		for _, r := range roles {
			if r = strings.TrimSpace(r); r != "" {
				p.roles = append(p.roles, r)
			}
		}
	}
}

func WithClaims(claims map[string]string) PrincipalOption {
	return func(p *Principal) {
		for k, v := range claims {
			p.claims[k] = v
		}
	}
}

// WithPolicies attaches the named policies the principal is evaluated against.
func WithPolicies(ps *PolicySet) PrincipalOption {
	return func(p *Principal) { p.policies = ps }
}

// NewPrincipal builds a principal for userID. An empty userID yields an
// unauthenticated principal.
func NewPrincipal(userID string, opts ...PrincipalOption) *Principal {
	p := &Principal{
		userID:  strings.TrimSpace(userID),
		tenants: map[string]struct{}{},
		claims:  map[string]string{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Anonymous is a principal with no user, roles or tenants.
func Anonymous() *Principal { return NewPrincipal("") }

func (p *Principal) IsAuthenticated() bool { return p != nil && p.userID != "" }

// Subject is the user id, empty for anonymous callers.
func (p *Principal) Subject() string {
	if p == nil {
		return ""
	}
	return p.userID
}

func (p *Principal) Roles() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.roles...)
}

func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Tenants lists the tenant ids the principal belongs to, unordered.
func (p *Principal) Tenants() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.tenants))
	for id := range p.tenants {
		out = append(out, id)
	}
	return out
}

func (p *Principal) Claim(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.claims[key]
	return v, ok
}

func (p *Principal) Claims() map[string]string {
	if p == nil {
		return nil
	}
	out := make(map[string]string, len(p.claims))
	for k, v := range p.claims {
		out[k] = v
	}
	return out
}

func (p *Principal) CanAccessTenant(_ context.Context, tenantID string) (bool, error) {
	if !p.IsAuthenticated() {
		return false, nil
	}
	_, ok := p.tenants[strings.TrimSpace(tenantID)]
	return ok, nil
}

// EvaluatePolicy runs the named policy. Without an attached policy set every
// name is unknown.
func (p *Principal) EvaluatePolicy(ctx context.Context, name string) (bool, error) {
	if p == nil || p.policies == nil {
		return false, authz.ErrUnknownPolicy
	}
	return p.policies.Evaluate(ctx, name, p)
}

var _ authz.Identity = (*Principal)(nil)
