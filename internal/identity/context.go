package identity

import (
	"context"

	"github.com/yungbote/tenantdesk-backend/internal/authz"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// Resolver returns the principal attached to ctx, or an anonymous one.
func Resolver(ctx context.Context) authz.Identity {
	if p, ok := FromContext(ctx); ok {
		return p
	}
	return Anonymous()
}
