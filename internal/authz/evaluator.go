package authz

import (
	"context"
	"errors"
	"strings"
)

// Evaluator applies requirements to identities. The zero value is not
// usable; construct with NewEvaluator.
type Evaluator struct {
	ownerRole string
}

type EvaluatorOption func(*Evaluator)

// WithOwnerRole overrides the role that bypasses role checks.
func WithOwnerRole(role string) EvaluatorOption {
	return func(e *Evaluator) { e.ownerRole = strings.TrimSpace(role) }
}

func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{ownerRole: RoleTenantOwner}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns nil when id satisfies the scope and every requirement.
// Requests that are neither tenant-scoped nor carry requirements are open to
// anonymous callers. Errors other than *DeniedError come from the identity
// collaborator and should be treated as server failures.
func (e *Evaluator) Evaluate(ctx context.Context, id Identity, scope Scope, reqs []Requirement) error {
	if !scope.TenantScoped && len(reqs) == 0 {
		return nil
	}
	if id == nil || !id.IsAuthenticated() {
		return &DeniedError{Kind: ErrUnauthenticated}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if scope.TenantScoped {
		tenantID := strings.TrimSpace(scope.TenantID)
		if tenantID == "" {
			return forbidden("tenant id missing", nil, nil)
		}
		ok, err := id.CanAccessTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		if !ok {
			return forbidden("no access to tenant", nil, nil)
		}
	}

	roles := id.Roles()
	owner := e.ownerRole != "" && hasAnyRole(roles, []string{e.ownerRole})
	for i := range reqs {
		req := &reqs[i]
		if len(req.Roles) > 0 && !owner && !hasAnyRole(roles, req.Roles) {
			return forbidden("missing role", req, nil)
		}
		if req.Policy == "" {
			continue
		}
		ok, err := id.EvaluatePolicy(ctx, req.Policy)
		if errors.Is(err, ErrUnknownPolicy) {
			return forbidden("policy "+req.Policy+" is not defined", req, err)
		}
		if err != nil {
			return err
		}
		if !ok {
			return forbidden("policy "+req.Policy+" denied", req, nil)
		}
	}
	return nil
}

// Roles are compared case-insensitively.
func hasAnyRole(held, wanted []string) bool {
	for _, w := range wanted {
		for _, h := range held {
			if strings.EqualFold(strings.TrimSpace(h), w) {
				return true
			}
		}
	}
	return false
}

type anonymous struct{}

// Anonymous is the identity of a caller that presented no credentials.
func Anonymous() Identity { return anonymous{} }

func (anonymous) IsAuthenticated() bool { return false }
func (anonymous) Roles() []string       { return nil }
func (anonymous) EvaluatePolicy(context.Context, string) (bool, error) {
	return false, nil
}
func (anonymous) CanAccessTenant(context.Context, string) (bool, error) {
	return false, nil
}
