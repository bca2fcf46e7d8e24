// Package authz evaluates declarative authorization requirements against a
// caller's identity.
//
// Requirements are plain values bound to a request type when its handler is
// registered; nothing here inspects request types at call time. Evaluation
// order is fixed: authentication, then the tenant-scope check (for
// tenant-scoped requests), then each requirement in declaration order.
// A missing identity fails with ErrUnauthenticated; an identity that lacks
// rights fails with ErrForbidden.
package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RoleTenantOwner bypasses role checks (never policy checks).
const RoleTenantOwner = "TenantOwner"

var (
	// ErrUnauthenticated reports a caller with no identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden reports an authenticated caller without sufficient rights.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownPolicy is returned by identities asked to evaluate a policy
	// that was never defined. The evaluator treats it as a denial.
	ErrUnknownPolicy = errors.New("unknown authorization policy")
)

// Identity is the read-only view of a caller that the evaluator needs.
type Identity interface {
	IsAuthenticated() bool
	Roles() []string
	EvaluatePolicy(ctx context.Context, policy string) (bool, error)
	CanAccessTenant(ctx context.Context, tenantID string) (bool, error)
}

// Requirement is one mandatory clause. Roles passes when the caller holds
// any listed role; Policy passes when the named policy evaluates true. A
// zero Requirement only demands authentication.
type Requirement struct {
	Roles  []string
	Policy string
}

// Roles requires any one of roles.
func Roles(roles ...string) Requirement {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return Requirement{Roles: out}
}

// Policy requires the named policy.
func Policy(name string) Requirement {
	return Requirement{Policy: strings.TrimSpace(name)}
}

// Authenticated requires only an authenticated caller.
func Authenticated() Requirement { return Requirement{} }

func (r Requirement) String() string {
	parts := make([]string, 0, 2)
	if len(r.Roles) > 0 {
		parts = append(parts, "roles="+strings.Join(r.Roles, "|"))
	}
	if r.Policy != "" {
		parts = append(parts, "policy="+r.Policy)
	}
	if len(parts) == 0 {
		return "authenticated"
	}
	return strings.Join(parts, " ")
}

// Scope describes the tenant a request targets, if any.
type Scope struct {
	TenantScoped bool
	TenantID     string
}

// DeniedError carries the reason for a denial. It matches ErrUnauthenticated
// or ErrForbidden through errors.Is.
type DeniedError struct {
	Kind        error
	Reason      string
	Requirement *Requirement
	Cause       error
}

func (e *DeniedError) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Reason)
}

func (e *DeniedError) Is(target error) bool { return target == e.Kind }

func (e *DeniedError) Unwrap() error { return e.Cause }

func forbidden(reason string, req *Requirement, cause error) error {
	return &DeniedError{Kind: ErrForbidden, Reason: reason, Requirement: req, Cause: cause}
}
