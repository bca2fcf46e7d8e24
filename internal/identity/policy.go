package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/tenantdesk-backend/internal/authz"
)

// PolicyFunc decides a named policy for p.
type PolicyFunc func(ctx context.Context, p *Principal) (bool, error)

// PolicySet holds named policies. It is built at startup and read-only
// afterwards.
type PolicySet struct {
	policies map[string]PolicyFunc
}

var ErrDuplicatePolicy = errors.New("policy already registered")

func NewPolicySet() *PolicySet {
	return &PolicySet{policies: map[string]PolicyFunc{}}
}

func (s *PolicySet) Register(name string, fn PolicyFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("policy name and func required")
	}
	if _, exists := s.policies[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePolicy, name)
	}
	s.policies[name] = fn
	return nil
}

// Evaluate runs the named policy. Unknown names return authz.ErrUnknownPolicy.
func (s *PolicySet) Evaluate(ctx context.Context, name string, p *Principal) (bool, error) {
	if s == nil {
		return false, authz.ErrUnknownPolicy
	}
	fn, ok := s.policies[strings.TrimSpace(name)]
	if !ok {
		return false, fmt.Errorf("%w: %s", authz.ErrUnknownPolicy, name)
	}
	return fn(ctx, p)
}

func (s *PolicySet) Names() []string {
	out := make([]string, 0, len(s.policies))
	for name := range s.policies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PolicyDef is the declarative form of a policy. Every non-empty condition
// must hold.
type PolicyDef struct {
	AnyRole  []string          `yaml:"any_role"`
	AllRoles []string          `yaml:"all_roles"`
	Claims   map[string]string `yaml:"claims"`
}

type policyFile struct {
	Policies map[string]PolicyDef `yaml:"policies"`
}

// LoadPolicies reads policy definitions from YAML:
//
//	policies:
//	  items.delete:
//	    any_role: [Manager]
//	    claims:
//	      department: inventory
func LoadPolicies(r io.Reader) (*PolicySet, error) {
	var f policyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode policies: %w", err)
	}
	s := NewPolicySet()
	for name, def := range f.Policies {
		fn, err := def.compile()
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", name, err)
		}
		if err := s.Register(name, fn); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (d PolicyDef) compile() (PolicyFunc, error) {
	if len(d.AnyRole) == 0 && len(d.AllRoles) == 0 && len(d.Claims) == 0 {
		return nil, fmt.Errorf("no conditions")
	}
	return func(_ context.Context, p *Principal) (bool, error) {
		if !p.IsAuthenticated() {
			return false, nil
		}
		if len(d.AnyRole) > 0 {
			matched := false
			for _, r := range d.AnyRole {
				if p.HasRole(r) {
					matched = true
					break
				}
			}
			if !matched {
				return false, nil
			}
		}
		for _, r := range d.AllRoles {
			if !p.HasRole(r) {
				return false, nil
			}
		}
		for k, want := range d.Claims {
			if got, ok := p.Claim(k); !ok || got != want {
				return false, nil
			}
		}
		return true, nil
	}, nil
}
