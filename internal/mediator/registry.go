package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync/atomic"

	"github.com/yungbote/tenantdesk-backend/internal/authz"
)

var (
	ErrDuplicateBinding = errors.New("handler already registered")
	ErrInvalidBinding   = errors.New("invalid handler binding")
	ErrRegistrySealed   = errors.New("registry is sealed")

	errRequestMismatch = errors.New("request does not match binding")
)

type bindingKey struct {
	request  reflect.Type
	response reflect.Type
}

// Binding is one registered handler with the requirements declared for its
// request type.
type Binding struct {
	RequestType  reflect.Type
	ResponseType reflect.Type
	Requirements []authz.Requirement

	handle    func(ctx context.Context, req any) (any, error)
	authorize func(ctx context.Context, call *Call, req any) error
	validate  func(ctx context.Context, req any) error
}

// Name is the request type name, e.g. "items.CreateItem".
func (b *Binding) Name() string { return typeName(b.RequestType) }

// RegisterOption configures a binding at registration time.
type RegisterOption func(*Binding)

// Requires attaches authorization requirements to the request type. Every
// requirement must pass; repeated options accumulate.
func Requires(reqs ...authz.Requirement) RegisterOption {
	return func(b *Binding) {
		b.Requirements = append(b.Requirements, reqs...)
	}
}

// Registry maps (request type, response type) pairs to handlers. It is
// populated at startup and sealed by New; Register is not safe for
// concurrent use, Lookup is once sealed.
type Registry struct {
	bindings map[bindingKey]*Binding
	sealed   atomic.Bool
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[bindingKey]*Binding)}
}

// Register binds h to the request type Req. Req must be a non-pointer type
// implementing Request[Resp]; dispatching either a Req or a *Req reaches h.
// Handlers implementing Authorizer[Req] or Validator[Req] have those hooks
// wired into the matching pipeline step.
func Register[Req any, Resp any](r *Registry, h Handler[Req, Resp], opts ...RegisterOption) error {
	if r == nil {
		return fmt.Errorf("%w: nil registry", ErrInvalidBinding)
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler", ErrInvalidBinding)
	}
	if r.sealed.Load() {
		return ErrRegistrySealed
	}

	reqType := reflect.TypeFor[Req]()
	respType := reflect.TypeFor[Resp]()
	switch reqType.Kind() {
	case reflect.Pointer, reflect.Interface:
		return fmt.Errorf("%w: request type %s must be a concrete value type", ErrInvalidBinding, reqType)
	}
	if !reqType.Implements(reflect.TypeFor[Request[Resp]]()) {
		return fmt.Errorf("%w: %s does not declare response %s", ErrInvalidBinding, reqType, respType)
	}

	key := bindingKey{request: reqType, response: respType}
	if _, exists := r.bindings[key]; exists {
		return fmt.Errorf("%w: %s -> %s", ErrDuplicateBinding, reqType, respType)
	}

	b := &Binding{
		RequestType:  reqType,
		ResponseType: respType,
		handle: func(ctx context.Context, req any) (any, error) {
			v, err := coerce[Req](req)
			if err != nil {
				return nil, err
			}
			return h.Handle(ctx, v)
		},
	}
	if a, ok := h.(Authorizer[Req]); ok {
		b.authorize = func(ctx context.Context, call *Call, req any) error {
			v, err := coerce[Req](req)
			if err != nil {
				return err
			}
			return a.Authorize(ctx, call, v)
		}
	}
	if vh, ok := h.(Validator[Req]); ok {
		b.validate = func(ctx context.Context, req any) error {
			v, err := coerce[Req](req)
			if err != nil {
				return err
			}
			return vh.Validate(ctx, v)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	r.bindings[key] = b
	return nil
}

// MustRegister is Register for startup wiring; it panics on error.
func MustRegister[Req any, Resp any](r *Registry, h Handler[Req, Resp], opts ...RegisterOption) {
	if err := Register(r, h, opts...); err != nil {
		panic(err)
	}
}

// Lookup resolves the binding for req's runtime type and the response type.
func (r *Registry) Lookup(req any, response reflect.Type) (*Binding, bool) {
	if r == nil || req == nil || response == nil {
		return nil, false
	}
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	b, ok := r.bindings[bindingKey{request: t, response: response}]
	return b, ok
}

// Seal stops further registration.
func (r *Registry) Seal() { r.sealed.Store(true) }

// Names lists the registered request types in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b.Name())
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int { return len(r.bindings) }

func coerce[Req any](req any) (Req, error) {
	switch v := req.(type) {
	case Req:
		return v, nil
	case *Req:
		if v != nil {
			return *v, nil
		}
	}
	var zero Req
	return zero, fmt.Errorf("%w: got %T", errRequestMismatch, req)
}
