// Package mediator dispatches typed requests to their registered handlers
// through a fixed pipeline and reports every outcome as a Result.
//
// The chain for every dispatch is
//
//	outer behaviors -> authorization -> validation -> inner behaviors -> handler
//
// Outer and inner behaviors run in registration order. Authorization always
// precedes validation, which always precedes the handler; a non-success
// Result from any step ends the chain. No error or panic escapes Dispatch.
package mediator

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenantdesk-backend/internal/authz"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
	"github.com/yungbote/tenantdesk-backend/internal/validation"
)

// IdentityFunc resolves the caller of a dispatch from its context.
type IdentityFunc func(ctx context.Context) authz.Identity

type Mediator struct {
	registry  *Registry
	log       *logger.Logger
	evaluator Evaluator
	identity  IdentityFunc
	outer     []Behavior
	inner     []Behavior
	now       func() time.Time
	newID     func() string

	chain []Behavior
}

type Option func(*Mediator)

func WithLogger(log *logger.Logger) Option {
	return func(m *Mediator) {
		if log != nil {
			m.log = log
		}
	}
}

// WithIdentity sets how the caller is resolved. The default is anonymous.
func WithIdentity(fn IdentityFunc) Option {
	return func(m *Mediator) {
		if fn != nil {
			m.identity = fn
		}
	}
}

func WithEvaluator(ev Evaluator) Option {
	return func(m *Mediator) {
		if ev != nil {
			m.evaluator = ev
		}
	}
}

// WithOuter appends behaviors that wrap authorization, e.g. audit or timing.
func WithOuter(bs ...Behavior) Option {
	return func(m *Mediator) { m.outer = appendBehaviors(m.outer, bs) }
}

// WithInner appends behaviors that run after validation, directly around the
// handler, e.g. caching.
func WithInner(bs ...Behavior) Option {
	return func(m *Mediator) { m.inner = appendBehaviors(m.inner, bs) }
}

func WithClock(now func() time.Time) Option {
	return func(m *Mediator) {
		if now != nil {
			m.now = now
		}
	}
}

func appendBehaviors(dst, src []Behavior) []Behavior {
	for _, b := range src {
		if b != nil {
			dst = append(dst, b)
		}
	}
	return dst
}

// New builds a mediator over reg and seals it.
func New(reg *Registry, opts ...Option) *Mediator {
	if reg == nil {
		reg = NewRegistry()
	}
	m := &Mediator{
		registry:  reg,
		log:       logger.Nop(),
		evaluator: authz.NewEvaluator(),
		identity:  func(context.Context) authz.Identity { return authz.Anonymous() },
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.log = m.log.With("component", "Mediator")

	m.chain = make([]Behavior, 0, len(m.outer)+len(m.inner)+2)
	m.chain = append(m.chain, m.outer...)
	m.chain = append(m.chain, authorizationStep{evaluator: m.evaluator}, validationStep{})
	m.chain = append(m.chain, m.inner...)

	reg.Seal()
	return m
}

// Send dispatches req and returns its typed Result. The response type must be
// given explicitly: mediator.Send[ItemView](ctx, m, GetItem{...}).
func Send[Resp any](ctx context.Context, m *Mediator, req Request[Resp]) Result[Resp] {
	if m == nil {
		return Fail[Resp](CodeServerError, msgServerError)
	}
	return Convert[Resp](m.Dispatch(ctx, req, reflect.TypeFor[Resp]()))
}

// Dispatch runs the pipeline for req, resolving its handler by req's runtime
// type and the given response type.
func (m *Mediator) Dispatch(ctx context.Context, req any, response reflect.Type) Result[any] {
	if ctx == nil {
		ctx = context.Background()
	}
	if isNilRequest(req) {
		return Invalid[any](validation.Errors{"request": {"request is required"}}).withMessage("request is required")
	}
	binding, ok := m.registry.Lookup(req, response)
	if !ok {
		m.log.Warn("no handler registered", "request", TypeName(req), "response", fmt.Sprint(response))
		return Fail[any](CodeNotFound, "no handler registered for "+TypeName(req))
	}

	call := &Call{
		ID:           m.newID(),
		Request:      addressable(binding.RequestType, req),
		RequestType:  binding.RequestType,
		ResponseType: binding.ResponseType,
		Binding:      binding,
		Identity:     m.resolveIdentity(ctx),
		StartedAt:    m.now(),
	}

	res := m.next(call, 0)(ctx)
	if res.Code() == CodeServerError {
		m.log.Ctx(ctx).Error("request failed",
			"request", call.RequestName(),
			"correlation_id", call.ID,
			"error", res.Err(),
		)
	}
	return res
}

func (m *Mediator) resolveIdentity(ctx context.Context) (id authz.Identity) {
	defer func() {
		if p := recover(); p != nil {
			m.log.Error("identity resolver panicked", "panic", p)
			id = authz.Anonymous()
		}
	}()
	if id = m.identity(ctx); id == nil {
		id = authz.Anonymous()
	}
	return id
}

// next returns the chain starting at step i; past the last behavior it is
// the handler itself.
func (m *Mediator) next(call *Call, i int) Next {
	if i >= len(m.chain) {
		return func(ctx context.Context) Result[any] {
			return m.guard(ctx, call, "handler", func(ctx context.Context) Result[any] {
				out, err := call.Binding.handle(ctx, call.Request)
				if err != nil {
					return classify(err)
				}
				return Success[any](out)
			})
		}
	}
	b := m.chain[i]
	return func(ctx context.Context) Result[any] {
		return m.guard(ctx, call, fmt.Sprintf("%T", b), func(ctx context.Context) Result[any] {
			return b.Handle(ctx, call, m.next(call, i+1))
		})
	}
}

// guard runs one step: it honors cancellation before the step starts,
// converts a panic into a server_error, and repairs malformed Results.
func (m *Mediator) guard(ctx context.Context, call *Call, step string, fn func(context.Context) Result[any]) (res Result[any]) {
	if err := ctx.Err(); err != nil {
		res = classify(err).withCorrelation(call.ID)
		call.record(res)
		return res
	}
	defer func() {
		if p := recover(); p != nil {
			m.log.Ctx(ctx).Error("pipeline step panicked",
				"step", step,
				"request", call.RequestName(),
				"correlation_id", call.ID,
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()),
			)
			res = Fail[any](CodeServerError, msgServerError).withCause(fmt.Errorf("panic in %s: %v", step, p))
		}
		if !res.code.Valid() {
			res = Fail[any](CodeServerError, msgServerError).withCause(res.err)
		}
		if res.code == CodeServerError && res.correlationID == "" {
			res = res.withCorrelation(call.ID)
		}
		call.record(res)
	}()
	return fn(ctx)
}
