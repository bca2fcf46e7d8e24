package mediator

import (
	"context"
	"errors"

	"github.com/yungbote/tenantdesk-backend/internal/authz"
	"github.com/yungbote/tenantdesk-backend/internal/validation"
)

// Evaluator decides whether an identity satisfies a scope and requirements.
// *authz.Evaluator is the production implementation.
type Evaluator interface {
	Evaluate(ctx context.Context, id authz.Identity, scope authz.Scope, reqs []authz.Requirement) error
}

// authorizationStep enforces the tenant scope, the declared requirements and
// then the handler's Authorizer hook.
type authorizationStep struct {
	evaluator Evaluator
}

func (s authorizationStep) Handle(ctx context.Context, call *Call, next Next) Result[any] {
	if err := s.evaluator.Evaluate(ctx, call.Identity, call.Scope(), call.Binding.Requirements); err != nil {
		return denied(err)
	}
	if call.Binding.authorize != nil {
		if err := call.Binding.authorize(ctx, call, call.Request); err != nil {
			return denied(err)
		}
	}
	return next(ctx)
}

// denied classifies an authorization failure. Field details never leave this
// step, so a validation-shaped error reads as forbidden.
func denied(err error) Result[any] {
	res := classify(err)
	if res.Code() == CodeValidationError {
		return Fail[any](CodeForbidden, defaultMessage(CodeForbidden)).withCause(err)
	}
	return res
}

// validationStep runs the declarative rules of the request and the handler's
// Validator hook, reporting every violation at once.
type validationStep struct{}

func (validationStep) Handle(ctx context.Context, call *Call, next Next) Result[any] {
	errs := validation.Validate(call.Request)
	if call.Binding.validate != nil {
		if err := call.Binding.validate(ctx, call.Request); err != nil {
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				return classify(err)
			}
			errs = errs.Merge(verrs)
		}
	}
	if len(errs) > 0 {
		return Invalid[any](errs)
	}
	return next(ctx)
}
