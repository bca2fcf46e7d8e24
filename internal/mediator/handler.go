package mediator

import "context"

// Handler runs the business logic of one request type. Returned errors are
// classified into the result taxonomy; see Error.
type Handler[Req any, Resp any] interface {
	Handle(ctx context.Context, req Req) (Resp, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[Req any, Resp any] func(ctx context.Context, req Req) (Resp, error)

func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

// Authorizer is an optional handler hook run after the declared requirements
// pass, for checks that need the request payload (ownership, state). It runs
// before any validation.
type Authorizer[Req any] interface {
	Authorize(ctx context.Context, call *Call, req Req) error
}

// Validator is an optional handler hook for rules that need more than the
// request's own fields. Returned validation.Errors are merged with the
// declarative rule violations; any other error is classified as usual.
type Validator[Req any] interface {
	Validate(ctx context.Context, req Req) error
}
