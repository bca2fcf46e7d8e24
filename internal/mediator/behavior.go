package mediator

import "context"

// Next runs the remainder of the chain.
type Next func(ctx context.Context) Result[any]

// Behavior wraps the rest of the chain with one cross-cutting concern. A
// behavior short-circuits by returning without calling next. Behaviors are
// shared by concurrent dispatches and must keep per-call state on the stack
// or in the Call.
type Behavior interface {
	Handle(ctx context.Context, call *Call, next Next) Result[any]
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(ctx context.Context, call *Call, next Next) Result[any]

func (f BehaviorFunc) Handle(ctx context.Context, call *Call, next Next) Result[any] {
	return f(ctx, call, next)
}
