// Package ctxutil carries request-scoped ids through context.Context.
package ctxutil

import "context"

type traceKey struct{}

// Trace identifies one inbound request and the distributed trace it joined.
type Trace struct {
	TraceID   string
	RequestID string
}

func (t Trace) IsZero() bool { return t.TraceID == "" && t.RequestID == "" }

// WithTrace stores t on ctx. A nil ctx is treated as context.Background().
func WithTrace(ctx context.Context, t Trace) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFrom returns the ids stored by WithTrace.
func TraceFrom(ctx context.Context) (Trace, bool) {
	if ctx == nil {
		return Trace{}, false
	}
	t, ok := ctx.Value(traceKey{}).(Trace)
	return t, ok
}
