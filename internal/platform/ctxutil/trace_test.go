package ctxutil

import (
	"context"
	"testing"
)

func TestTraceRoundTrip(t *testing.T) {
	if _, ok := TraceFrom(context.Background()); ok {
		t.Fatalf("TraceFrom: empty context must report no trace")
	}
	ctx := WithTrace(nil, Trace{TraceID: "t", RequestID: "r"})
	got, ok := TraceFrom(ctx)
	if !ok || got.TraceID != "t" || got.RequestID != "r" || got.IsZero() {
		t.Fatalf("TraceFrom: got=%+v ok=%v", got, ok)
	}
	if !(Trace{}).IsZero() {
		t.Fatalf("IsZero: zero value must be zero")
	}
}
