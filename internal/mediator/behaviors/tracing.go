package behaviors

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/tenantdesk-backend/internal/mediator"
)

const tracerName = "github.com/yungbote/tenantdesk-backend/internal/mediator"

// Tracing opens one span per dispatch. server_error results mark the span
// as failed.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing uses tp, or the global provider when tp is nil.
func NewTracing(tp trace.TracerProvider) *Tracing {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing{tracer: tp.Tracer(tracerName)}
}

func (t *Tracing) Handle(ctx context.Context, call *mediator.Call, next mediator.Next) mediator.Result[any] {
	ctx, span := t.tracer.Start(ctx, "mediator.Send "+call.RequestName(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("request.type", call.RequestName()),
			attribute.String("mediator.correlation_id", call.ID),
		),
	)
	defer span.End()

	res := next(ctx)
	span.SetAttributes(attribute.String("result.code", string(res.Code())))
	if res.Code() == mediator.CodeServerError {
		if err := res.Err(); err != nil {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, res.Message())
	}
	return res
}
