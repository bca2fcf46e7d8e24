package behaviors

import (
	"context"
	"time"

	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/observability"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

// Performance times the rest of the chain, feeds the dispatch metrics and
// warns about requests slower than the threshold. A zero threshold disables
// the warning.
type Performance struct {
	metrics   *observability.DispatchMetrics
	threshold time.Duration
	log       *logger.Logger
	now       func() time.Time
}

func NewPerformance(metrics *observability.DispatchMetrics, threshold time.Duration, log *logger.Logger) *Performance {
	return &Performance{metrics: metrics, threshold: threshold, log: log.With("behavior", "Performance"), now: time.Now}
}

func (p *Performance) Handle(ctx context.Context, call *mediator.Call, next mediator.Next) mediator.Result[any] {
	start := p.now()
	res := next(ctx)
	dur := p.now().Sub(start)

	p.metrics.Observe(call.RequestName(), string(res.Code()), dur)
	if p.threshold > 0 && dur > p.threshold {
		p.log.Warn("slow request",
			"request", call.RequestName(),
			"correlation_id", call.ID,
			"code", string(res.Code()),
			"duration_ms", dur.Milliseconds(),
			"threshold_ms", p.threshold.Milliseconds(),
		)
	}
	return res
}
