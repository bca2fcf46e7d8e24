package behaviors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/tenantdesk-backend/internal/audit"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

type subjecter interface {
	Subject() string
}

// Audit records one audit.Entry per dispatch once the rest of the chain has
// returned. Recorder failures are logged; the Result is returned unchanged.
type Audit struct {
	rec audit.Recorder
	log *logger.Logger
	now func() time.Time
}

func NewAudit(rec audit.Recorder, log *logger.Logger) *Audit {
	return &Audit{rec: rec, log: log.With("behavior", "Audit"), now: time.Now}
}

func (a *Audit) Handle(ctx context.Context, call *mediator.Call, next mediator.Next) mediator.Result[any] {
	start := a.now()
	res := next(ctx)

	entry := audit.Entry{
		ID:            uuid.New(),
		CorrelationID: call.ID,
		RequestType:   call.RequestName(),
		TenantID:      call.Scope().TenantID,
		Code:          string(res.Code()),
		Message:       res.Message(),
		DurationMS:    a.now().Sub(start).Milliseconds(),
		OccurredAt:    start.UTC(),
	}
	if s, ok := call.Identity.(subjecter); ok {
		entry.UserID = s.Subject()
	}
	if details := res.Details(); details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = datatypes.JSON(raw)
		}
	}

	if err := a.rec.Record(context.WithoutCancel(ctx), entry); err != nil {
		a.log.Warn("audit record failed", "correlation_id", call.ID, "request", entry.RequestType, "error", err)
	}
	return res
}
