// Package audit records the outcome of every dispatched request.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

// Entry is one audited dispatch. Details holds the validation or denial
// details of a failure, if any.
type Entry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CorrelationID string         `gorm:"column:correlation_id;not null;index" json:"correlation_id"`
	RequestType   string         `gorm:"column:request_type;not null;index" json:"request_type"`
	UserID        string         `gorm:"column:user_id;index" json:"user_id,omitempty"`
	TenantID      string         `gorm:"column:tenant_id;index" json:"tenant_id,omitempty"`
	Code          string         `gorm:"column:code;not null;index" json:"code"`
	Message       string         `gorm:"column:message" json:"message,omitempty"`
	DurationMS    int64          `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
	OccurredAt    time.Time      `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	Details       datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
}

func (Entry) TableName() string { return "audit_entry" }

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

type RecorderFunc func(ctx context.Context, e Entry) error

func (f RecorderFunc) Record(ctx context.Context, e Entry) error { return f(ctx, e) }

// LogRecorder writes entries to the structured log.
type LogRecorder struct {
	log *logger.Logger
}

func NewLogRecorder(log *logger.Logger) *LogRecorder {
	return &LogRecorder{log: log.With("component", "AuditLog")}
}

func (r *LogRecorder) Record(_ context.Context, e Entry) error {
	kv := []interface{}{
		"correlation_id", e.CorrelationID,
		"request", e.RequestType,
		"code", e.Code,
		"duration_ms", e.DurationMS,
		"user_id", e.UserID,
		"tenant_id", e.TenantID,
	}
	if e.Message != "" {
		kv = append(kv, "message", e.Message)
	}
	if e.Code == "server_error" {
		r.log.Warn("audit", kv...)
		return nil
	}
	r.log.Info("audit", kv...)
	return nil
}

// Multi fans an entry out to every recorder and joins their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, e Entry) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
