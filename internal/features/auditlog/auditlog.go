// Package auditlog exposes a tenant's recorded dispatch outcomes.
package auditlog

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/tenantdesk-backend/internal/audit"
	"github.com/yungbote/tenantdesk-backend/internal/authz"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/validation"
)

const (
	PolicyReadAudit = "audit.read"

	defaultLimit = 50
	maxLimit     = 500
)

var knownCodes = []string{
	string(mediator.CodeSuccess),
	string(mediator.CodeValidationError),
	string(mediator.CodeUnauthorized),
	string(mediator.CodeForbidden),
	string(mediator.CodeNotFound),
	string(mediator.CodeServerError),
}

// Lister is the read side of the audit store.
type Lister interface {
	List(ctx context.Context, tx *gorm.DB, f audit.Filter) ([]*audit.Entry, error)
}

type EntryView struct {
	CorrelationID string    `json:"correlation_id"`
	RequestType   string    `json:"request_type"`
	UserID        string    `json:"user_id,omitempty"`
	Code          string    `json:"code"`
	Message       string    `json:"message,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ListEntries returns a tenant's audit trail, newest first.
type ListEntries struct {
	mediator.Returns[[]EntryView]
	TenantID      string
	Code          string
	CorrelationID string
	Limit         int
}

func (l ListEntries) Tenant() string { return l.TenantID }

func (l ListEntries) Rules() []validation.FieldRules {
	return []validation.FieldRules{
		validation.Field("Code", l.Code, validation.OneOf(knownCodes...)),
		validation.Field("CorrelationID", l.CorrelationID, validation.MaxLength(128)),
		validation.Field("Limit", l.Limit, validation.Range(0, maxLimit)),
	}
}

type listHandler struct {
	store Lister
}

func (h listHandler) Handle(ctx context.Context, req ListEntries) ([]EntryView, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	entries, err := h.store.List(ctx, nil, audit.Filter{
		TenantID:      req.TenantID,
		CorrelationID: req.CorrelationID,
		Code:          req.Code,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryView{
			CorrelationID: e.CorrelationID,
			RequestType:   e.RequestType,
			UserID:        e.UserID,
			Code:          e.Code,
			Message:       e.Message,
			DurationMS:    e.DurationMS,
			OccurredAt:    e.OccurredAt.UTC(),
		})
	}
	return out, nil
}

// Register binds ListEntries behind the audit.read policy.
func Register(reg *mediator.Registry, store Lister) error {
	return mediator.Register[ListEntries, []EntryView](reg, listHandler{store: store},
		mediator.Requires(authz.Policy(PolicyReadAudit)))
}
