package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

// Store keeps entries in the audit_entry table.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{db: db, log: baseLog.With("repo", "AuditStore")}
}

func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("audit store not initialized")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	TenantID      string
	CorrelationID string
	Code          string
	Limit         int
}

// List returns matching entries, newest first.
func (s *Store) List(ctx context.Context, tx *gorm.DB, f Filter) ([]*Entry, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	q := transaction.WithContext(ctx).Model(&Entry{})
	if v := strings.TrimSpace(f.TenantID); v != "" {
		q = q.Where("tenant_id = ?", v)
	}
	if v := strings.TrimSpace(f.CorrelationID); v != "" {
		q = q.Where("correlation_id = ?", v)
	}
	if v := strings.TrimSpace(f.Code); v != "" {
		q = q.Where("code = ?", v)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var out []*Entry
	if err := q.Order("occurred_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
