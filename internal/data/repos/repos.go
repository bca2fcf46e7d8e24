package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/tenantdesk-backend/internal/audit"
	"github.com/yungbote/tenantdesk-backend/internal/data/repos/items"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

type ItemRepo = items.ItemRepo

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return items.NewItemRepo(db, baseLog)
}

func NewAuditStore(db *gorm.DB, baseLog *logger.Logger) *audit.Store {
	return audit.NewStore(db, baseLog)
}

// Repos bundles every repository the service wires at startup.
type Repos struct {
	Items ItemRepo
	Audit *audit.Store
}

func New(db *gorm.DB, baseLog *logger.Logger) Repos {
	return Repos{
		Items: NewItemRepo(db, baseLog),
		Audit: NewAuditStore(db, baseLog),
	}
}
