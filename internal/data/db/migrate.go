package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/tenantdesk-backend/internal/audit"
	"github.com/yungbote/tenantdesk-backend/internal/domain/catalog"
)

// Models lists every table the service owns.
func Models() []any {
	return []any{
		&catalog.Item{},
		&audit.Entry{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
