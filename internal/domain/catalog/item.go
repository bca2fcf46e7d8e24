package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item is a tenant-owned catalog entry. SKU is unique within a tenant.
type Item struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string         `gorm:"column:tenant_id;not null;uniqueIndex:idx_item_tenant_sku;index" json:"tenant_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	SKU         string         `gorm:"column:sku;not null;uniqueIndex:idx_item_tenant_sku" json:"sku"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	CreatedBy   string         `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Item) TableName() string { return "item" }

func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
