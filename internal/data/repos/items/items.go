package items

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/tenantdesk-backend/internal/domain/catalog"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

var (
	ErrNotFound     = errors.New("item not found")
	ErrDuplicateSKU = errors.New("item sku already exists")
)

type ItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, item *catalog.Item) (*catalog.Item, error)
	GetByID(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*catalog.Item, error)
	List(ctx context.Context, tx *gorm.DB, tenantID string, limit int) ([]*catalog.Item, error)
	SKUExists(ctx context.Context, tx *gorm.DB, tenantID, sku string) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) error
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	repoLog := baseLog.With("repo", "ItemRepo")
	return &itemRepo{db: db, log: repoLog}
}

func (r *itemRepo) Create(ctx context.Context, tx *gorm.DB, item *catalog.Item) (*catalog.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if item == nil {
		return nil, errors.New("item required")
	}
	if err := transaction.WithContext(ctx).Create(item).Error; err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

func (r *itemRepo) GetByID(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*catalog.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var item catalog.Item
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

func (r *itemRepo) List(ctx context.Context, tx *gorm.DB, tenantID string, limit int) ([]*catalog.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*catalog.Item
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC, id ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, mapError(err)
	}
	return results, nil
}

func (r *itemRepo) SKUExists(ctx context.Context, tx *gorm.DB, tenantID, sku string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("tenant_id = ? AND sku = ?", tenantID, strings.TrimSpace(sku)).
		Count(&count).Error; err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// Delete soft-deletes the item. A missing item returns ErrNotFound.
func (r *itemRepo) Delete(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&catalog.Item{})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapError maps driver failures onto the repo sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Join(ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrDuplicateSKU, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errors.Join(ErrDuplicateSKU, err) // unique_violation
	}
	return err
}
