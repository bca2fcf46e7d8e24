package items

import (
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenantdesk-backend/internal/domain/catalog"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/validation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200

	getItemTTL   = 60 * time.Second
	listItemsTTL = 30 * time.Second
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

type ItemView struct {
	ID          uuid.UUID `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func viewOf(it *catalog.Item) ItemView {
	return ItemView{
		ID:          it.ID,
		TenantID:    it.TenantID,
		Name:        it.Name,
		SKU:         it.SKU,
		Description: it.Description,
		CreatedBy:   it.CreatedBy,
		CreatedAt:   it.CreatedAt.UTC(),
	}
}

type Deleted struct {
	ID uuid.UUID `json:"id"`
}

// CreateItem adds an item to a tenant's catalog. Managers only.
type CreateItem struct {
	mediator.Returns[ItemView]
	TenantID    string `json:"-"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
}

func (c CreateItem) Tenant() string { return c.TenantID }

func (c CreateItem) Rules() []validation.FieldRules {
	return []validation.FieldRules{
		validation.Field("Name", c.Name, validation.Required(), validation.Length(1, 255)),
		validation.Field("SKU", c.SKU, validation.Required(), validation.MaxLength(64),
			validation.Format(skuPattern, "uppercase letters, digits or dashes")),
		validation.Field("Description", c.Description, validation.MaxLength(2000)),
	}
}

func (c CreateItem) InvalidatesCache() []mediator.Invalidation {
	return []mediator.Invalidation{mediator.InvalidateAll(ListItems{TenantID: c.TenantID})}
}

type GetItem struct {
	mediator.Returns[ItemView]
	TenantID string
	ID       uuid.UUID
}

func (g GetItem) Tenant() string { return g.TenantID }

func (g GetItem) Rules() []validation.FieldRules {
	return []validation.FieldRules{validation.Field("ID", g.ID, validation.Required())}
}

func (g GetItem) CacheKey() string        { return g.ID.String() }
func (g GetItem) CacheTTL() time.Duration { return getItemTTL }

type ListItems struct {
	mediator.Returns[[]ItemView]
	TenantID string
	Limit    int
}

func (l ListItems) Tenant() string { return l.TenantID }

func (l ListItems) Rules() []validation.FieldRules {
	return []validation.FieldRules{validation.Field("Limit", l.Limit, validation.Range(0, maxListLimit))}
}

func (l ListItems) limit() int {
	if l.Limit <= 0 {
		return defaultListLimit
	}
	return l.Limit
}

func (l ListItems) CacheKey() string        { return "limit=" + strconv.Itoa(l.limit()) }
func (l ListItems) CacheTTL() time.Duration { return listItemsTTL }

// DeleteItem removes an item. Requires the Manager role and the items.delete
// policy.
type DeleteItem struct {
	mediator.Returns[Deleted]
	TenantID string
	ID       uuid.UUID
}

func (d DeleteItem) Tenant() string { return d.TenantID }

func (d DeleteItem) Rules() []validation.FieldRules {
	return []validation.FieldRules{validation.Field("ID", d.ID, validation.Required())}
}

func (d DeleteItem) InvalidatesCache() []mediator.Invalidation {
	return []mediator.Invalidation{
		mediator.InvalidateKey(GetItem{TenantID: d.TenantID, ID: d.ID}),
		mediator.InvalidateAll(ListItems{TenantID: d.TenantID}),
	}
}
