package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tenantdesk-backend/internal/features/items"
	"github.com/yungbote/tenantdesk-backend/internal/http/response"
	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
)

const (
	msgValidationFailed = "validation failed"
	msgUnauthorized     = "authentication required"
)

type ItemHandler struct {
	m *mediator.Mediator
}

func NewItemHandler(m *mediator.Mediator) *ItemHandler {
	return &ItemHandler{m: m}
}

// POST /api/tenants/:tenantID/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var body struct {
		Name        string `json:"name"`
		SKU         string `json:"sku"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		rejectInput(c, "body", "request body must be a valid JSON object")
		return
	}
	res := mediator.Send[items.ItemView](c.Request.Context(), h.m, items.CreateItem{
		TenantID:    c.Param("tenantID"),
		Name:        body.Name,
		SKU:         body.SKU,
		Description: body.Description,
	})
	response.Write(c, res)
}

// GET /api/tenants/:tenantID/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			rejectInput(c, "limit", "Limit must be a whole number")
			return
		}
		limit = n
	}
	res := mediator.Send[[]items.ItemView](c.Request.Context(), h.m, items.ListItems{
		TenantID: c.Param("tenantID"),
		Limit:    limit,
	})
	response.Write(c, res)
}

// GET /api/tenants/:tenantID/items/:itemID
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	res := mediator.Send[items.ItemView](c.Request.Context(), h.m, items.GetItem{
		TenantID: c.Param("tenantID"),
		ID:       id,
	})
	response.Write(c, res)
}

// DELETE /api/tenants/:tenantID/items/:itemID
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	res := mediator.Send[items.Deleted](c.Request.Context(), h.m, items.DeleteItem{
		TenantID: c.Param("tenantID"),
		ID:       id,
	})
	response.Write(c, res)
}

func itemID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		rejectInput(c, "id", "ID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// rejectInput answers input that could not be decoded into a request. Field
// details go only to authenticated callers; anyone else gets a bare 401.
func rejectInput(c *gin.Context, field, msg string) {
	if p, ok := identity.FromContext(c.Request.Context()); !ok || !p.IsAuthenticated() {
		response.RespondError(c, mediator.CodeUnauthorized, msgUnauthorized, nil)
		return
	}
	response.RespondError(c, mediator.CodeValidationError, msgValidationFailed,
		map[string][]string{field: {msg}})
}
