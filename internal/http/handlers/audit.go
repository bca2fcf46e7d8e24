package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenantdesk-backend/internal/features/auditlog"
	"github.com/yungbote/tenantdesk-backend/internal/http/response"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
)

type AuditHandler struct {
	m *mediator.Mediator
}

func NewAuditHandler(m *mediator.Mediator) *AuditHandler {
	return &AuditHandler{m: m}
}

// GET /api/tenants/:tenantID/audit?code=&correlation_id=&limit=
func (h *AuditHandler) ListEntries(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			rejectInput(c, "limit", "Limit must be a whole number")
			return
		}
		limit = n
	}
	res := mediator.Send[[]auditlog.EntryView](c.Request.Context(), h.m, auditlog.ListEntries{
		TenantID:      c.Param("tenantID"),
		Code:          c.Query("code"),
		CorrelationID: c.Query("correlation_id"),
		Limit:         limit,
	})
	response.Write(c, res)
}
