package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenantdesk-backend/internal/http/response"
	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
	"github.com/yungbote/tenantdesk-backend/internal/validation"
)

// TokenHandler mints signed tokens for local development. It trusts the
// caller completely and must never be routed in production.
type TokenHandler struct {
	log    *logger.Logger
	tokens *identity.Tokens
}

func NewTokenHandler(log *logger.Logger, tokens *identity.Tokens) *TokenHandler {
	return &TokenHandler{log: log.With("handler", "TokenHandler"), tokens: tokens}
}

type devTokenRequest struct {
	UserID  string            `json:"user_id"`
	Tenants []string          `json:"tenants"`
	Roles   []string          `json:"roles"`
	Claims  map[string]string `json:"claims"`
}

func (r devTokenRequest) Rules() []validation.FieldRules {
	return []validation.FieldRules{
		validation.Field("user_id", r.UserID, validation.Required(), validation.MaxLength(128)),
	}
}

// POST /api/dev/token
func (h *TokenHandler) IssueDevToken(c *gin.Context) {
	var req devTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, mediator.CodeValidationError, msgValidationFailed,
			map[string][]string{"body": {"request body must be a valid JSON object"}})
		return
	}
	if errs := validation.Validate(req); errs != nil {
		response.RespondError(c, mediator.CodeValidationError, msgValidationFailed, errs)
		return
	}
	p := identity.NewPrincipal(req.UserID,
		identity.InTenants(req.Tenants...),
		identity.WithRoles(req.Roles...),
		identity.WithClaims(req.Claims),
	)
	signed, exp, err := h.tokens.Issue(p)
	if err != nil {
		h.log.Error("issue dev token failed", "error", err)
		response.RespondError(c, mediator.CodeServerError, "internal server error", nil)
		return
	}
	h.log.Warn("dev token issued", "user_id", req.UserID)
	response.RespondOK(c, gin.H{
		"access_token": signed,
		"expires_at":   exp.UTC().Format(time.RFC3339),
		"expires_in":   int(h.tokens.TTL().Seconds()),
	})
}
