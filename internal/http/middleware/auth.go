package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

type IdentityMiddleware struct {
	log    *logger.Logger
	tokens *identity.Tokens
}

func NewIdentityMiddleware(log *logger.Logger, tokens *identity.Tokens) *IdentityMiddleware {
	return &IdentityMiddleware{log: log.With("middleware", "IdentityMiddleware"), tokens: tokens}
}

// AttachIdentity resolves a bearer token into a principal on the request
// context. Requests are never rejected here: a missing or invalid token
// leaves the caller anonymous and the mediator decides what that means.
func (im *IdentityMiddleware) AttachIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" || im.tokens == nil {
			c.Next()
			return
		}
		p, err := im.tokens.Parse(token)
		if err != nil {
			im.log.Debug("bearer token rejected", "error", err, "path", c.Request.URL.Path)
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
