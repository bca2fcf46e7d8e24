package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenantdesk-backend/internal/mediator"
)

type APIError struct {
	Code          string              `json:"code"`
	Message       string              `json:"message"`
	Details       map[string][]string `json:"details,omitempty"`
	CorrelationID string              `json:"correlation_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes a transport-level failure that never reached the
// mediator, such as a malformed body or path parameter.
func RespondError(c *gin.Context, code mediator.Code, message string, details map[string][]string) {
	c.JSON(StatusFor(code), ErrorEnvelope{
		Error: APIError{Code: string(code), Message: message, Details: details},
	})
}

// StatusFor maps a result code to its HTTP status.
func StatusFor(code mediator.Code) int {
	switch code {
	case mediator.CodeSuccess:
		return http.StatusOK
	case mediator.CodeValidationError:
		return http.StatusBadRequest
	case mediator.CodeUnauthorized:
		return http.StatusUnauthorized
	case mediator.CodeForbidden:
		return http.StatusForbidden
	case mediator.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
