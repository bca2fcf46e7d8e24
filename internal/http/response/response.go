package response

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenantdesk-backend/internal/mediator"
)

type DataEnvelope[T any] struct {
	Data T `json:"data"`
}

// Write renders a dispatch result. Successes are wrapped in {"data": ...},
// everything else in the error envelope.
func Write[T any](c *gin.Context, res mediator.Result[T]) {
	if res.OK() {
		c.JSON(StatusFor(res.Code()), DataEnvelope[T]{Data: res.Data()})
		return
	}
	c.JSON(StatusFor(res.Code()), ErrorEnvelope{
		Error: APIError{
			Code:          string(res.Code()),
			Message:       res.Message(),
			Details:       res.Details(),
			CorrelationID: res.CorrelationID(),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(StatusFor(mediator.CodeSuccess), DataEnvelope[any]{Data: payload})
}
