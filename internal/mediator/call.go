package mediator

import (
	"reflect"
	"strings"
	"time"

	"github.com/yungbote/tenantdesk-backend/internal/authz"
)

// Call is the per-dispatch state shared by every behavior of one chain. It is
// created at dispatch entry and must not be retained after the chain returns.
type Call struct {
	// ID correlates logs, audit entries and server failures of this dispatch.
	ID           string
	Request      any
	RequestType  reflect.Type
	ResponseType reflect.Type
	Binding      *Binding
	Identity     authz.Identity
	StartedAt    time.Time

	result    Result[any]
	hasResult bool
}

// RequestName is the request type name, e.g. "items.GetItem".
func (c *Call) RequestName() string { return typeName(c.RequestType) }

// Scope is the tenant scope of the request.
func (c *Call) Scope() authz.Scope {
	if ts, ok := c.Request.(TenantScoped); ok {
		return authz.Scope{TenantScoped: true, TenantID: strings.TrimSpace(ts.Tenant())}
	}
	return authz.Scope{}
}

// ResultSoFar is the Result most recently produced by a completed step, if any.
func (c *Call) ResultSoFar() (Result[any], bool) { return c.result, c.hasResult }

func (c *Call) record(res Result[any]) {
	c.result = res
	c.hasResult = true
}
