package http

import (
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/tenantdesk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tenantdesk-backend/internal/http/middleware"
	"github.com/yungbote/tenantdesk-backend/internal/observability"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log                *logger.Logger
	IdentityMiddleware *httpMW.IdentityMiddleware
	HTTPMetrics        *observability.HTTPMetrics
	CORSOrigins        []string
	RequestTimeout     time.Duration

	// TracingService enables otelgin server spans under this service name.
	TracingService string

	HealthHandler  *httpH.HealthHandler
	ItemHandler    *httpH.ItemHandler
	AuditHandler   *httpH.AuditHandler
	MetricsHandler nethttp.Handler

	// TokenHandler is only set when dev tokens are enabled.
	TokenHandler *httpH.TokenHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.HTTPMetrics))
	r.Use(httpMW.RequestLogger(cfg.Log, "/healthcheck", "/metrics"))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api")
	api.Use(httpMW.RequestTimeout(cfg.RequestTimeout))
	if cfg.IdentityMiddleware != nil {
		api.Use(cfg.IdentityMiddleware.AttachIdentity())
	}

	if cfg.TokenHandler != nil {
		api.POST("/dev/token", cfg.TokenHandler.IssueDevToken)
	}

	tenant := api.Group("/tenants/:tenantID")

	// Items
	if cfg.ItemHandler != nil {
		tenant.POST("/items", cfg.ItemHandler.CreateItem)
		tenant.GET("/items", cfg.ItemHandler.ListItems)
		tenant.GET("/items/:itemID", cfg.ItemHandler.GetItem)
		tenant.DELETE("/items/:itemID", cfg.ItemHandler.DeleteItem)
	}

	// Audit
	if cfg.AuditHandler != nil {
		tenant.GET("/audit", cfg.AuditHandler.ListEntries)
	}

	return r
}
