package app

import (
	"context"
	nethttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apphttp "github.com/yungbote/tenantdesk-backend/internal/http"
	httpH "github.com/yungbote/tenantdesk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tenantdesk-backend/internal/http/middleware"
	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/observability"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

// Metrics holds the prometheus registry and the collectors built on it. All
// fields are nil when metrics are disabled.
type Metrics struct {
	Registry *prometheus.Registry
	Dispatch *observability.DispatchMetrics
	HTTP     *observability.HTTPMetrics
}

func wireMetrics(log *logger.Logger, cfg Config) (Metrics, error) {
	if !cfg.MetricsEnabled {
		log.Info("Metrics disabled")
		return Metrics{}, nil
	}
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return Metrics{}, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return Metrics{}, err
	}
	dispatch, err := observability.NewDispatchMetrics(reg)
	if err != nil {
		return Metrics{}, err
	}
	httpMetrics, err := observability.NewHTTPMetrics(reg)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{Registry: reg, Dispatch: dispatch, HTTP: httpMetrics}, nil
}

func (m Metrics) handler() nethttp.Handler {
	if m.Registry == nil {
		return nil
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

type Handlers struct {
	Health *httpH.HealthHandler
	Items  *httpH.ItemHandler
	Audit  *httpH.AuditHandler
	Tokens *httpH.TokenHandler
}

func wireHandlers(log *logger.Logger, cfg Config, m *mediator.Mediator, tokens *identity.Tokens, ping func(ctx context.Context) error) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health: httpH.NewHealthHandler(ping),
		Items:  httpH.NewItemHandler(m),
		Audit:  httpH.NewAuditHandler(m),
	}
	if cfg.DevTokensEnabled {
		log.Warn("Dev token endpoint enabled")
		h.Tokens = httpH.NewTokenHandler(log, tokens)
	}
	return h
}

// wireServers builds the API server and, when METRICS_ADDR is set, a
// separate metrics listener. Otherwise /metrics is served by the API router.
func wireServers(log *logger.Logger, cfg Config, handlers Handlers, tokens *identity.Tokens, metrics Metrics) []*apphttp.Server {
	routerCfg := apphttp.RouterConfig{
		Log:                log.With("component", "HTTP"),
		IdentityMiddleware: httpMW.NewIdentityMiddleware(log, tokens),
		HTTPMetrics:        metrics.HTTP,
		CORSOrigins:        cfg.CORSOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		HealthHandler:      handlers.Health,
		ItemHandler:        handlers.Items,
		AuditHandler:       handlers.Audit,
		TokenHandler:       handlers.Tokens,
	}
	if cfg.OtelEnabled {
		routerCfg.TracingService = cfg.OtelServiceName
	}

	servers := make([]*apphttp.Server, 0, 2)
	mh := metrics.handler()
	if mh != nil && cfg.MetricsAddr != "" {
		servers = append(servers, apphttp.NewMetricsServer(cfg.MetricsAddr, mh))
	} else {
		routerCfg.MetricsHandler = mh
	}
	return append([]*apphttp.Server{apphttp.NewServer(cfg.HTTPAddr, routerCfg)}, servers...)
}
