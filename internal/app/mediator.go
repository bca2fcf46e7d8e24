package app

import (
	"fmt"
	"time"

	"github.com/yungbote/tenantdesk-backend/internal/audit"
	"github.com/yungbote/tenantdesk-backend/internal/cache"
	"github.com/yungbote/tenantdesk-backend/internal/data/db"
	"github.com/yungbote/tenantdesk-backend/internal/data/repos"
	"github.com/yungbote/tenantdesk-backend/internal/features/auditlog"
	"github.com/yungbote/tenantdesk-backend/internal/features/items"
	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/mediator/behaviors"
	"github.com/yungbote/tenantdesk-backend/internal/observability"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

type mediatorDeps struct {
	Repos         repos.Repos
	Tx            db.TxRunner
	Cache         cache.Store
	Metrics       *observability.DispatchMetrics
	SlowThreshold time.Duration
	AuditStore    bool
}

// wireMediator registers every feature and builds the fixed pipeline:
// tracing, audit and timing outside authorization; caching next to the
// handler.
func wireMediator(log *logger.Logger, deps mediatorDeps) (*mediator.Mediator, error) {
	log.Info("Wiring mediator...")
	reg := mediator.NewRegistry()
	if err := items.Register(reg, items.Deps{Items: deps.Repos.Items, Tx: deps.Tx, Log: log}); err != nil {
		return nil, fmt.Errorf("register items: %w", err)
	}
	if err := auditlog.Register(reg, deps.Repos.Audit); err != nil {
		return nil, fmt.Errorf("register audit log: %w", err)
	}

	recorders := audit.Multi{audit.NewLogRecorder(log)}
	if deps.AuditStore && deps.Repos.Audit != nil {
		recorders = append(recorders, deps.Repos.Audit)
	}

	m := mediator.New(reg,
		mediator.WithLogger(log),
		mediator.WithIdentity(identity.Resolver),
		mediator.WithOuter(
			behaviors.NewTracing(nil),
			behaviors.NewAudit(recorders, log),
			behaviors.NewPerformance(deps.Metrics, deps.SlowThreshold, log),
		),
		mediator.WithInner(behaviors.NewCaching(deps.Cache, log)),
	)
	log.Info("Mediator ready", "requests", reg.Names())
	return m, nil
}
