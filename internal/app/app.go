package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/tenantdesk-backend/internal/data/db"
	"github.com/yungbote/tenantdesk-backend/internal/data/repos"
	apphttp "github.com/yungbote/tenantdesk-backend/internal/http"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/observability"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    repos.Repos
	Metrics  Metrics
	Mediator *mediator.Mediator
	Servers  []*apphttp.Server

	shutdownOTel func(context.Context) error
}

// New builds the application from cfg. On error everything opened so far is
// released.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	built := false
	defer func() {
		if !built {
			a.Close(context.WithoutCancel(ctx))
		}
	}()

	var err error

	a.shutdownOTel = observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		Headers:     cfg.OtelHeaders,
		Exporter:    cfg.OtelExporter,
		SampleRatio: cfg.OtelSampleRatio,
	})

	a.DB, err = db.Open(log, db.Config{
		Driver:        cfg.DBDriver,
		DSN:           cfg.DBDSN,
		SlowThreshold: cfg.DBSlowThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err = db.AutoMigrateAll(a.DB); err != nil {
		return nil, fmt.Errorf("database automigrate: %w", err)
	}

	if a.Clients, err = wireClients(ctx, log, cfg); err != nil {
		return nil, err
	}
	a.Repos = repos.New(a.DB, log)
	if a.Metrics, err = wireMetrics(log, cfg); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	policies, err := loadPolicies(log, cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	tokens, err := wireTokens(log, cfg, policies)
	if err != nil {
		return nil, err
	}

	a.Mediator, err = wireMediator(log, mediatorDeps{
		Repos:         a.Repos,
		Tx:            db.NewTxRunner(a.DB),
		Cache:         a.Clients.cacheStore(log, cfg.CachePrefix),
		Metrics:       a.Metrics.Dispatch,
		SlowThreshold: cfg.SlowRequestThreshold,
		AuditStore:    cfg.AuditStoreEnabled,
	})
	if err != nil {
		return nil, err
	}

	handlers := wireHandlers(log, cfg, a.Mediator, tokens, a.ping)
	a.Servers = wireServers(log, cfg, handlers, tokens, a.Metrics)
	built = true
	return a, nil
}

func (a *App) ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Run serves every listener until ctx is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || len(a.Servers) == 0 {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range a.Servers {
		srv := srv
		g.Go(func() error {
			a.Log.Info("HTTP server listening", "addr", srv.Addr())
			if err := srv.Run(gctx); err != nil {
				return fmt.Errorf("serve %s: %w", srv.Addr(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close flushes telemetry and releases connections. It is safe to call on a
// partially built App.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	var errs []error
	if a.shutdownOTel != nil {
		errs = append(errs, a.shutdownOTel(ctx))
	}
	a.Clients.Close()
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if err := errors.Join(errs...); err != nil && a.Log != nil {
		a.Log.Warn("shutdown incomplete", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
