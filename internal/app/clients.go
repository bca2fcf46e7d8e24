package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tenantdesk-backend/internal/cache"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
	"github.com/yungbote/tenantdesk-backend/internal/platform/redis"
)

type Clients struct {
	Redis *goredis.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return Clients{}, nil
	}
	rdb, err := redis.NewClient(ctx, log, redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	return Clients{Redis: rdb}, nil
}

// cacheStore picks Redis when configured, else a process-local store.
func (c Clients) cacheStore(log *logger.Logger, prefix string) cache.Store {
	if c.Redis != nil {
		log.Info("Using redis cache store", "prefix", prefix)
		return cache.NewRedis(c.Redis, prefix)
	}
	log.Info("Using in-memory cache store")
	return cache.NewMemory()
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
