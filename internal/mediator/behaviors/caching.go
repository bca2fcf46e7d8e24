package behaviors

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/yungbote/tenantdesk-backend/internal/cache"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

// Caching serves successful results of mediator.Cacheable requests from
// store and evicts entries named by mediator.CacheInvalidator commands. Store
// failures are logged and fall through to the handler. Concurrent misses on
// one key all reach the handler.
type Caching struct {
	store cache.Store
	log   *logger.Logger
}

func NewCaching(store cache.Store, log *logger.Logger) *Caching {
	return &Caching{store: store, log: log.With("behavior", "Caching")}
}

func (c *Caching) Handle(ctx context.Context, call *mediator.Call, next mediator.Next) mediator.Result[any] {
	if inv, ok := call.Request.(mediator.CacheInvalidator); ok {
		res := next(ctx)
		if res.OK() {
			c.invalidate(context.WithoutCancel(ctx), call, inv.InvalidatesCache())
		}
		return res
	}

	req, ok := call.Request.(mediator.Cacheable)
	if !ok || req.CacheTTL() <= 0 {
		return next(ctx)
	}
	key := mediator.CacheKey(req)

	raw, hit, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.log.Warn("cache read failed", "key", key, "correlation_id", call.ID, "error", err)
	case hit:
		ptr := reflect.New(call.ResponseType)
		if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
			c.log.Warn("cache entry undecodable, evicting", "key", key, "error", err)
			_ = c.store.Delete(ctx, key)
			break
		}
		c.log.Debug("cache hit", "key", key)
		return mediator.Success[any](ptr.Elem().Interface())
	}

	res := next(ctx)
	if !res.OK() {
		return res
	}
	payload, err := json.Marshal(res.Data())
	if err != nil {
		c.log.Warn("cache encode failed", "key", key, "error", err)
		return res
	}
	if err := c.store.Set(context.WithoutCancel(ctx), key, payload, req.CacheTTL()); err != nil {
		c.log.Warn("cache write failed", "key", key, "correlation_id", call.ID, "error", err)
	}
	return res
}

func (c *Caching) invalidate(ctx context.Context, call *mediator.Call, invs []mediator.Invalidation) {
	for _, inv := range invs {
		if inv.Key == "" {
			continue
		}
		var err error
		if inv.Prefix {
			err = c.store.DeletePrefix(ctx, inv.Key)
		} else {
			err = c.store.Delete(ctx, inv.Key)
		}
		if err != nil {
			c.log.Warn("cache invalidation failed", "key", inv.Key, "prefix", inv.Prefix, "correlation_id", call.ID, "error", err)
		}
	}
}
