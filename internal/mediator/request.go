package mediator

import (
	"reflect"
	"strings"
	"time"
)

// Request is a typed operation whose successful outcome is an R. Request
// types embed Returns[R] to declare R:
//
//	type GetItem struct {
//		mediator.Returns[ItemView]
//		TenantID string
//		ID       uuid.UUID
//	}
type Request[R any] interface {
	responseType() R
}

// Returns binds a request type to its response type. It carries no data.
type Returns[R any] struct{}

func (Returns[R]) responseType() R {
	var zero R
	return zero
}

// TenantScoped is implemented by requests that target one tenant. The
// authorization step checks the caller's access to Tenant() before any
// declared requirement.
type TenantScoped interface {
	Tenant() string
}

// Cacheable marks a query whose successful result may be served from cache
// for CacheTTL. CacheKey must identify the result among requests of the same
// type and tenant.
type Cacheable interface {
	CacheKey() string
	CacheTTL() time.Duration
}

// Invalidation names a cache key, or a key prefix, to evict.
type Invalidation struct {
	Key    string
	Prefix bool
}

// CacheInvalidator is implemented by commands that make cached results
// stale. Invalidations are applied only after a successful handle.
type CacheInvalidator interface {
	InvalidatesCache() []Invalidation
}

const cacheNamespace = "mediator"

// CacheKey is the full cache key for a cacheable request:
// mediator:<type>:<tenant>:<CacheKey()>.
func CacheKey(req Cacheable) string {
	return CachePrefix(req) + req.CacheKey()
}

// CachePrefix is the key prefix shared by every cached result of req's type
// and tenant.
func CachePrefix(req any) string {
	tenant := ""
	if ts, ok := req.(TenantScoped); ok {
		tenant = strings.TrimSpace(ts.Tenant())
	}
	return cacheNamespace + ":" + TypeName(req) + ":" + tenant + ":"
}

// InvalidateKey evicts the cached result of exactly req.
func InvalidateKey(req Cacheable) Invalidation {
	return Invalidation{Key: CacheKey(req)}
}

// InvalidateAll evicts every cached result sharing req's type and tenant.
func InvalidateAll(req any) Invalidation {
	return Invalidation{Key: CachePrefix(req), Prefix: true}
}

// TypeName is the package-qualified name of req's concrete type, pointers
// dereferenced, e.g. "items.GetItem".
func TypeName(req any) string {
	if req == nil {
		return "<nil>"
	}
	return typeName(reflect.TypeOf(req))
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

// addressable copies req into a fresh *t so that methods declared on either
// receiver are visible to every step, however the caller passed it.
func addressable(t reflect.Type, req any) any {
	rv := reflect.ValueOf(req)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	p := reflect.New(t)
	p.Elem().Set(rv)
	return p.Interface()
}

func isNilRequest(req any) bool {
	if req == nil {
		return true
	}
	rv := reflect.ValueOf(req)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
