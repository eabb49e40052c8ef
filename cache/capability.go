package cache

import (
	"context"
	"reflect"
)

// Cacheable is implemented by values that can store themselves in a Facade.
// Cache overwrites any entry already held under key.
type Cacheable interface {
	Cache(ctx context.Context, f *Facade, key string, ttl TTL) error
}

// CacheableModel is implemented by model types owning a class-level cache
// slot that is flushed and rebuilt on every lifecycle event.
type CacheableModel interface {
	Cacheable
	CacheKey() string
	SyncCache(ctx context.Context) error
	FlushCache(ctx context.Context) error
	IsAutoCacheSyncEnabled() bool
}

var (
	cacheableType      = reflect.TypeOf((*Cacheable)(nil)).Elem()
	cacheableModelType = reflect.TypeOf((*CacheableModel)(nil)).Elem()
)

// IsCacheableClass reports whether v, a value or a reflect.Type, implements
// Cacheable. For non-pointer types the pointer method set is considered too.
func IsCacheableClass(v any) bool {
	return implements(v, cacheableType)
}

// IsCacheableModel reports whether v, a value or a reflect.Type, implements
// CacheableModel.
func IsCacheableModel(v any) bool {
	return implements(v, cacheableModelType)
}

func implements(v any, iface reflect.Type) bool {
	if v == nil {
		return false
	}

	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return false
	}

	if t.Implements(iface) {
		return true
	}
	return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(iface)
}
