package di

import (
	"context"
	"errors"
	"fmt"
	"sort"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-cacheable/cache"
	"github.com/goliatone/go-cacheable/model"
	"github.com/goliatone/go-cacheable/repositorycache"
)

// ErrModelRegistered is returned when two models share a cache key.
var ErrModelRegistered = errors.New("cacheable: model already registered")

// Container owns the cache facade built from configuration and a registry of
// the cacheable models wired against it, keyed by cache key.
type Container struct {
	facade *cache.Facade
	config cache.Config
	models *xsync.MapOf[string, cache.CacheableModel]
}

// NewContainer validates config, builds the configured store and wraps it in
// a facade. opts are passed to the facade, e.g. cache.WithLogger.
func NewContainer(config cache.Config, opts ...cache.Option) (*Container, error) {
	facade, err := cache.NewFromConfig(config, opts...)
	if err != nil {
		return nil, err
	}

	return &Container{
		facade: facade,
		config: config,
		models: xsync.NewMapOf[string, cache.CacheableModel](),
	}, nil
}

// NewContainerWithDefaults creates a container over the default in-process store.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// Facade returns the shared cache facade.
func (c *Container) Facade() *cache.Facade {
	return c.facade
}

// Config returns a copy of the configuration the container was built from.
func (c *Container) Config() cache.Config {
	return c.config
}

// Close releases the cache store.
func (c *Container) Close(ctx context.Context) error {
	return c.facade.Close(ctx)
}

// Model returns the registered model with the given cache key.
func (c *Container) Model(key string) (cache.CacheableModel, bool) {
	return c.models.Load(key)
}

// Models returns the cache keys of every registered model, sorted.
func (c *Container) Models() []string {
	keys := make([]string, 0, c.models.Size())
	c.models.Range(func(key string, _ cache.CacheableModel) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)
	return keys
}

// Register adds m to the registry under its cache key.
func (c *Container) Register(m cache.CacheableModel) error {
	if _, loaded := c.models.LoadOrStore(m.CacheKey(), m); loaded {
		return fmt.Errorf("%w: %s", ErrModelRegistered, m.CacheKey())
	}
	return nil
}

// SyncAll flushes and rebuilds the cache of every registered model in key
// order, stopping at the first failure.
func (c *Container) SyncAll(ctx context.Context) error {
	for _, key := range c.Models() {
		m, ok := c.models.Load(key)
		if !ok {
			continue
		}
		if err := m.SyncCache(ctx); err != nil {
			return fmt.Errorf("sync %s: %w", key, err)
		}
	}
	return nil
}

// CachedModel is a model wired to the observed repository that drives its
// lifecycle sync. Writes must go through Observed for the cache to follow.
type CachedModel[T any] struct {
	*model.Model[T]
	Observed *repositorycache.ObservedRepository[T]
}

// NewCachedModel wraps base so writes dispatch lifecycle events, builds the
// cacheable model over it, boots auto sync and registers the model.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewCachedModel[User](container, baseUserRepository)
func NewCachedModel[T any](c *Container, base repository.Repository[T], opts ...model.Option[T]) (*CachedModel[T], error) {
	if base == nil {
		return nil, model.ErrNilRepository
	}
	observed := repositorycache.New(base, nil)

	m, err := model.New[T](c.facade, observed, opts...)
	if err != nil {
		return nil, err
	}
	m.Boot(observed.Events())

	if err := c.Register(m); err != nil {
		return nil, err
	}

	return &CachedModel[T]{Model: m, Observed: observed}, nil
}

// LookupModel returns the registered model for key as a *model.Model[T].
func LookupModel[T any](c *Container, key string) (*model.Model[T], bool) {
	m, ok := c.models.Load(key)
	if !ok {
		return nil, false
	}
	typed, ok := m.(*model.Model[T])
	return typed, ok
}
