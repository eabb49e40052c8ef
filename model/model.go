package model

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-cacheable/cache"
	"github.com/goliatone/go-cacheable/repositorycache"
)

const instrumentationName = "github.com/goliatone/go-cacheable/model"

var (
	// ErrNilFacade is returned by New without a cache facade.
	ErrNilFacade = errors.New("cacheable: model requires a cache facade")

	// ErrNilRepository is returned by New when neither a repository nor a
	// data producer is given.
	ErrNilRepository = errors.New("cacheable: model requires a repository or a data producer")
)

var _ cache.CacheableModel = (*Model[struct{}])(nil)

// Model owns the class-level cache slot of T: a single entry holding the
// whole dataset, flushed and rebuilt by SyncCache.
type Model[T any] struct {
	facade *cache.Facade
	repo   repository.Repository[T]
	typ    reflect.Type
	name   string

	key      string
	data     cache.FetchFn[cache.Collection[T]]
	ttl      cache.TTL
	autoSync *bool

	binding        Binding[T]
	bindingEnabled bool
	routeKey       string

	tracer trace.Tracer
}

// New creates the cache capability for T. repo feeds the default dataset and
// the default route binding fallback; it may be nil when WithDataForCaching
// is given.
func New[T any](f *cache.Facade, repo repository.Repository[T], opts ...Option[T]) (*Model[T], error) {
	if f == nil {
		return nil, ErrNilFacade
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()
	m := &Model[T]{
		facade:   f,
		repo:     repo,
		typ:      typ,
		name:     typeName(typ),
		key:      typeKey(typ),
		ttl:      cache.Forever(),
		routeKey: "id",
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.data == nil {
		if repo == nil {
			return nil, ErrNilRepository
		}
		m.data = m.allRecords
	}

	return m, nil
}

// typeKey returns the fully qualified name of t, dereferencing pointers.
func typeKey(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// CacheKey returns the key of the class-level entry.
func (m *Model[T]) CacheKey() string { return m.key }

// TTL returns the lifetime of the class-level entry.
func (m *Model[T]) TTL() cache.TTL { return m.ttl }

// Facade returns the cache facade the model writes to.
func (m *Model[T]) Facade() *cache.Facade { return m.facade }

// Repository returns the repository backing the default dataset.
func (m *Model[T]) Repository() repository.Repository[T] { return m.repo }

// DataForCaching computes the dataset stored in the class-level entry. The
// result is never nil so an empty table is cached rather than recomputed.
func (m *Model[T]) DataForCaching(ctx context.Context) (cache.Collection[T], error) {
	data, err := m.data(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = cache.NewCollection[T]()
	}
	return data, nil
}

type txKey struct{}

// ContextWithTx returns a copy of ctx carrying tx. The default dataset is
// read through tx while it is set.
func ContextWithTx(ctx context.Context, tx bun.IDB) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction set by ContextWithTx, or nil.
func TxFromContext(ctx context.Context) bun.IDB {
	tx, _ := ctx.Value(txKey{}).(bun.IDB)
	return tx
}

func (m *Model[T]) allRecords(ctx context.Context) (cache.Collection[T], error) {
	var (
		records []T
		err     error
	)
	if tx := TxFromContext(ctx); tx != nil {
		records, _, err = m.repo.ListTx(ctx, tx)
	} else {
		records, _, err = m.repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("cacheable: load %s records: %w", m.name, err)
	}
	return cache.NewCollection(records...), nil
}

// SetCache stores data in the class-level entry.
func (m *Model[T]) SetCache(ctx context.Context, data cache.Collection[T], ttl cache.TTL) error {
	if data == nil {
		data = cache.NewCollection[T]()
	}
	_, err := m.facade.Set(ctx, m.key, data, ttl)
	return err
}

// GetCached returns the class-level entry, computing and storing it on a miss.
func (m *Model[T]) GetCached(ctx context.Context) (cache.Collection[T], error) {
	return cache.Cached(ctx, m.facade, m.key, m.DataForCaching, m.ttl)
}

// FlushCache removes the class-level entry.
func (m *Model[T]) FlushCache(ctx context.Context) error {
	_, err := m.facade.Forget(ctx, m.key)
	return err
}

// SyncCache flushes the class-level entry and stores a fresh snapshot of the
// dataset. With route binding enabled the binding entry is synced too.
func (m *Model[T]) SyncCache(ctx context.Context) (err error) {
	ctx, span := m.tracer.Start(ctx, "cacheable.SyncCache",
		trace.WithAttributes(
			attribute.String("cacheable.model", m.name),
			attribute.String("cacheable.key", m.key),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer func() {
		m.endSpan(span, err)
		result := "ok"
		if err != nil {
			result = "error"
			m.facade.Logger().Error("model cache sync failed", cache.Fields{"model": m.name, "key": m.key, "error": err.Error()})
		}
		cache.ModelSyncs.WithLabelValues(m.name, result).Inc()
	}()

	if err = m.FlushCache(ctx); err != nil {
		return err
	}

	data, err := m.DataForCaching(ctx)
	if err != nil {
		return err
	}
	if err = m.SetCache(ctx, data, m.ttl); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("cacheable.records", data.Len()))

	if m.bindingEnabled {
		if err = m.SyncBindingCache(ctx); err != nil {
			return err
		}
	}

	m.facade.Logger().Debug("model cache synced", cache.Fields{"model": m.name, "key": m.key, "records": data.Len()})
	return nil
}

// IsAutoCacheSyncEnabled reports whether lifecycle events sync the cache.
// WithAutoSync wins over the auto_model_caching setting.
func (m *Model[T]) IsAutoCacheSyncEnabled() bool {
	if m.autoSync != nil {
		return *m.autoSync
	}
	return m.facade.AutoModelCaching()
}

// Cache stores the current dataset under an arbitrary key of f.
func (m *Model[T]) Cache(ctx context.Context, f *cache.Facade, key string, ttl cache.TTL) error {
	data, err := m.DataForCaching(ctx)
	if err != nil {
		return err
	}
	return data.Cache(ctx, f, key, ttl)
}

// Boot subscribes SyncCache to the created, updated and deleted events when
// auto sync is enabled, and reports whether it did.
//
// Events raised inside a transaction rebuild the snapshot through that
// transaction. If it is then rolled back the entry holds uncommitted rows
// until the next sync; ObservedRepository.RunInTx syncs after commit instead.
func (m *Model[T]) Boot(events *repositorycache.Events[T]) bool {
	if events == nil || !m.IsAutoCacheSyncEnabled() {
		return false
	}

	sync := func(ctx context.Context, e repositorycache.Event[T]) error {
		return m.SyncCache(ContextWithTx(ctx, e.Tx))
	}
	events.On(repositorycache.EventCreated, sync)
	events.On(repositorycache.EventUpdated, sync)
	events.On(repositorycache.EventDeleted, sync)

	return true
}

func (m *Model[T]) endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
