package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-cacheable/cache"
	"github.com/goliatone/go-cacheable/internal/fieldmatch"
)

// BindingKeySuffix is appended to the model cache key for the distinct
// route binding entry.
const BindingKeySuffix = ".ForBinding"

// Resolver resolves a route value against field when the cached dataset has
// no match.
type Resolver[T any] func(ctx context.Context, value, field string) (T, bool, error)

// Binding configures route binding. The zero value resolves from the
// class-level entry without fallback.
type Binding[T any] struct {
	// DistinctData keeps the binding dataset in its own entry under
	// CacheKey()+".ForBinding" instead of reusing the class-level entry.
	DistinctData bool

	// Data produces the distinct binding dataset. A nil Data caches nothing,
	// so every lookup misses.
	Data cache.FetchFn[cache.Collection[T]]

	// TTL of the distinct binding entry. Zero means forever.
	TTL cache.TTL

	// Fallback enables Resolver when the cached dataset has no match.
	Fallback bool

	// Resolver defaults to a single row repository lookup on the field's column.
	Resolver Resolver[T]
}

// BindingCacheKey returns the key of the distinct binding entry.
func (m *Model[T]) BindingCacheKey() string {
	return m.key + BindingKeySuffix
}

func (m *Model[T]) usesDistinctBindingData() bool {
	return m.bindingEnabled && m.binding.DistinctData
}

// GetCachedBindingData returns the dataset route values are matched against.
func (m *Model[T]) GetCachedBindingData(ctx context.Context) (cache.Collection[T], error) {
	if m.usesDistinctBindingData() {
		return cache.Cached(ctx, m.facade, m.BindingCacheKey(), m.binding.Data, m.binding.TTL)
	}
	return m.GetCached(ctx)
}

// SyncBindingCache forgets and rebuilds the distinct binding entry. It is a
// no-op when binding reuses the class-level entry.
func (m *Model[T]) SyncBindingCache(ctx context.Context) error {
	if !m.usesDistinctBindingData() {
		return nil
	}
	if _, err := m.facade.Forget(ctx, m.BindingCacheKey()); err != nil {
		return err
	}
	_, err := m.GetCachedBindingData(ctx)
	return err
}

// ResolveRouteBinding returns the first cached record whose field equals
// value. An empty field uses the route key name. Without a match the
// fallback resolver runs when enabled; otherwise the record is absent.
func (m *Model[T]) ResolveRouteBinding(ctx context.Context, value, field string) (record T, found bool, err error) {
	if field == "" {
		field = m.routeKey
	}

	ctx, span := m.tracer.Start(ctx, "cacheable.ResolveRouteBinding",
		trace.WithAttributes(
			attribute.String("cacheable.model", m.name),
			attribute.String("cacheable.field", field),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer func() {
		span.SetAttributes(attribute.Bool("cacheable.found", found))
		m.endSpan(span, err)
	}()

	records, err := m.GetCachedBindingData(ctx)
	if err != nil {
		return record, false, err
	}

	if records.Len() > 0 {
		if match, ok := records.Where(field, value).First(); ok {
			span.SetAttributes(attribute.String("cacheable.source", "cache"))
			return match, true, nil
		}
	}

	if !m.bindingEnabled || !m.binding.Fallback {
		return record, false, nil
	}

	span.SetAttributes(attribute.String("cacheable.source", "fallback"))
	resolve := m.binding.Resolver
	if resolve == nil {
		resolve = m.resolveFromRepository
	}
	return resolve(ctx, value, field)
}

// resolveFromRepository looks the record up in the database with a
// WHERE <column> = ? LIMIT 1 query.
func (m *Model[T]) resolveFromRepository(ctx context.Context, value, field string) (T, bool, error) {
	var zero T
	if m.repo == nil {
		return zero, false, nil
	}

	column := fieldmatch.Column(m.typ, field)
	records, _, err := m.repo.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident(column), value).Limit(1)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("cacheable: resolve %s by %s: %w", m.name, column, err)
	}
	if len(records) == 0 {
		return zero, false, nil
	}
	return records[0], true, nil
}
