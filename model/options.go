package model

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-cacheable/cache"
)

// Option configures a Model.
type Option[T any] func(*Model[T])

// WithCacheKey overrides the class-level cache key. Defaults to the fully
// qualified type name of T.
func WithCacheKey[T any](key string) Option[T] {
	return func(m *Model[T]) {
		if key != "" {
			m.key = key
		}
	}
}

// WithDataForCaching replaces the producer of the cached dataset. Defaults to
// every record returned by the repository's List.
func WithDataForCaching[T any](fetch cache.FetchFn[cache.Collection[T]]) Option[T] {
	return func(m *Model[T]) {
		if fetch != nil {
			m.data = fetch
		}
	}
}

// WithTTL sets the lifetime of the class-level entry. Defaults to forever.
func WithTTL[T any](ttl cache.TTL) Option[T] {
	return func(m *Model[T]) {
		m.ttl = ttl
	}
}

// WithAutoSync forces lifecycle sync on or off regardless of the
// auto_model_caching setting.
func WithAutoSync[T any](enabled bool) Option[T] {
	return func(m *Model[T]) {
		m.autoSync = &enabled
	}
}

// WithRouteBinding enables the route binding cache.
func WithRouteBinding[T any](b Binding[T]) Option[T] {
	return func(m *Model[T]) {
		m.binding = b
		m.bindingEnabled = true
	}
}

// WithRouteKeyName sets the field matched when ResolveRouteBinding gets no
// field. Defaults to "id".
func WithRouteKeyName[T any](field string) Option[T] {
	return func(m *Model[T]) {
		if field != "" {
			m.routeKey = field
		}
	}
}

// WithTracerProvider sets the provider spans are started from. Defaults to
// the global otel provider.
func WithTracerProvider[T any](tp trace.TracerProvider) Option[T] {
	return func(m *Model[T]) {
		if tp != nil {
			m.tracer = tp.Tracer(instrumentationName)
		}
	}
}
