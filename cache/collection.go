package cache

import (
	"context"
	"reflect"

	"github.com/goliatone/go-cacheable/internal/fieldmatch"
)

// Collection is a result set that can be cached as a single entry.
type Collection[T any] []T

var _ Cacheable = Collection[struct{}]{}

// NewCollection returns a non-nil collection holding items.
func NewCollection[T any](items ...T) Collection[T] {
	return append(make(Collection[T], 0, len(items)), items...)
}

// Cache stores the whole collection under key.
func (c Collection[T]) Cache(ctx context.Context, f *Facade, key string, ttl TTL) error {
	_, err := f.Set(ctx, key, c, ttl)
	return err
}

// Len returns the number of items.
func (c Collection[T]) Len() int { return len(c) }

// All returns the items as a plain slice.
func (c Collection[T]) All() []T { return []T(c) }

// Where returns the items whose field loosely equals value. field may be a
// Go field name, a bun/json/msgpack tag name or a snake_case column.
func (c Collection[T]) Where(field string, value any) Collection[T] {
	out := make(Collection[T], 0)
	for _, item := range c {
		fv, ok := fieldmatch.Field(reflect.ValueOf(item), field)
		if ok && fieldmatch.Equal(fv, value) {
			out = append(out, item)
		}
	}
	return out
}

// First returns the first item, if any.
func (c Collection[T]) First() (T, bool) {
	if len(c) == 0 {
		var zero T
		return zero, false
	}
	return c[0], true
}
