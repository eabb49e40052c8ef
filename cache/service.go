package cache

import "context"

// FetchFn is the producer signature used by Cached, GetOr and PullOr when a
// value has to be computed from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Value lifts an already computed value into a FetchFn.
func Value[T any](v T) FetchFn[T] {
	return func(context.Context) (T, error) {
		return v, nil
	}
}
