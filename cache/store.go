package cache

import (
	"context"
	"time"
)

// Store is the key/value port the Facade delegates to. Implementations own
// storage, expiration and eviction; the Facade never inspects payloads
// beyond decoding them.
//
// Contract:
//   - Get returns (nil, false, nil) on a miss and a non-nil error only for
//     backend failures.
//   - Put stores value for ttl; a zero ttl means no expiration (subject to
//     the backend's own limits). ok=false means the backend refused the write.
//   - Forget reports whether an entry existed and was removed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)
	Forget(ctx context.Context, key string) (bool, error)
	Close(ctx context.Context) error
}

// NopStore misses every read and discards every write.
type NopStore struct{}

var _ Store = NopStore{}

func (NopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopStore) Put(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, nil
}
func (NopStore) Forget(context.Context, string) (bool, error) { return false, nil }
func (NopStore) Close(context.Context) error                  { return nil }
