package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-cacheable/cache"
)

// MemoryConfig returns the default configuration sized down for tests.
func MemoryConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Memory = cache.MemoryConfig{
		Capacity:           1000,
		NumShards:          4,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}
	return cfg
}

// NewMemoryFacade returns a facade over a small sturdyc store. The store is
// closed when the test ends.
func NewMemoryFacade(t testing.TB, opts ...cache.Option) *cache.Facade {
	t.Helper()

	f, err := cache.NewFromConfig(MemoryConfig(), opts...)
	if err != nil {
		t.Fatalf("failed to create memory facade: %v", err)
	}
	t.Cleanup(func() { _ = f.Close(context.Background()) })

	return f
}
