package cacheinfra

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoStore keeps entries in a ristretto cache. Cost is the encoded size.
type RistrettoStore struct {
	cache *ristretto.Cache
}

// NewRistrettoStore creates a ristretto backed store.
func NewRistrettoStore(cfg RistrettoConfig) (*RistrettoStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	return &RistrettoStore{cache: c}, nil
}

// Get returns the entry stored under key.
func (s *RistrettoStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		s.cache.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Put waits for ristretto's write buffer so a following Get observes the value.
// It returns false when the admission policy dropped the entry.
func (s *RistrettoStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	ok := s.cache.SetWithTTL(key, append([]byte(nil), value...), int64(len(value))+1, ttl)
	s.cache.Wait()
	return ok, nil
}

// Forget removes key and reports whether it was present.
func (s *RistrettoStore) Forget(ctx context.Context, key string) (bool, error) {
	_, existed := s.cache.Get(key)
	s.cache.Del(key)
	s.cache.Wait()
	return existed, nil
}

// Close stops ristretto's background goroutines.
func (s *RistrettoStore) Close(context.Context) error {
	s.cache.Wait()
	s.cache.Close()
	return nil
}

// Metrics exposes ristretto's counters when enabled in the config.
func (s *RistrettoStore) Metrics() *ristretto.Metrics { return s.cache.Metrics }
