package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// memoryEntry carries the encoded value plus its own deadline, since sturdyc
// only knows the client wide TTL.
type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore wraps a sturdyc client as an in-process key/value store.
type MemoryStore struct {
	client *sturdyc.Client[memoryEntry]
	now    func() time.Time
}

// NewMemoryStore creates a sturdyc backed store.
// It validates the configuration and initializes a sturdyc client with the provided settings.
func NewMemoryStore(cfg MemoryConfig) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[memoryEntry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &MemoryStore{client: client, now: time.Now}, nil
}

// Get returns the payload stored under key. Entries past their own deadline
// are dropped on read.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	if entry.expired(s.now()) {
		s.client.Delete(key)
		return nil, false, nil
	}
	return entry.payload, true, nil
}

// Put stores value under key. A zero ttl keeps the entry until sturdyc's
// client TTL evicts it.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	entry := memoryEntry{payload: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.client.Set(key, entry)
	return true, nil
}

// Forget removes key and reports whether a live entry was removed.
func (s *MemoryStore) Forget(ctx context.Context, key string) (bool, error) {
	_, existed, _ := s.Get(ctx, key)
	s.client.Delete(key)
	return existed, nil
}

// Close is a no-op; sturdyc holds no external resources.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}

// Size returns the number of entries currently held by sturdyc, expired
// entries included until they are evicted.
func (s *MemoryStore) Size() int {
	return s.client.Size()
}
