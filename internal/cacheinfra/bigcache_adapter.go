package cacheinfra

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// BigCacheStore keeps entries in bigcache. Every entry shares the configured
// life window; per-entry TTLs are ignored.
type BigCacheStore struct {
	cache *bigcache.BigCache
}

// NewBigCacheStore creates a bigcache backed store.
func NewBigCacheStore(cfg BigCacheConfig) (*BigCacheStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conf := bigcache.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	conf.Verbose = false

	c, err := bigcache.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &BigCacheStore{cache: c}, nil
}

// Get returns the entry stored under key.
func (s *BigCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := s.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Put stores value. bigcache has a single life window, so ttl is ignored.
func (s *BigCacheStore) Put(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	if err := s.cache.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

// Forget removes key and reports whether it was present.
func (s *BigCacheStore) Forget(_ context.Context, key string) (bool, error) {
	err := s.cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close stops the bigcache cleanup goroutine.
func (s *BigCacheStore) Close(context.Context) error {
	return s.cache.Close()
}
