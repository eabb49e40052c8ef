package cacheinfra

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/viccon/sturdyc"
)

// MemoryConfig holds the configuration for the sturdyc backed memory store.
type MemoryConfig struct {
	// Capacity defines the maximum number of entries that the cache can store.
	Capacity int `mapstructure:"capacity" json:"capacity"`

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	NumShards int `mapstructure:"num_shards" json:"num_shards"`

	// TTL is the upper bound for every entry, including entries stored
	// without an expiration. sturdyc has no per-entry TTL.
	TTL time.Duration `mapstructure:"ttl" json:"ttl"`

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity.
	EvictionPercentage int `mapstructure:"eviction_percentage" json:"eviction_percentage"`

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration `mapstructure:"eviction_interval" json:"eviction_interval"`
}

// DefaultMemoryConfig returns a MemoryConfig sized for a single process
// holding a handful of model snapshots.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          256,
		TTL:                24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c MemoryConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}

// ToSturdycOptions converts the optional parts of the config to sturdyc options.
// Capacity, NumShards, TTL, and EvictionPercentage are passed directly to
// sturdyc.New() and are not included here.
func (c MemoryConfig) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// RistrettoConfig configures the ristretto store.
type RistrettoConfig struct {
	NumCounters int64 `mapstructure:"num_counters" json:"num_counters"`
	// MaxCost is expressed in bytes; each entry costs its encoded length.
	MaxCost     int64 `mapstructure:"max_cost" json:"max_cost"`
	BufferItems int64 `mapstructure:"buffer_items" json:"buffer_items"`
	Metrics     bool  `mapstructure:"metrics" json:"metrics"`
}

// DefaultRistrettoConfig returns the ristretto settings recommended upstream
// for a 64MB cache.
func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{
		NumCounters: 1e6,
		MaxCost:     64 << 20,
		BufferItems: 64,
	}
}

// Validate checks if the configuration values are valid.
func (c RistrettoConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.NumCounters, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.MaxCost, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.BufferItems, validation.Required, validation.Min(int64(1))),
	)
}

// BigCacheConfig configures the bigcache store.
type BigCacheConfig struct {
	// LifeWindow is applied to every entry; bigcache has no per-entry TTL.
	LifeWindow         time.Duration `mapstructure:"life_window" json:"life_window"`
	CleanWindow        time.Duration `mapstructure:"clean_window" json:"clean_window"`
	MaxEntriesInWindow int           `mapstructure:"max_entries_in_window" json:"max_entries_in_window"`
	MaxEntrySize       int           `mapstructure:"max_entry_size" json:"max_entry_size"`
	HardMaxCacheSizeMB int           `mapstructure:"hard_max_cache_size_mb" json:"hard_max_cache_size_mb"`
}

// DefaultBigCacheConfig returns a BigCacheConfig with a one day life window.
func DefaultBigCacheConfig() BigCacheConfig {
	return BigCacheConfig{
		LifeWindow:  24 * time.Hour,
		CleanWindow: 5 * time.Minute,
	}
}

// Validate checks if the configuration values are valid.
func (c BigCacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LifeWindow, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.CleanWindow, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxEntriesInWindow, validation.Min(0)),
		validation.Field(&c.MaxEntrySize, validation.Min(0)),
		validation.Field(&c.HardMaxCacheSizeMB, validation.Min(0)),
	)
}

// RedisConfig configures the redis store. When Client is set the address
// fields are ignored and the store does not close the client.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" json:"addr"`
	Password string `mapstructure:"password" json:"-"`
	DB       int    `mapstructure:"db" json:"db"`

	Client goredis.UniversalClient `mapstructure:"-" json:"-"`
}

// DefaultRedisConfig points at a local redis instance.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{Addr: "localhost:6379"}
}

// Validate checks if the configuration values are valid.
func (c RedisConfig) Validate() error {
	if c.Client != nil {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
	)
}
