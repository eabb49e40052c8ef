package cache

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/goliatone/go-cacheable/internal/cacheinfra"
)

// SettingsSection is the configuration section read by Facade.Config.
const SettingsSection = "cacheable"

// OptionAutoModelCaching toggles model lifecycle cache sync.
const OptionAutoModelCaching = "auto_model_caching"

// Store drivers understood by NewStore.
const (
	DriverMemory    = "memory"
	DriverRistretto = "ristretto"
	DriverBigCache  = "bigcache"
	DriverRedis     = "redis"
)

// Backend specific settings, shared with the store adapters.
type (
	MemoryConfig    = cacheinfra.MemoryConfig
	RistrettoConfig = cacheinfra.RistrettoConfig
	BigCacheConfig  = cacheinfra.BigCacheConfig
	RedisConfig     = cacheinfra.RedisConfig
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Driver           string `mapstructure:"driver" json:"driver"`
	Codec            string `mapstructure:"codec" json:"codec"`
	Prefix           string `mapstructure:"prefix" json:"prefix"`
	AutoModelCaching bool   `mapstructure:"auto_model_caching" json:"auto_model_caching"`

	Memory    MemoryConfig    `mapstructure:"memory" json:"memory"`
	Ristretto RistrettoConfig `mapstructure:"ristretto" json:"ristretto"`
	BigCache  BigCacheConfig  `mapstructure:"bigcache" json:"bigcache"`
	Redis     RedisConfig     `mapstructure:"redis" json:"redis"`
}

// DefaultConfig returns a Config using the in-process sturdyc store, msgpack
// encoding and model auto sync enabled.
func DefaultConfig() Config {
	return Config{
		Driver:           DriverMemory,
		Codec:            CodecMsgpack,
		AutoModelCaching: true,
		Memory:           cacheinfra.DefaultMemoryConfig(),
		Ristretto:        cacheinfra.DefaultRistrettoConfig(),
		BigCache:         cacheinfra.DefaultBigCacheConfig(),
		Redis:            cacheinfra.DefaultRedisConfig(),
	}
}

// Validate checks the top level options and the settings of the selected driver.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverMemory, DriverRistretto, DriverBigCache, DriverRedis)),
		validation.Field(&c.Codec, validation.In(CodecMsgpack, CodecCBOR, CodecJSON)),
	)
	if err != nil {
		return err
	}

	var section error
	switch c.Driver {
	case DriverMemory:
		section = c.Memory.Validate()
	case DriverRistretto:
		section = c.Ristretto.Validate()
	case DriverBigCache:
		section = c.BigCache.Validate()
	case DriverRedis:
		section = c.Redis.Validate()
	}
	if section != nil {
		return fmt.Errorf("%s: %w", c.Driver, section)
	}
	return nil
}

// NewStore constructs the Store selected by cfg.Driver.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return cacheinfra.NewMemoryStore(cfg.Memory)
	case DriverRistretto:
		return cacheinfra.NewRistrettoStore(cfg.Ristretto)
	case DriverBigCache:
		return cacheinfra.NewBigCacheStore(cfg.BigCache)
	case DriverRedis:
		return cacheinfra.NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// NewFromConfig builds the store and codec described by cfg and wraps them in
// a Facade whose settings mirror cfg. opts are applied last.
func NewFromConfig(cfg Config, opts ...Option) (*Facade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}

	codec, err := NewCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithCodec(codec),
		WithPrefix(cfg.Prefix),
		WithSettings(NewSettings(cfg)),
	}
	return New(store, append(base, opts...)...)
}

// LoadConfig decodes the cacheable section of v over DefaultConfig and validates it.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if v == nil {
		return cfg, nil
	}

	// Unmarshal walks every leaf key, so environment overrides are honoured.
	wrapper := struct {
		Cacheable *Config `mapstructure:"cacheable"`
	}{Cacheable: &cfg}
	if err := v.Unmarshal(&wrapper); err != nil {
		return cfg, fmt.Errorf("cacheable: decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// ReadSettings loads a configuration file (any format viper supports) and
// binds CACHEABLE_* environment variables, e.g. CACHEABLE_REDIS_ADDR.
// An empty path only applies defaults and environment variables.
func ReadSettings(path string) (*viper.Viper, error) {
	v := viper.New()
	applyDefaults(v, DefaultConfig())

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cacheable: read config %s: %w", path, err)
	}
	return v, nil
}

// NewSettings returns a viper instance whose cacheable section holds cfg.
func NewSettings(cfg Config) *viper.Viper {
	v := viper.New()
	applyDefaults(v, cfg)
	return v
}

func applyDefaults(v *viper.Viper, cfg Config) {
	set := func(key string, value any) {
		v.SetDefault(SettingsSection+"."+key, value)
	}

	set("driver", cfg.Driver)
	set("codec", cfg.Codec)
	set("prefix", cfg.Prefix)
	set(OptionAutoModelCaching, cfg.AutoModelCaching)

	set("memory.capacity", cfg.Memory.Capacity)
	set("memory.num_shards", cfg.Memory.NumShards)
	set("memory.ttl", cfg.Memory.TTL)
	set("memory.eviction_percentage", cfg.Memory.EvictionPercentage)
	set("memory.eviction_interval", cfg.Memory.EvictionInterval)

	set("ristretto.num_counters", cfg.Ristretto.NumCounters)
	set("ristretto.max_cost", cfg.Ristretto.MaxCost)
	set("ristretto.buffer_items", cfg.Ristretto.BufferItems)
	set("ristretto.metrics", cfg.Ristretto.Metrics)

	set("bigcache.life_window", cfg.BigCache.LifeWindow)
	set("bigcache.clean_window", cfg.BigCache.CleanWindow)
	set("bigcache.max_entries_in_window", cfg.BigCache.MaxEntriesInWindow)
	set("bigcache.max_entry_size", cfg.BigCache.MaxEntrySize)
	set("bigcache.hard_max_cache_size_mb", cfg.BigCache.HardMaxCacheSizeMB)

	set("redis.addr", cfg.Redis.Addr)
	set("redis.password", cfg.Redis.Password)
	set("redis.db", cfg.Redis.DB)
}
