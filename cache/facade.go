package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Facade is the application facing cache API. It resolves TTLs, encodes
// values with its Codec and delegates storage to a Store.
//
// Go methods cannot have type parameters, so typed reads (Get, GetOr, Pull,
// PullOr, Cached) are package-level functions taking the Facade.
type Facade struct {
	store      Store
	codec      Codec
	logger     Logger
	settings   *viper.Viper
	prefix     string
	now        func() time.Time
	nilPayload []byte
}

// Option configures a Facade.
type Option func(*Facade)

// WithCodec sets the codec used to encode entries. Defaults to msgpack.
func WithCodec(c Codec) Option {
	return func(f *Facade) {
		if c != nil {
			f.codec = c
		}
	}
}

// WithLogger sets the logger used for cache and model sync events.
func WithLogger(l Logger) Option {
	return func(f *Facade) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithSettings sets the configuration store read by Config and AutoModelCaching.
func WithSettings(v *viper.Viper) Option {
	return func(f *Facade) {
		if v != nil {
			f.settings = v
		}
	}
}

// WithPrefix namespaces every key sent to the store.
func WithPrefix(prefix string) Option {
	return func(f *Facade) {
		f.prefix = prefix
	}
}

// WithClock overrides the time source used to resolve absolute TTLs.
func WithClock(now func() time.Time) Option {
	return func(f *Facade) {
		if now != nil {
			f.now = now
		}
	}
}

// New creates a Facade over store.
func New(store Store, opts ...Option) (*Facade, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	f := &Facade{
		store:  store,
		codec:  Msgpack{},
		logger: NopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.settings == nil {
		f.settings = NewSettings(DefaultConfig())
	}

	nilPayload, err := f.codec.Marshal(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: codec %s cannot encode nil: %w", ErrEncode, f.codec.Name(), err)
	}
	f.nilPayload = nilPayload

	return f, nil
}

// Store returns the underlying key/value store.
func (f *Facade) Store() Store { return f.store }

// Codec returns the codec used to encode entries.
func (f *Facade) Codec() Codec { return f.codec }

// Logger returns the configured logger.
func (f *Facade) Logger() Logger { return f.logger }

// Settings returns the configuration store backing Config.
func (f *Facade) Settings() *viper.Viper { return f.settings }

// Close releases the underlying store.
func (f *Facade) Close(ctx context.Context) error {
	return f.store.Close(ctx)
}

// Has reports whether a non-nil entry exists for key.
func (f *Facade) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := f.lookup(ctx, key)
	return ok, err
}

// Missing is the negation of Has.
func (f *Facade) Missing(ctx context.Context, key string) (bool, error) {
	ok, err := f.Has(ctx, key)
	return !ok, err
}

// Set stores value under key for ttl and reports whether the store accepted
// the write. A TTL that is already expired forgets the key instead.
func (f *Facade) Set(ctx context.Context, key string, value any, ttl TTL) (bool, error) {
	d, live := ttl.Resolve(f.now())
	if !live {
		return f.Forget(ctx, key)
	}

	raw, err := f.codec.Marshal(value)
	if err != nil {
		CacheErrors.WithLabelValues("encode").Inc()
		return false, fmt.Errorf("%w %q: %w", ErrEncode, key, err)
	}

	ok, err := f.store.Put(ctx, f.key(key), raw, d)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		f.logger.Warn("cache set failed", Fields{"key": key, "error": err.Error()})
		return false, fmt.Errorf("cacheable: set %q: %w", key, err)
	}

	if ok {
		CacheWrites.WithLabelValues("stored").Inc()
	} else {
		CacheWrites.WithLabelValues("rejected").Inc()
	}
	f.logger.Debug("cache set", Fields{"key": key, "ttl": ttl.String(), "stored": ok, "bytes": len(raw)})

	return ok, nil
}

// Put is an alias of Set.
func (f *Facade) Put(ctx context.Context, key string, value any, ttl TTL) (bool, error) {
	return f.Set(ctx, key, value, ttl)
}

// Forget removes key and reports whether an entry was removed.
func (f *Facade) Forget(ctx context.Context, key string) (bool, error) {
	removed, err := f.store.Forget(ctx, f.key(key))
	if err != nil {
		CacheErrors.WithLabelValues("forget").Inc()
		f.logger.Warn("cache forget failed", Fields{"key": key, "error": err.Error()})
		return false, fmt.Errorf("cacheable: forget %q: %w", key, err)
	}
	if removed {
		CacheForgets.WithLabelValues("removed").Inc()
	} else {
		CacheForgets.WithLabelValues("absent").Inc()
	}
	f.logger.Debug("cache forget", Fields{"key": key, "removed": removed})
	return removed, nil
}

// Config reads the cacheable configuration section. An empty key returns the
// whole section as a map; otherwise the option at cacheable.<key>.
func (f *Facade) Config(key string) any {
	if key == "" {
		return f.settings.GetStringMap(SettingsSection)
	}
	return f.settings.Get(SettingsSection + "." + key)
}

// AutoModelCaching reports whether models sync their cache on lifecycle events.
func (f *Facade) AutoModelCaching() bool {
	return f.settings.GetBool(SettingsSection + "." + OptionAutoModelCaching)
}

func (f *Facade) key(key string) string {
	return f.prefix + key
}

// lookup reads the raw entry for key. An entry holding an encoded nil is
// reported as a miss.
func (f *Facade) lookup(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := f.store.Get(ctx, f.key(key))
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		f.logger.Warn("cache get failed", Fields{"key": key, "error": err.Error()})
		return nil, false, fmt.Errorf("cacheable: get %q: %w", key, err)
	}

	if !ok || bytes.Equal(raw, f.nilPayload) {
		CacheMisses.Inc()
		f.logger.Debug("cache miss", Fields{"key": key})
		return nil, false, nil
	}

	CacheHits.Inc()
	f.logger.Debug("cache hit", Fields{"key": key})
	return raw, true, nil
}

func decode[T any](f *Facade, key string, raw []byte) (T, error) {
	var v T
	if err := f.codec.Unmarshal(raw, &v); err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		var zero T
		return zero, fmt.Errorf("%w %q: %w", ErrDecode, key, err)
	}
	return v, nil
}

// Get returns the value stored under key decoded as T.
func Get[T any](ctx context.Context, f *Facade, key string) (T, bool, error) {
	var zero T

	raw, ok, err := f.lookup(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	v, err := decode[T](f, key, raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// GetOr returns the value stored under key, or the result of def on a miss.
// def runs lazily and its result is not stored. A nil def yields the zero value.
func GetOr[T any](ctx context.Context, f *Facade, key string, def FetchFn[T]) (T, error) {
	v, ok, err := Get[T](ctx, f, key)
	if err != nil || ok {
		return v, err
	}
	if def == nil {
		return v, nil
	}
	return def(ctx)
}

// Pull returns the value stored under key and removes the entry.
func Pull[T any](ctx context.Context, f *Facade, key string) (T, bool, error) {
	v, ok, err := Get[T](ctx, f, key)
	if err != nil {
		return v, false, err
	}
	if _, err := f.Forget(ctx, key); err != nil {
		return v, ok, err
	}
	return v, ok, nil
}

// PullOr is Pull with a lazily evaluated default for misses.
func PullOr[T any](ctx context.Context, f *Facade, key string, def FetchFn[T]) (T, error) {
	v, ok, err := Pull[T](ctx, f, key)
	if err != nil || ok {
		return v, err
	}
	if def == nil {
		return v, nil
	}
	return def(ctx)
}

// Cached returns the value stored under key. On a miss it calls fetch once,
// stores the result for ttl and returns it; on a hit fetch is never called.
// With a nil fetch a miss returns the zero value.
//
// An entry holding a nil value (nil pointer, slice, map or interface) cannot
// be told apart from a missing entry, so caching nil always recomputes.
func Cached[T any](ctx context.Context, f *Facade, key string, fetch FetchFn[T], ttl TTL) (T, error) {
	v, ok, err := Get[T](ctx, f, key)
	if err != nil || ok || fetch == nil {
		return v, err
	}

	v, err = fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if _, err := f.Set(ctx, key, v, ttl); err != nil {
		return v, err
	}
	return v, nil
}
