// Package cache provides the cache facade used by cacheable values and models.
//
// # Overview
//
// The package exports a small set of building blocks:
//
//   - Facade: the application facing API (Has, Missing, Set/Put, Forget and
//     the generic Get, GetOr, Pull, PullOr and Cached functions)
//   - Store: the byte oriented key/value port implemented by the memory
//     (sturdyc), ristretto, bigcache and redis backends
//   - Codec: msgpack (default), cbor or json encoding of stored values
//   - Cacheable and CacheableModel: the capabilities checked by
//     IsCacheableClass and IsCacheableModel
//   - Collection: a result set that caches itself as a single entry
//
// # Basic Usage
//
//	facade, err := cache.NewFromConfig(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	users, err := cache.Cached(ctx, facade, "users.active", func(ctx context.Context) ([]User, error) {
//		return repo.ListActive(ctx)
//	}, cache.For(10*time.Minute))
//
// Cached calls the producer only on a miss and stores its result. There is no
// locking around the miss path: concurrent callers may each run the producer
// and the last write wins.
//
// # Null Entries
//
// An entry whose encoded value is nil (nil pointer, slice, map or interface)
// is indistinguishable from a missing entry. Has reports false for it and
// Cached recomputes it. Store empty collections instead of nil when the
// absence of data must be cached.
//
// # Expiration
//
// TTL values are built with Forever, For, Seconds or Until. Writing with a
// TTL that is already expired forgets the key. Backends without per-entry
// expiration (bigcache) apply their configured life window to every entry.
//
// # Configuration
//
// Config is decoded from the "cacheable" section of a viper instance. The
// facade keeps that instance and answers Config lookups from it:
//
//	v, _ := cache.ReadSettings("config.yaml")
//	cfg, err := cache.LoadConfig(v)
//	facade, err := cache.NewFromConfig(cfg, cache.WithSettings(v))
//	facade.Config("auto_model_caching") // true unless disabled
//
// # See Also
//
// The model package builds class-level caches for repository backed models
// on top of this package. The httpbind package exposes route model binding
// for echo.
package cache
