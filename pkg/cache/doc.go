// Package cache provides the resilient cache facade: a string key-value
// store backed by Redis that transparently fails over to an in-process
// TTL-expiring local store.
//
// The facade guarantees that no operation ever returns an error to its
// caller. Routing is decided per call:
//
//   - while the connection manager reports ready, calls go to Redis;
//   - when it does not, or when a single remote call fails, that call is
//     served by the local store instead.
//
// Deletes always clear both stores, so an explicitly removed value (a
// consumed one-time code, say) can never resurrect from stale fallback
// state.
//
// # Basic Usage
//
//	manager := connection.New(connection.DefaultConfig("localhost:6379"))
//	manager.Start(ctx)
//
//	facade := cache.NewFacade(
//		cache.NewRedisStore(manager.Client()),
//		localstore.New(),
//		manager,
//	)
//
//	facade.SetWithExpiry(ctx, cache.OTPKey("a@x.com"), 10*time.Minute, "482913")
//	code, ok := facade.Get(ctx, cache.OTPKey("a@x.com"))
//	facade.Delete(ctx, cache.OTPKey("a@x.com"))
//
// Values are plain strings. Callers that cache structured data serialize
// before Set and parse after Get; the facade never interprets values.
//
// # Counters
//
// IncrementWithExpiry is the atomic read-modify-write primitive for the
// rate-limit policies. Redis serves it with INCR+EXPIRE in a transaction
// pipeline; the local store guards its increment with a mutex. Every
// increment refreshes the expiry, which is what makes the limiter windows
// sliding rather than fixed.
//
// # Metrics
//
//   - cache_hits_total{layer} - hits by serving layer ("redis", "local")
//   - cache_misses_total - misses
//   - cache_fallbacks_total{operation} - per-call degradations to local
package cache
