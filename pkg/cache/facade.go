package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lernwerk/resilient-cache/pkg/localstore"
	"github.com/lernwerk/resilient-cache/pkg/logging"
)

// Readiness reports whether the remote backend is currently usable.
// *connection.Manager satisfies it.
type Readiness interface {
	IsReady() bool
}

// ReadyFunc adapts a plain function to the Readiness interface.
type ReadyFunc func() bool

// IsReady implements Readiness.
func (f ReadyFunc) IsReady() bool { return f() }

// Facade is the single cache entry point. It routes every call to the
// remote backend while it is ready and to the local store otherwise, and it
// never surfaces an error to its caller: the worst case of total remote
// unavailability is reduced durability, not functional failure.
type Facade struct {
	remote RemoteStore
	local  *localstore.Store
	ready  Readiness
	logger zerolog.Logger
}

// NewFacade wires the remote backend, the local fallback store and the
// readiness source together.
func NewFacade(remote RemoteStore, local *localstore.Store, ready Readiness) *Facade {
	if remote == nil {
		panic("remote store cannot be nil")
	}
	if local == nil {
		panic("local store cannot be nil")
	}
	if ready == nil {
		panic("readiness source cannot be nil")
	}
	return &Facade{
		remote: remote,
		local:  local,
		ready:  ready,
		logger: logging.NewLogger("cache"),
	}
}

// IsReady proxies the connection manager's readiness flag. Diagnostic only;
// callers never need it to use the cache.
func (f *Facade) IsReady() bool {
	return f.ready.IsReady()
}

// Get returns the value stored under key, or ok=false when absent. A remote
// failure degrades this single call to the local store; it does not flip
// global readiness.
func (f *Facade) Get(ctx context.Context, key string) (string, bool) {
	if !f.ready.IsReady() {
		return f.localGet(key)
	}

	val, err := f.remote.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrRemoteMiss) {
			cacheMisses.Inc()
			return "", false
		}
		f.fallback("get", key, err)
		return f.localGet(key)
	}

	cacheHits.WithLabelValues("redis").Inc()
	return val, true
}

// SetWithExpiry stores value under key for ttl. On remote-write failure the
// write is mirrored into the local store so later reads, which may also
// fall back, stay consistent for the remainder of the TTL.
func (f *Facade) SetWithExpiry(ctx context.Context, key string, ttl time.Duration, value string) {
	if ttl <= 0 {
		return
	}

	if !f.ready.IsReady() {
		f.local.Set(key, value, ttl)
		return
	}

	if err := f.remote.Set(ctx, key, value, ttl); err != nil {
		f.fallback("set", key, err)
		f.local.Set(key, value, ttl)
	}
}

// Delete removes key and reports how many live values were removed (0 or
// 1). The local store is always cleared as well, so a value deleted while
// the remote is healthy can never resurrect from stale fallback state.
func (f *Facade) Delete(ctx context.Context, key string) int {
	removed := 0
	if f.local.Delete(key) {
		removed = 1
	}

	if f.ready.IsReady() {
		n, err := f.remote.Del(ctx, key)
		if err != nil {
			f.fallback("delete", key, err)
		} else if n > 0 {
			removed = 1
		}
	}

	return removed
}

// IncrementWithExpiry atomically adds one to the counter under key and
// refreshes its expiry to window from now. Both backends increment
// atomically, so concurrent callers can never under-count.
func (f *Facade) IncrementWithExpiry(ctx context.Context, key string, window time.Duration) int64 {
	if !f.ready.IsReady() {
		return f.local.Increment(key, window)
	}

	n, err := f.remote.IncrWithExpiry(ctx, key, window)
	if err != nil {
		f.fallback("increment", key, err)
		return f.local.Increment(key, window)
	}
	return n
}

func (f *Facade) localGet(key string) (string, bool) {
	val, ok := f.local.Get(key)
	if ok {
		cacheHits.WithLabelValues("local").Inc()
	} else {
		cacheMisses.Inc()
	}
	return val, ok
}

func (f *Facade) fallback(op, key string, err error) {
	cacheFallbacks.WithLabelValues(op).Inc()
	f.logger.Warn().
		Err(err).
		Str("operation", op).
		Str("key", key).
		Msg("Remote cache call failed, serving from local store")
}
