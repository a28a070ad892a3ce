// Package localstore implements the in-process fallback store used when the
// remote cache is unreachable. Entries carry a per-key TTL and are purged
// both lazily on read and eagerly by a scheduled eviction timer.
package localstore

import (
	"strconv"
	"sync"
	"time"
)

// entry holds a stored value together with its expiry deadline. The
// generation counter ties each eviction timer to the write that scheduled
// it, so a stale timer can never evict a newer value under the same key.
type entry struct {
	value     string
	expiresAt time.Time
	gen       uint64
}

// expired reports whether the entry is logically absent. An entry whose
// eviction timer has not fired yet but whose deadline has passed counts as
// expired.
func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Store is a process-local key-value store with per-key TTL.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	timers  map[string]*time.Timer
	gen     uint64
}

// New creates an empty local store.
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
		timers:  make(map[string]*time.Timer),
	}
}

// Set stores value under key and schedules an eviction at now + ttl.
// A prior value and its pending eviction timer are replaced. Non-positive
// TTLs are ignored: an already-expired entry is never stored.
func (s *Store) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value, ttl)
}

// setLocked performs the write and (re)schedules the eviction timer.
// Callers must hold s.mu.
func (s *Store) setLocked(key, value string, ttl time.Duration) {
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}

	s.gen++
	gen := s.gen
	s.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
		gen:       gen,
	}
	s.timers[key] = time.AfterFunc(ttl, func() {
		s.evict(key, gen)
	})
	localEntries.Set(float64(len(s.entries)))
}

// evict removes key if it still holds the generation the timer was
// scheduled for. Later writes carry a newer generation and are left alone.
func (s *Store) evict(key string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.gen != gen {
		return
	}
	delete(s.entries, key)
	delete(s.timers, key)
	localEvictions.Inc()
	localEntries.Set(float64(len(s.entries)))
}

// Get returns the value stored under key. The second return value is false
// when the key is absent or its TTL has elapsed, even if the eviction timer
// has not fired yet.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if e.expired(time.Now()) {
		s.removeLocked(key)
		return "", false
	}
	return e.value, true
}

// Delete removes key and cancels its pending eviction. It reports whether a
// live (non-expired) value was removed; deleting an absent key is a no-op.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	live := !e.expired(time.Now())
	s.removeLocked(key)
	return live
}

// Increment atomically adds one to the decimal counter stored under key and
// refreshes its expiry to now + window (sliding window). An absent or
// expired counter restarts at 1. Values that do not parse as integers are
// treated as absent.
func (s *Store) Increment(key string, window time.Duration) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if e, ok := s.entries[key]; ok && !e.expired(time.Now()) {
		if n, err := strconv.ParseInt(e.value, 10, 64); err == nil {
			count = n
		}
	}
	count++
	s.setLocked(key, strconv.FormatInt(count, 10), window)
	return count
}

// Len returns the number of physically present entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close cancels all pending eviction timers and drops every entry.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.entries = make(map[string]entry)
	localEntries.Set(0)
}

// removeLocked drops the entry and its timer. Callers must hold s.mu.
func (s *Store) removeLocked(key string) {
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	delete(s.entries, key)
	localEntries.Set(float64(len(s.entries)))
}
