// Package testutil provides test doubles for the cache layer.
package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/lernwerk/resilient-cache/pkg/cache"
)

// ErrInjected is the failure returned by a FakeRemote when scripted to fail.
var ErrInjected = errors.New("fake remote: injected failure")

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

// FakeRemote is an in-memory cache.RemoteStore with scriptable failures.
// Safe for concurrent use.
type FakeRemote struct {
	mu      sync.Mutex
	entries map[string]fakeEntry

	// FailAll makes every call fail until cleared.
	failAll bool
	// failNext holds per-operation one-shot failure budgets.
	failNext map[string]int

	// Call counters, by operation name.
	Calls map[string]int
}

// NewFakeRemote creates an empty fake remote backend.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		entries:  make(map[string]fakeEntry),
		failNext: make(map[string]int),
		Calls:    make(map[string]int),
	}
}

// SetFailAll makes every subsequent call fail (true) or succeed (false).
func (f *FakeRemote) SetFailAll(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = fail
}

// FailNext makes the next n calls of op ("get", "set", "del", "incr") fail.
func (f *FakeRemote) FailNext(op string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext[op] += n
}

// shouldFail consumes one failure budget for op. Callers must hold f.mu.
func (f *FakeRemote) shouldFail(op string) bool {
	f.Calls[op]++
	if f.failAll {
		return true
	}
	if f.failNext[op] > 0 {
		f.failNext[op]--
		return true
	}
	return false
}

func (f *FakeRemote) live(key string) (fakeEntry, bool) {
	e, ok := f.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(f.entries, key)
		return fakeEntry{}, false
	}
	return e, true
}

// Get implements cache.RemoteStore.
func (f *FakeRemote) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.shouldFail("get") {
		return "", ErrInjected
	}
	e, ok := f.live(key)
	if !ok {
		return "", cache.ErrRemoteMiss
	}
	return e.value, nil
}

// Set implements cache.RemoteStore.
func (f *FakeRemote) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.shouldFail("set") {
		return ErrInjected
	}
	f.entries[key] = fakeEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Del implements cache.RemoteStore.
func (f *FakeRemote) Del(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.shouldFail("del") {
		return 0, ErrInjected
	}
	if _, ok := f.live(key); !ok {
		return 0, nil
	}
	delete(f.entries, key)
	return 1, nil
}

// IncrWithExpiry implements cache.RemoteStore.
func (f *FakeRemote) IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.shouldFail("incr") {
		return 0, ErrInjected
	}
	var count int64
	if e, ok := f.live(key); ok {
		if n, err := strconv.ParseInt(e.value, 10, 64); err == nil {
			count = n
		}
	}
	count++
	f.entries[key] = fakeEntry{
		value:     strconv.FormatInt(count, 10),
		expiresAt: time.Now().Add(window),
	}
	return count, nil
}

// Has reports whether key currently holds a live value.
func (f *FakeRemote) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.live(key)
	return ok
}
