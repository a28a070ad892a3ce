package localstore

import (
	"fmt"
	"testing"
	"time"
)

func TestStore_SetAndGet(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set("student_stats:42", `{"avg":87}`, 5*time.Minute)

	got, ok := s.Get("student_stats:42")
	if !ok {
		t.Fatal("Get returned miss for freshly set key")
	}
	if got != `{"avg":87}` {
		t.Errorf("Get = %q, want %q", got, `{"avg":87}`)
	}
}

func TestStore_Get_Miss(t *testing.T) {
	s := New()
	defer s.Close()

	if _, ok := s.Get("missing"); ok {
		t.Error("Get returned a value for an absent key")
	}
}

func TestStore_Set_Overwrite(t *testing.T) {
	s := New()
	defer s.Close()

	// The first write expires quickly; the overwrite must cancel its
	// eviction timer so the second value survives past the first deadline.
	s.Set("k", "old", 30*time.Millisecond)
	s.Set("k", "new", 5*time.Minute)

	time.Sleep(80 * time.Millisecond)

	got, ok := s.Get("k")
	if !ok {
		t.Fatal("overwritten key was evicted by the stale timer")
	}
	if got != "new" {
		t.Errorf("Get = %q, want %q", got, "new")
	}
}

func TestStore_Set_NonPositiveTTL(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set("k", "v", 0)
	if _, ok := s.Get("k"); ok {
		t.Error("zero-TTL value should not be stored")
	}

	s.Set("k", "v", -time.Second)
	if _, ok := s.Get("k"); ok {
		t.Error("negative-TTL value should not be stored")
	}
}

func TestStore_LazyExpiry(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set("otp:a@x.com", "123456", 1*time.Second)

	if _, ok := s.Get("otp:a@x.com"); !ok {
		t.Fatal("value missing before TTL elapsed")
	}

	time.Sleep(1100 * time.Millisecond)

	if _, ok := s.Get("otp:a@x.com"); ok {
		t.Error("value still readable after TTL elapsed")
	}
}

func TestStore_TimerEviction(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set("k", "v", 30*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	if s.Len() != 0 {
		t.Errorf("entry not physically purged by eviction timer, Len = %d", s.Len())
	}
}

func TestStore_Delete(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set("k", "v", 5*time.Minute)

	if !s.Delete("k") {
		t.Error("Delete of a live key reported nothing removed")
	}
	if _, ok := s.Get("k"); ok {
		t.Error("value readable after Delete")
	}
	if s.Delete("k") {
		t.Error("second Delete reported a removal")
	}
	if s.Delete("never-set") {
		t.Error("Delete of an absent key reported a removal")
	}
}

func TestStore_Delete_ExpiredCountsAsAbsent(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set("k", "v", 20*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	if s.Delete("k") {
		t.Error("Delete of an expired key reported a removal")
	}
}

func TestStore_Increment(t *testing.T) {
	s := New()
	defer s.Close()

	for want := int64(1); want <= 5; want++ {
		if got := s.Increment("msg_limit:7", time.Minute); got != want {
			t.Fatalf("Increment = %d, want %d", got, want)
		}
	}
}

func TestStore_Increment_WindowReset(t *testing.T) {
	s := New()
	defer s.Close()

	s.Increment("login_limit:fp", 50*time.Millisecond)
	s.Increment("login_limit:fp", 50*time.Millisecond)

	time.Sleep(120 * time.Millisecond)

	if got := s.Increment("login_limit:fp", 50*time.Millisecond); got != 1 {
		t.Errorf("counter after window lapse = %d, want 1", got)
	}
}

func TestStore_Increment_SlidingWindow(t *testing.T) {
	s := New()
	defer s.Close()

	// Each increment refreshes the expiry, so a steady trickle keeps the
	// counter alive past its original deadline.
	s.Increment("k", 80*time.Millisecond)
	for i := 0; i < 3; i++ {
		time.Sleep(40 * time.Millisecond)
		s.Increment("k", 80*time.Millisecond)
	}

	if got := s.Increment("k", 80*time.Millisecond); got != 5 {
		t.Errorf("counter = %d, want 5 (window should slide on each increment)", got)
	}
}

func TestStore_Close_CancelsTimers(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.Set(fmt.Sprintf("k%d", i), "v", time.Minute)
	}

	s.Close()

	if s.Len() != 0 {
		t.Errorf("Len after Close = %d, want 0", s.Len())
	}
}
