package ratelimit

import (
	"testing"
	"time"
)

func TestAllow_BurstThenRefill(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	l := New()
	l.SetClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if !l.Allow("yahoo", 3, 1) {
			t.Fatalf("burst request %d should pass", i)
		}
	}
	if l.Allow("yahoo", 3, 1) {
		t.Fatal("bucket should be empty")
	}

	now = now.Add(time.Second)
	if !l.Allow("yahoo", 3, 1) {
		t.Fatal("one token should refill after a second")
	}
	if l.Allow("yahoo", 3, 1) {
		t.Fatal("only one token should have refilled")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	l := New()
	l.SetClock(func() time.Time { return now })

	if !l.Allow("a", 1, 1) {
		t.Fatal("first key should pass")
	}
	if l.Allow("a", 1, 1) {
		t.Fatal("first key should be drained")
	}
	if !l.Allow("b", 1, 1) {
		t.Fatal("second key has its own bucket")
	}
}

func TestAllow_TokensCapAtCapacity(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	l := New()
	l.SetClock(func() time.Time { return now })

	if !l.Allow("k", 2, 10) {
		t.Fatal("initial token")
	}
	// A long idle period must not accumulate beyond capacity.
	now = now.Add(time.Hour)
	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow("k", 2, 10) {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("expected refill capped at capacity 2, got %d", allowed)
	}
}
