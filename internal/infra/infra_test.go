package infra

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestCache_GetSetExpire(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache[string](time.Minute)
	c.now = clock.now

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", "alpha")
	if v, ok := c.Get("a"); !ok || v != "alpha" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expected entry to expire")
	}

	c.Set("b", "beta")
	clock.t = clock.t.Add(30 * time.Second)
	c.Cleanup()
	if _, ok := c.entries["a"]; ok {
		t.Error("Cleanup kept an expired entry")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("Cleanup dropped a live entry")
	}
}

func TestCache_SetWithTTLAndInvalidate(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewCache[int](time.Hour)
	c.now = clock.now

	c.SetWithTTL("short", 1, time.Second)
	c.Set("long", 2)
	clock.t = clock.t.Add(time.Minute)

	if _, ok := c.Get("short"); ok {
		t.Error("short entry should have expired")
	}
	if v, ok := c.Get("long"); !ok || v != 2 {
		t.Errorf("Get(long) = %d, %v", v, ok)
	}

	c.Invalidate("long")
	if _, ok := c.Get("long"); ok {
		t.Error("invalidated entry still present")
	}
}

func TestRateLimiter_AllowAndRefill(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	rl := NewRateLimiter(2, time.Second)
	rl.now = clock.now
	rl.lastRefill = clock.t

	if !rl.Allow() || !rl.Allow() {
		t.Fatal("expected two tokens")
	}
	if rl.Allow() {
		t.Fatal("bucket should be empty")
	}

	clock.t = clock.t.Add(1500 * time.Millisecond)
	if !rl.Allow() {
		t.Fatal("expected refill after one period")
	}
	if rl.Allow() {
		t.Fatal("only one period elapsed")
	}

	clock.t = clock.t.Add(time.Hour)
	if !rl.Allow() || !rl.Allow() || rl.Allow() {
		t.Fatal("refill must cap at maxTokens")
	}
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Fatal("expected context error on empty bucket")
	}
}

func TestKeyedLimiter(t *testing.T) {
	k := NewKeyedLimiter(1, time.Hour)
	if !k.Allow("10.0.0.1") {
		t.Fatal("first request from a client must pass")
	}
	if k.Allow("10.0.0.1") {
		t.Error("second request from same client should be limited")
	}
	if !k.Allow("10.0.0.2") {
		t.Error("other clients have their own bucket")
	}
}

func TestKeyedLimiter_EvictsIdleBuckets(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	k := NewKeyedLimiter(2, time.Minute)
	k.now = clock.now
	k.lastSweep = clock.t

	for i := 0; i < 100; i++ {
		k.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	if n := len(k.buckets.entries); n != 100 {
		t.Fatalf("buckets = %d, want 100", n)
	}

	// Two tokens at one per minute: idle for two minutes means full again.
	clock.t = clock.t.Add(2*time.Minute + time.Second)
	if !k.Allow("192.168.1.1") {
		t.Fatal("new client must pass")
	}
	if n := len(k.buckets.entries); n != 1 {
		t.Errorf("buckets after sweep = %d, want 1", n)
	}
}

func TestKeyedLimiter_ActiveBucketSurvivesSweep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	k := NewKeyedLimiter(1, time.Minute)
	k.now = clock.now
	k.lastSweep = clock.t

	if !k.Allow("a") {
		t.Fatal("first request must pass")
	}
	clock.t = clock.t.Add(30 * time.Second)
	if k.Allow("a") {
		t.Fatal("bucket should be empty")
	}

	// The second call refreshed the entry, so the sweep at 61s keeps it and
	// the refill is still measured from the first token.
	clock.t = clock.t.Add(31 * time.Second)
	if !k.Allow("a") {
		t.Error("expected one token after a full period")
	}
	if k.Allow("a") {
		t.Error("bucket must not be reset by the sweep")
	}
}
