// Package infra provides the small shared building blocks used by the learn
// feed and the HTTP API: a TTL cache and token-bucket rate limiters.
package infra

import (
	"context"
	"sync"
	"time"
)

// --- TTL cache ---

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache whose entries expire after a TTL.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given default TTL.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]cacheEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate removes key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Cleanup removes expired entries.
func (c *Cache[V]) Cleanup() {
	c.mu.Lock()
	now := c.now()
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// --- Rate limiting ---

// RateLimiter is a token bucket holding at most maxTokens, refilled by one
// token every refillRate.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillRate <= 0 {
		refillRate = time.Second
	}
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow takes a token if one is available and reports whether it did.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.Allow() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// refill adds tokens for elapsed periods. Must be called with mu held.
func (rl *RateLimiter) refill() {
	elapsed := rl.now().Sub(rl.lastRefill)
	if elapsed < rl.refillRate {
		return
	}
	periods := int(elapsed / rl.refillRate)
	rl.tokens += periods
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
}

// KeyedLimiter keeps one RateLimiter per key, such as a client address.
// Buckets live in a Cache whose TTL is the time an empty bucket needs to
// refill completely, so an idle key is dropped only once its bucket would be
// full again and a fresh one behaves the same.
type KeyedLimiter struct {
	mu         sync.Mutex
	buckets    *Cache[*RateLimiter]
	maxTokens  int
	refillRate time.Duration
	idle       time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// NewKeyedLimiter creates per-key buckets with the given shape.
func NewKeyedLimiter(maxTokens int, refillRate time.Duration) *KeyedLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillRate <= 0 {
		refillRate = time.Second
	}
	idle := time.Duration(maxTokens) * refillRate
	k := &KeyedLimiter{
		buckets:    NewCache[*RateLimiter](idle),
		maxTokens:  maxTokens,
		refillRate: refillRate,
		idle:       idle,
		lastSweep:  time.Now(),
		now:        time.Now,
	}
	k.buckets.now = func() time.Time { return k.now() }
	return k
}

// Allow takes a token from key's bucket. Expired buckets are swept at most
// once per idle period.
func (k *KeyedLimiter) Allow(key string) bool {
	k.mu.Lock()
	now := k.now()
	if now.Sub(k.lastSweep) >= k.idle {
		k.buckets.Cleanup()
		k.lastSweep = now
	}
	rl, ok := k.buckets.Get(key)
	if !ok {
		rl = NewRateLimiter(k.maxTokens, k.refillRate)
		rl.now = k.now
		rl.lastRefill = now
	}
	k.buckets.Set(key, rl)
	k.mu.Unlock()
	return rl.Allow()
}
