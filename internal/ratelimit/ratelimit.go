// Package ratelimit provides a keyed rate limiter using the token bucket algorithm.
// It throttles login attempts per client so credential stuffing gets slow fast.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Keys idle longer than this are evicted by the cleanup loop. Login
// keys are client addresses, so the map would otherwise grow forever.
const idleEviction = 10 * time.Minute

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent token bucket.
type KeyedRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int

	done     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a new keyed rate limiter.
// rps: requests per second allowed per key.
// burst: maximum burst size (tokens available immediately).
func New(rps float64, burst int) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(rps),
		burst:    burst,
		done:     make(chan struct{}),
	}

	go krl.cleanup()

	return krl
}

// Allow reports whether a request for the given key should be allowed.
// Returns immediately without blocking.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// getLimiter returns the limiter for a key, creating one if needed.
func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()

	// Fast path: read lock
	krl.mu.RLock()
	e, exists := krl.limiters[key]
	krl.mu.RUnlock()

	if exists {
		krl.mu.Lock()
		e.lastSeen = now
		krl.mu.Unlock()
		return e.limiter
	}

	// Slow path: write lock to create
	krl.mu.Lock()
	defer krl.mu.Unlock()

	// Double-check after acquiring write lock
	if e, exists = krl.limiters[key]; exists {
		e.lastSeen = now
		return e.limiter
	}

	e = &entry{
		limiter:  rate.NewLimiter(krl.limit, krl.burst),
		lastSeen: now,
	}
	krl.limiters[key] = e
	return e.limiter
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

// cleanup evicts idle keys every minute until stopped.
func (krl *KeyedRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case now := <-ticker.C:
			krl.mu.Lock()
			for key, e := range krl.limiters {
				if now.Sub(e.lastSeen) > idleEviction {
					delete(krl.limiters, key)
				}
			}
			krl.mu.Unlock()
		}
	}
}
