package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a check-and-increment rate limiter. Allow records one request
// for key and reports whether it fits inside the limit for the window.
// Implementations decide where the counters live, so call sites stay the
// same whether the process runs alone (in-memory) or behind a load
// balancer (redis).
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, resetAt time.Time)
}

const (
	memoryMaxEntries      = 10000
	memoryCleanupInterval = time.Minute
	memoryEntryTTL        = 5 * time.Minute
)

type memoryEntry struct {
	count       int
	windowStart time.Time
	lastAccess  time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory. Counts
// are lost on restart, which is acceptable for abuse throttling.
type MemoryLimiter struct {
	mu          sync.Mutex
	store       map[string]*memoryEntry
	lastCleanup time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		store:       make(map[string]*memoryEntry),
		lastCleanup: time.Now(),
	}
}

func (l *MemoryLimiter) cleanup() {
	now := time.Now()
	if now.Sub(l.lastCleanup) < memoryCleanupInterval {
		return
	}
	l.lastCleanup = now

	for key, entry := range l.store {
		if now.Sub(entry.lastAccess) > memoryEntryTTL {
			delete(l.store, key)
		}
	}

	if len(l.store) > memoryMaxEntries {
		evict := make([]string, 0, len(l.store)/5)
		for key := range l.store {
			evict = append(evict, key)
			if len(evict) >= len(l.store)/5 {
				break
			}
		}
		for _, key := range evict {
			delete(l.store, key)
		}
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanup()

	now := time.Now()
	entry, exists := l.store[key]

	if !exists || now.Sub(entry.windowStart) > window {
		l.store[key] = &memoryEntry{
			count:       1,
			windowStart: now,
			lastAccess:  now,
		}
		return true, now.Add(window)
	}

	entry.lastAccess = now
	resetAt := entry.windowStart.Add(window)

	if entry.count >= limit {
		return false, resetAt
	}

	entry.count++
	return true, resetAt
}
