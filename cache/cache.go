// Package cache provides a TTL key-value cache for leaderboard entries.
// The orchestrator treats every cache failure as a miss, so the interface
// returns errors even though the in-memory implementation cannot fail.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/use-agent/podium/models"
)

// LeaderboardKey is the key under which the current entries are cached.
const LeaderboardKey = "leaderboard_data"

// Cache is the key-value collaborator consumed by the orchestrator.
type Cache interface {
	// Get returns the cached entries for key, or ok=false on a miss.
	Get(ctx context.Context, key string) (entries []models.LeaderboardEntry, ok bool, err error)

	// Set stores entries under key for ttl.
	Set(ctx context.Context, key string, entries []models.LeaderboardEntry, ttl time.Duration) error
}

// entry holds a cached value with its expiry.
type entry struct {
	entries   []models.LeaderboardEntry
	expiresAt time.Time
}

// Memory is an in-memory Cache. It is safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// NewMemory creates a Memory cache holding at most maxEntries keys.
// A background goroutine evicts expired entries every 5 minutes.
func NewMemory(maxEntries int) *Memory {
	c := &Memory{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}
	go c.cleanupLoop()
	return c
}

// Get implements Cache.
func (c *Memory) Get(_ context.Context, key string) ([]models.LeaderboardEntry, bool, error) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.entries, true, nil
}

// Set implements Cache. If the cache is at capacity, a random entry is
// evicted to make room (map iteration is random in Go).
func (c *Memory) Set(_ context.Context, key string, entries []models.LeaderboardEntry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		entries:   entries,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// cleanupLoop evicts expired entries every 5 minutes.
func (c *Memory) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.store {
			if now.After(e.expiresAt) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
