package cache

import (
	"context"
	"sync"
	"time"

	"github.com/armory/backend/internal/domain/shared"
)

type statusEntry struct {
	rank      int
	payload   []byte
	expiresAt time.Time
}

// InMemoryStatusCache implements StatusCache with a process-local map,
// applying the same rank guard as the Redis cache
type InMemoryStatusCache struct {
	mu      sync.RWMutex
	entries map[string]statusEntry
}

// NewInMemoryStatusCache creates a new in-memory status cache
func NewInMemoryStatusCache() *InMemoryStatusCache {
	return &InMemoryStatusCache{
		entries: make(map[string]statusEntry),
	}
}

// Get returns the cached payload for a session, if any
func (c *InMemoryStatusCache) Get(ctx context.Context, sessionID string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[sessionID]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.payload, true, nil
}

// SetIfNewer stores the payload unless a live higher-ranked entry exists
func (c *InMemoryStatusCache) SetIfNewer(ctx context.Context, sessionID string, rank int, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if e, exists := c.entries[sessionID]; exists && now.Before(e.expiresAt) && e.rank >= rank {
		return nil
	}

	c.entries[sessionID] = statusEntry{
		rank:      rank,
		payload:   payload,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Invalidate drops the cached entry for a session
func (c *InMemoryStatusCache) Invalidate(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
	return nil
}

// Close is a no-op for the in-memory cache
func (c *InMemoryStatusCache) Close() error {
	return nil
}

// Ensure InMemoryStatusCache implements StatusCache
var _ shared.StatusCache = (*InMemoryStatusCache)(nil)
