package cache

import (
	"context"
	"sync"
	"time"

	"github.com/armory/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps processed webhook event IDs in a map with
// per-entry expiry. Suitable for single-instance deployments and testing; a
// multi-node deployment needs the Redis store so every node sees the same
// fast path.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	expiry    map[string]time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts a background
// sweep of expired entries
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		expiry:   make(map[string]time.Time),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.sweepLoop()

	return store
}

// MarkProcessed records a webhook event ID for ttl. It reports whether the
// ID was newly recorded; false means a live entry already existed.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, exists := s.expiry[eventID]; exists && now.Before(deadline) {
		return false, nil
	}
	s.expiry[eventID] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether eventID has a live entry. Expired entries
// count as unseen.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	deadline, exists := s.expiry[eventID]
	s.mu.RUnlock()

	return exists && time.Now().Before(deadline), nil
}

// Close stops the sweep goroutine
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stopChan:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for eventID, deadline := range s.expiry {
		if now.After(deadline) {
			delete(s.expiry, eventID)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
