package shared

import (
	"context"
	"time"
)

// StatusCache is a short-TTL read-model cache for per-session status
// payloads. Entries carry the rank of the lifecycle stage they were rendered
// from; a write with a lower rank than the cached one must be discarded so
// the read model never appears to move backwards, even when a stale reader
// races a fulfillment commit.
type StatusCache interface {
	// Get returns the cached payload for a session, if any
	Get(ctx context.Context, sessionID string) ([]byte, bool, error)

	// SetIfNewer stores the payload unless the cache already holds an entry
	// with an equal or higher rank
	SetIfNewer(ctx context.Context, sessionID string, rank int, payload []byte, ttl time.Duration) error

	// Invalidate drops the cached entry for a session
	Invalidate(ctx context.Context, sessionID string) error

	// Close closes the cache and releases resources
	Close() error
}
