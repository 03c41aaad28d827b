package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed event IDs to short-circuit duplicate
// webhook deliveries before they reach the database. It is an optimization
// only: the durable webhook_events unique constraint is the authority, and a
// lost store entry just means the duplicate is rejected one layer lower.
type IdempotencyStore interface {
	// MarkProcessed records an event ID for ttl and reports whether it was
	// newly recorded. False means the event was already seen.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether an event ID has a live entry
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls the fast-path duplicate check
type IdempotencyConfig struct {
	// TTL bounds how long an event ID stays in the store. Stripe stops
	// retrying a delivery well within a day.
	TTL time.Duration

	// Enabled turns the fast path off entirely when false
	Enabled bool
}

// DefaultIdempotencyConfig enables the fast path with a 24 hour TTL
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
