package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByStripeSessionID finds an order by the processor's session reference
	FindByStripeSessionID(ctx context.Context, sessionID string) (*Order, error)

	// FindByUser finds a user's orders, most recent first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, order *Order) error
}

// WebhookEventRepository defines the interface for webhook dedup records
type WebhookEventRepository interface {
	// FindByEventID finds a dedup record by the processor's event ID
	FindByEventID(ctx context.Context, eventID string) (*WebhookEvent, error)

	// CountProcessedSince reports how many events were processed in the
	// trailing window. Used by the delivery reconciliation loop to decide
	// whether there is recent activity worth scanning.
	CountProcessedSince(ctx context.Context, since time.Time) (int64, error)
}
