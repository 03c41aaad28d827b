package armory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GrantRepository defines the interface for inventory grant persistence
type GrantRepository interface {
	// FindByUser returns a user's grants ordered by grant time then unit
	FindByUser(ctx context.Context, userID uuid.UUID) ([]InventoryGrant, error)

	// FindByStripeSessionID returns the grants produced by one paid session
	FindByStripeSessionID(ctx context.Context, sessionID string) ([]InventoryGrant, error)

	// FindStale returns grants whose delivery status has not moved since the
	// cutoff and is not yet terminal
	FindStale(ctx context.Context, before time.Time, limit int) ([]InventoryGrant, error)

	// UpdateDeliveryStatus advances a grant's delivery status. The update is
	// guarded so a concurrent later stage is never overwritten with an
	// earlier one; returns false when the guard rejected the write.
	UpdateDeliveryStatus(ctx context.Context, grantID uuid.UUID, status DeliveryStatus) (bool, error)
}
