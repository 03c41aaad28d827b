package armory

import (
	"time"

	"github.com/armory/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeliveryStatus represents how far along a granted item is in delivery
type DeliveryStatus string

const (
	DeliveryStatusGranted   DeliveryStatus = "GRANTED"
	DeliveryStatusInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
)

// IsValid checks if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusGranted, DeliveryStatusInTransit, DeliveryStatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of DeliveryStatus
func (s DeliveryStatus) String() string {
	return string(s)
}

// Rank returns the position of the status in the delivery lifecycle
func (s DeliveryStatus) Rank() int {
	switch s {
	case DeliveryStatusGranted:
		return 0
	case DeliveryStatusInTransit:
		return 1
	case DeliveryStatusDelivered:
		return 2
	}
	return -1
}

// Next returns the following delivery stage, or the same stage when terminal
func (s DeliveryStatus) Next() DeliveryStatus {
	switch s {
	case DeliveryStatusGranted:
		return DeliveryStatusInTransit
	case DeliveryStatusInTransit:
		return DeliveryStatusDelivered
	}
	return s
}

// InventoryGrant is one durable row per purchased unit actually granted to a
// user. The (stripe_session_id, item_id, unit_no) uniqueness is what makes
// granting at-most-once under webhook retries: ownership of the grant is won
// by the insert, not by any lock.
type InventoryGrant struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	OrderID         uuid.UUID
	StripeSessionID string
	ItemID          string
	Title           string
	UnitNo          int // 1-based unit index within the cart quantity
	DeliveryStatus  DeliveryStatus
	GrantedAt       time.Time
	UpdatedAt       time.Time
}

// NewInventoryGrant creates a grant for one purchased unit
func NewInventoryGrant(userID, orderID uuid.UUID, stripeSessionID, itemID, title string, unitNo int) (*InventoryGrant, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if stripeSessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Stripe session ID cannot be empty")
	}
	if itemID == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if unitNo < 1 {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit number must be positive")
	}

	now := time.Now()
	return &InventoryGrant{
		ID:              uuid.New(),
		UserID:          userID,
		OrderID:         orderID,
		StripeSessionID: stripeSessionID,
		ItemID:          itemID,
		Title:           title,
		UnitNo:          unitNo,
		DeliveryStatus:  DeliveryStatusGranted,
		GrantedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// AdvanceDelivery moves the grant one stage forward. Advancement is
// best-effort reconciliation state, lower-stakes than the grant itself:
// a lost update is corrected on the next pass.
func (g *InventoryGrant) AdvanceDelivery() bool {
	next := g.DeliveryStatus.Next()
	if next == g.DeliveryStatus {
		return false
	}
	g.DeliveryStatus = next
	g.UpdatedAt = time.Now()
	return true
}
