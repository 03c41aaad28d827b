package billing

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutLineItem is one cart entry priced server-side
type CheckoutLineItem struct {
	ItemID     string
	Name       string
	UnitAmount int64 // minor currency units
	Quantity   int
}

// CreateCheckoutSessionInput contains input for creating a Stripe Checkout session
type CreateCheckoutSessionInput struct {
	OrderID   uuid.UUID
	UserID    *uuid.UUID
	LineItems []CheckoutLineItem
	Currency  string
}

// CreateCheckoutSessionOutput contains the result of creating a Checkout session
type CreateCheckoutSessionOutput struct {
	SessionID   string
	URL         string
	AmountTotal int64
	ExpiresAt   time.Time
}

// SessionDetails is a point-in-time view of a Checkout session at Stripe,
// used by reconciliation reads
type SessionDetails struct {
	SessionID         string
	PaymentStatus     string
	Status            string
	AmountTotal       int64
	Currency          string
	ClientReferenceID string
}
