package progression

import (
	"time"

	"github.com/armory/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MinorUnitsPerXP is the deterministic XP exchange rate: one experience
// point per whole major currency unit paid (100 minor units). The amount is
// always derived from the order's stored total, never from webhook input, so
// a replayed or forged notification cannot amplify the credit.
const MinorUnitsPerXP = 100

// XPForAmount returns the XP earned for an order total in minor units
func XPForAmount(amountTotal int64) int64 {
	if amountTotal <= 0 {
		return 0
	}
	return amountTotal / MinorUnitsPerXP
}

// XPCredit is one durable row per paid session. Uniqueness on the session
// reference makes crediting at-most-once regardless of retries.
type XPCredit struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	StripeSessionID string
	Amount          int64
	CreditedAt      time.Time
}

// NewXPCredit creates the XP credit for a paid order
func NewXPCredit(userID uuid.UUID, stripeSessionID string, amount int64) (*XPCredit, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if stripeSessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Stripe session ID cannot be empty")
	}
	if amount < 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "XP amount cannot be negative")
	}

	return &XPCredit{
		ID:              uuid.New(),
		UserID:          userID,
		StripeSessionID: stripeSessionID,
		Amount:          amount,
		CreditedAt:      time.Now(),
	}, nil
}

// UserProgress is the per-user XP running total read model
type UserProgress struct {
	UserID    uuid.UUID
	XP        int64
	UpdatedAt time.Time
}
