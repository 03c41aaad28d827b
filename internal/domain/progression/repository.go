package progression

import (
	"context"

	"github.com/google/uuid"
)

// XPRepository defines the interface for XP ledger reads
type XPRepository interface {
	// GetProgress returns a user's running XP total; zero for unknown users
	GetProgress(ctx context.Context, userID uuid.UUID) (*UserProgress, error)

	// FindCreditBySessionID returns the credit row for a paid session, or
	// shared.ErrNotFound when the session has not been credited
	FindCreditBySessionID(ctx context.Context, sessionID string) (*XPCredit, error)
}
