package models

import (
	"time"

	"github.com/armory/backend/internal/domain/progression"
	"github.com/google/uuid"
)

// XPCreditModel is the GORM model for the XP ledger. One row per paid
// session; the unique index on stripe_session_id makes the credit
// at-most-once under webhook retries.
type XPCreditModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_xp_credits_user"`
	StripeSessionID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_xp_credits_stripe_session"`
	Amount          int64     `gorm:"not null"`
	CreditedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name for XPCreditModel
func (XPCreditModel) TableName() string {
	return "xp_credits"
}

// ToDomain converts XPCreditModel to domain XPCredit
func (m *XPCreditModel) ToDomain() *progression.XPCredit {
	return &progression.XPCredit{
		ID:              m.ID,
		UserID:          m.UserID,
		StripeSessionID: m.StripeSessionID,
		Amount:          m.Amount,
		CreditedAt:      m.CreditedAt,
	}
}

// FromDomain populates XPCreditModel from domain XPCredit
func (m *XPCreditModel) FromDomain(credit *progression.XPCredit) {
	m.ID = credit.ID
	m.UserID = credit.UserID
	m.StripeSessionID = credit.StripeSessionID
	m.Amount = credit.Amount
	m.CreditedAt = credit.CreditedAt
}

// UserProgressModel is the GORM model for the per-user XP running total
type UserProgressModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primary_key"`
	XP        int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for UserProgressModel
func (UserProgressModel) TableName() string {
	return "user_progress"
}

// ToDomain converts UserProgressModel to domain UserProgress
func (m *UserProgressModel) ToDomain() *progression.UserProgress {
	return &progression.UserProgress{
		UserID:    m.UserID,
		XP:        m.XP,
		UpdatedAt: m.UpdatedAt,
	}
}
