package models

import (
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/google/uuid"
)

// InventoryGrantModel is the GORM model for the inventory ledger. The
// composite unique index on (stripe_session_id, item_id, unit_no) is the
// at-most-once guarantee: a retried fulfillment that tries to grant the same
// unit again fails the insert instead of duplicating the row.
type InventoryGrantModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_grants_user"`
	OrderID         uuid.UUID `gorm:"type:uuid;not null;index:idx_grants_order"`
	StripeSessionID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_grants_session_item_unit,priority:1"`
	ItemID          string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_grants_session_item_unit,priority:2"`
	UnitNo          int       `gorm:"not null;uniqueIndex:idx_grants_session_item_unit,priority:3"`
	Title           string    `gorm:"type:varchar(255);not null"`
	DeliveryStatus  string    `gorm:"type:varchar(20);not null;default:'GRANTED';index:idx_grants_delivery_status"`
	GrantedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName specifies the table name for InventoryGrantModel
func (InventoryGrantModel) TableName() string {
	return "inventory_grants"
}

// ToDomain converts InventoryGrantModel to domain InventoryGrant
func (m *InventoryGrantModel) ToDomain() *armory.InventoryGrant {
	return &armory.InventoryGrant{
		ID:              m.ID,
		UserID:          m.UserID,
		OrderID:         m.OrderID,
		StripeSessionID: m.StripeSessionID,
		ItemID:          m.ItemID,
		Title:           m.Title,
		UnitNo:          m.UnitNo,
		DeliveryStatus:  armory.DeliveryStatus(m.DeliveryStatus),
		GrantedAt:       m.GrantedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates InventoryGrantModel from domain InventoryGrant
func (m *InventoryGrantModel) FromDomain(grant *armory.InventoryGrant) {
	m.ID = grant.ID
	m.UserID = grant.UserID
	m.OrderID = grant.OrderID
	m.StripeSessionID = grant.StripeSessionID
	m.ItemID = grant.ItemID
	m.Title = grant.Title
	m.UnitNo = grant.UnitNo
	m.DeliveryStatus = grant.DeliveryStatus.String()
	m.GrantedAt = grant.GrantedAt
	m.UpdatedAt = grant.UpdatedAt
}
