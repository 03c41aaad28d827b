package status

import (
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/google/uuid"
)

// SessionItemStatus is one line item of a session status response
type SessionItemStatus struct {
	ItemID    string `json:"item_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// SessionStatusResponse is the pollable per-session read model
type SessionStatusResponse struct {
	SessionID     string              `json:"session_id"`
	OrderID       uuid.UUID           `json:"order_id"`
	Status        string              `json:"status"`
	AmountTotal   int64               `json:"amount_total"`
	Currency      string              `json:"currency"`
	Items         []SessionItemStatus `json:"items"`
	UnitsGranted  int                 `json:"units_granted"`
	XPAwarded     int64               `json:"xp_awarded"`
	FailureReason string              `json:"failure_reason,omitempty"`
}

// InventoryEntry is one granted unit in a user's inventory
type InventoryEntry struct {
	GrantID        uuid.UUID `json:"grant_id"`
	ItemID         string    `json:"item_id"`
	Title          string    `json:"title"`
	UnitNo         int       `json:"unit_no"`
	DeliveryStatus string    `json:"delivery_status"`
	GrantedAt      time.Time `json:"granted_at"`
}

// UserStatusResponse is the authenticated user's progress read model
type UserStatusResponse struct {
	UserID    uuid.UUID        `json:"user_id"`
	XP        int64            `json:"xp"`
	Inventory []InventoryEntry `json:"inventory"`
}

// toInventoryEntries converts domain grants to API entries
func toInventoryEntries(grants []armory.InventoryGrant) []InventoryEntry {
	entries := make([]InventoryEntry, 0, len(grants))
	for _, grant := range grants {
		entries = append(entries, InventoryEntry{
			GrantID:        grant.ID,
			ItemID:         grant.ItemID,
			Title:          grant.Title,
			UnitNo:         grant.UnitNo,
			DeliveryStatus: grant.DeliveryStatus.String(),
			GrantedAt:      grant.GrantedAt,
		})
	}
	return entries
}
