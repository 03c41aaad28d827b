package checkout

import (
	"time"

	"github.com/armory/backend/internal/domain/checkout"
	"github.com/google/uuid"
)

// CartItemInput is one client-submitted cart entry. Only identity and
// quantity are trusted; pricing is resolved server-side.
type CartItemInput struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// CreateCheckoutRequest represents a request to start a checkout session
type CreateCheckoutRequest struct {
	Items []CartItemInput `json:"items" binding:"required"`

	// ClaimedTotal is the total the client displayed to the buyer, in minor
	// currency units. It is verified against the server-side recomputation
	// and rejected on any disagreement.
	ClaimedTotal int64 `json:"claimed_total" binding:"required"`
}

// CreateCheckoutResponse represents the created checkout session
type CreateCheckoutResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	OrderID     string `json:"order_id"`
	AmountTotal int64  `json:"amount_total"`
	Currency    string `json:"currency"`
}

// OrderItemResponse represents one line item of an order
type OrderItemResponse struct {
	ItemID    string `json:"item_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	StripeSessionID string              `json:"stripe_session_id"`
	Status          string              `json:"status"`
	AmountTotal     int64               `json:"amount_total"`
	Currency        string              `json:"currency"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	FulfilledAt     *time.Time          `json:"fulfilled_at,omitempty"`
	FailureReason   string              `json:"failure_reason,omitempty"`
}

// ToOrderResponse converts a domain order to its API representation
func ToOrderResponse(order *checkout.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ItemID:    item.ItemID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}

	return OrderResponse{
		ID:              order.ID,
		StripeSessionID: order.StripeSessionID,
		Status:          order.Status.String(),
		AmountTotal:     order.AmountTotal,
		Currency:        order.Currency,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		PaidAt:          order.PaidAt,
		FulfilledAt:     order.FulfilledAt,
		FailureReason:   order.FailureReason,
	}
}
