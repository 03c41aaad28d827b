package checkout

import (
	"time"

	"github.com/armory/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderStatus represents the fulfillment lifecycle stage of an order
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusPaid, OrderStatusFulfilled, OrderStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// The lifecycle only moves forward; FULFILLED and FAILED are terminal.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusCreated:
		return target == OrderStatusPaid || target == OrderStatusFailed
	case OrderStatusPaid:
		return target == OrderStatusFulfilled || target == OrderStatusFailed
	case OrderStatusFulfilled, OrderStatusFailed:
		return false
	}
	return false
}

// Rank returns the position of the status in the forward lifecycle.
// Used by read models to guard against serving an earlier stage after a
// later one has been observed.
func (s OrderStatus) Rank() int {
	switch s {
	case OrderStatusCreated:
		return 0
	case OrderStatusPaid:
		return 1
	case OrderStatusFulfilled:
		return 2
	case OrderStatusFailed:
		return 3
	}
	return -1
}

// OrderItem represents a line item in an order.
// Items are immutable after the order is created: they are exactly what the
// buyer committed to pay for.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ItemID    string
	Title     string
	UnitPrice int64 // minor currency units
	Quantity  int
	Position  int
	CreatedAt time.Time
}

// NewOrderItem creates a new order line item
func NewOrderItem(orderID uuid.UUID, itemID, title string, unitPrice int64, quantity, position int) (*OrderItem, error) {
	if itemID == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if unitPrice < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ItemID:    itemID,
		Title:     title,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Position:  position,
		CreatedAt: time.Now(),
	}, nil
}

// Subtotal returns quantity * unit price in minor units
func (i *OrderItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Order represents a declared purchase intent, keyed by the payment
// processor's checkout session. It is the aggregate root of the session
// ledger: created before the buyer is redirected to pay, advanced only by
// verified webhook events, and never deleted.
type Order struct {
	shared.BaseAggregateRoot
	StripeSessionID string
	UserID          *uuid.UUID // nil until payment confirms identity binding
	Items           []OrderItem
	AmountTotal     int64 // minor currency units, includes shipping surcharge
	Currency        string
	Status          OrderStatus
	FailureReason   string
	PaidAt          *time.Time
	FulfilledAt     *time.Time
	FailedAt        *time.Time
}

// NewOrder creates a new order in CREATED state
func NewOrder(stripeSessionID string, userID *uuid.UUID, amountTotal int64, currency string) (*Order, error) {
	if stripeSessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Stripe session ID cannot be empty")
	}
	if amountTotal <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount total must be positive")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StripeSessionID:   stripeSessionID,
		UserID:            userID,
		Items:             make([]OrderItem, 0),
		AmountTotal:       amountTotal,
		Currency:          currency,
		Status:            OrderStatusCreated,
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// AddItem appends a line item. Only allowed while the order is CREATED and
// not yet persisted; the item list is immutable once the buyer has committed.
func (o *Order) AddItem(itemID, title string, unitPrice int64, quantity int) (*OrderItem, error) {
	if o.Status != OrderStatusCreated {
		return nil, shared.ErrInvalidState
	}

	item, err := NewOrderItem(o.ID, itemID, title, unitPrice, quantity, len(o.Items))
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.UpdatedAt = time.Now()

	return item, nil
}

// BindUser attaches the buyer's identity once the payment confirms it.
// A no-op when the order is already bound to the same user.
func (o *Order) BindUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if o.UserID != nil && *o.UserID != userID {
		return shared.NewDomainError("USER_MISMATCH", "Order is already bound to a different user")
	}
	o.UserID = &userID
	o.UpdatedAt = time.Now()
	return nil
}

// MarkPaid advances the order to PAID. Replays against an order that already
// progressed are an idempotent no-op, not an error.
func (o *Order) MarkPaid() error {
	switch o.Status {
	case OrderStatusPaid, OrderStatusFulfilled:
		return nil
	case OrderStatusFailed:
		return shared.ErrInvalidState
	}

	now := time.Now()
	o.Status = OrderStatusPaid
	o.PaidAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// MarkFulfilled advances the order to the terminal FULFILLED state
func (o *Order) MarkFulfilled() error {
	if o.Status == OrderStatusFulfilled {
		return nil
	}
	if !o.Status.CanTransitionTo(OrderStatusFulfilled) {
		return shared.ErrInvalidState
	}

	now := time.Now()
	o.Status = OrderStatusFulfilled
	o.FulfilledAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderFulfilledEvent(o))
	return nil
}

// MarkFailed moves the order to the terminal FAILED state
func (o *Order) MarkFailed(reason string) error {
	if o.Status == OrderStatusFailed {
		return nil
	}
	if !o.Status.CanTransitionTo(OrderStatusFailed) {
		return shared.ErrInvalidState
	}

	now := time.Now()
	o.Status = OrderStatusFailed
	o.FailureReason = reason
	o.FailedAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderFailedEvent(o, reason))
	return nil
}

// UnitCount returns the total number of purchased units across all items
func (o *Order) UnitCount() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// ItemsSubtotal returns the sum of item subtotals, excluding shipping
func (o *Order) ItemsSubtotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}
