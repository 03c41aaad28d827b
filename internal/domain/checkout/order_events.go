package checkout

import (
	"github.com/armory/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated   = "OrderCreated"
	EventTypeOrderPaid      = "OrderPaid"
	EventTypeOrderFulfilled = "OrderFulfilled"
	EventTypeOrderFailed    = "OrderFailed"
)

// OrderCreatedEvent is raised when a checkout session is recorded
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID `json:"order_id"`
	StripeSessionID string    `json:"stripe_session_id"`
	AmountTotal     int64     `json:"amount_total"`
	Currency        string    `json:"currency"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		StripeSessionID: order.StripeSessionID,
		AmountTotal:     order.AmountTotal,
		Currency:        order.Currency,
	}
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// OrderPaidEvent is raised when a verified payment notification confirms payment
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID  `json:"order_id"`
	StripeSessionID string     `json:"stripe_session_id"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	AmountTotal     int64      `json:"amount_total"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(order *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		StripeSessionID: order.StripeSessionID,
		UserID:          order.UserID,
		AmountTotal:     order.AmountTotal,
	}
}

// EventType returns the event type name
func (e *OrderPaidEvent) EventType() string {
	return EventTypeOrderPaid
}

// OrderFulfilledEvent is raised when grants and XP have been durably credited
type OrderFulfilledEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID  `json:"order_id"`
	StripeSessionID string     `json:"stripe_session_id"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	UnitCount       int        `json:"unit_count"`
}

// NewOrderFulfilledEvent creates a new OrderFulfilledEvent
func NewOrderFulfilledEvent(order *Order) *OrderFulfilledEvent {
	return &OrderFulfilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFulfilled, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		StripeSessionID: order.StripeSessionID,
		UserID:          order.UserID,
		UnitCount:       order.UnitCount(),
	}
}

// EventType returns the event type name
func (e *OrderFulfilledEvent) EventType() string {
	return EventTypeOrderFulfilled
}

// OrderFailedEvent is raised when the processor reports a failed or expired payment
type OrderFailedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID `json:"order_id"`
	StripeSessionID string    `json:"stripe_session_id"`
	Reason          string    `json:"reason"`
}

// NewOrderFailedEvent creates a new OrderFailedEvent
func NewOrderFailedEvent(order *Order, reason string) *OrderFailedEvent {
	return &OrderFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFailed, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		StripeSessionID: order.StripeSessionID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *OrderFailedEvent) EventType() string {
	return EventTypeOrderFailed
}
