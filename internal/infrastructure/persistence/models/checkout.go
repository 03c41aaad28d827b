package models

import (
	"time"

	"github.com/armory/backend/internal/domain/checkout"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderModel is the GORM model for the session ledger. The unique index on
// stripe_session_id keeps one ledger row per processor checkout session.
type OrderModel struct {
	AggregateModel
	StripeSessionID string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_stripe_session"`
	UserID          *uuid.UUID       `gorm:"type:uuid;index:idx_orders_user"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	AmountTotal     int64            `gorm:"not null"`
	Currency        string           `gorm:"type:varchar(8);not null"`
	Status          string           `gorm:"type:varchar(20);not null;default:'CREATED';index:idx_orders_status"`
	FailureReason   string           `gorm:"type:varchar(500)"`
	PaidAt          *time.Time
	FulfilledAt     *time.Time
	FailedAt        *time.Time
}

// TableName specifies the table name for OrderModel
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts OrderModel to domain Order
func (m *OrderModel) ToDomain() *checkout.Order {
	order := &checkout.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		StripeSessionID: m.StripeSessionID,
		UserID:          m.UserID,
		Items:           make([]checkout.OrderItem, 0, len(m.Items)),
		AmountTotal:     m.AmountTotal,
		Currency:        m.Currency,
		Status:          checkout.OrderStatus(m.Status),
		FailureReason:   m.FailureReason,
		PaidAt:          m.PaidAt,
		FulfilledAt:     m.FulfilledAt,
		FailedAt:        m.FailedAt,
	}
	for _, item := range m.Items {
		order.Items = append(order.Items, *item.ToDomain())
	}
	return order
}

// FromDomain populates OrderModel from domain Order
func (m *OrderModel) FromDomain(order *checkout.Order) {
	m.FromDomainAggregateRoot(order.BaseAggregateRoot)
	m.StripeSessionID = order.StripeSessionID
	m.UserID = order.UserID
	m.AmountTotal = order.AmountTotal
	m.Currency = order.Currency
	m.Status = order.Status.String()
	m.FailureReason = order.FailureReason
	m.PaidAt = order.PaidAt
	m.FulfilledAt = order.FulfilledAt
	m.FailedAt = order.FailedAt

	m.Items = make([]OrderItemModel, 0, len(order.Items))
	for _, item := range order.Items {
		var im OrderItemModel
		im.FromDomain(&item)
		m.Items = append(m.Items, im)
	}
}

// OrderItemModel is the GORM model for order line items
type OrderItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index:idx_order_items_order"`
	ItemID    string    `gorm:"type:varchar(64);not null"`
	Title     string    `gorm:"type:varchar(255);not null"`
	UnitPrice int64     `gorm:"not null"`
	Quantity  int       `gorm:"not null"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for OrderItemModel
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts OrderItemModel to domain OrderItem
func (m *OrderItemModel) ToDomain() *checkout.OrderItem {
	return &checkout.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ItemID:    m.ItemID,
		Title:     m.Title,
		UnitPrice: m.UnitPrice,
		Quantity:  m.Quantity,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates OrderItemModel from domain OrderItem
func (m *OrderItemModel) FromDomain(item *checkout.OrderItem) {
	m.ID = item.ID
	m.OrderID = item.OrderID
	m.ItemID = item.ItemID
	m.Title = item.Title
	m.UnitPrice = item.UnitPrice
	m.Quantity = item.Quantity
	m.Position = item.Position
	m.CreatedAt = item.CreatedAt
}

// WebhookEventModel is the GORM model for webhook dedup records. The primary
// key is the processor's event ID; inserting it is how a delivery claims the
// right to mutate the ledgers.
type WebhookEventModel struct {
	EventID     string    `gorm:"type:varchar(255);primary_key"`
	Type        string    `gorm:"type:varchar(64);not null"`
	ReceivedAt  time.Time `gorm:"not null"`
	ProcessedAt *time.Time
}

// TableName specifies the table name for WebhookEventModel
func (WebhookEventModel) TableName() string {
	return "webhook_events"
}

// ToDomain converts WebhookEventModel to domain WebhookEvent
func (m *WebhookEventModel) ToDomain() *checkout.WebhookEvent {
	return &checkout.WebhookEvent{
		EventID:     m.EventID,
		Type:        m.Type,
		ReceivedAt:  m.ReceivedAt,
		ProcessedAt: m.ProcessedAt,
	}
}

// FromDomain populates WebhookEventModel from domain WebhookEvent
func (m *WebhookEventModel) FromDomain(event *checkout.WebhookEvent) {
	m.EventID = event.EventID
	m.Type = event.Type
	m.ReceivedAt = event.ReceivedAt
	m.ProcessedAt = event.ProcessedAt
}
