package checkout

import (
	"context"
	"errors"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/checkout"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/billing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionCreator creates hosted payment sessions at the processor
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, input billing.CreateCheckoutSessionInput) (*billing.CreateCheckoutSessionOutput, error)
}

// Service handles checkout business operations: it prices the cart from the
// catalog, verifies the client's claimed total, opens the Stripe session and
// records the order in the session ledger before the buyer is redirected.
type Service struct {
	orderRepo   checkout.OrderRepository
	catalog     armory.Catalog
	sessions    SessionCreator
	currency    string
	shippingFee int64
	logger      *zap.Logger
}

// ServiceConfig contains configuration for the checkout Service
type ServiceConfig struct {
	OrderRepo   checkout.OrderRepository
	Catalog     armory.Catalog
	Sessions    SessionCreator
	Currency    string
	ShippingFee int64
	Logger      *zap.Logger
}

// NewService creates a new checkout Service
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		orderRepo:   cfg.OrderRepo,
		catalog:     cfg.Catalog,
		sessions:    cfg.Sessions,
		currency:    cfg.Currency,
		shippingFee: cfg.ShippingFee,
		logger:      cfg.Logger,
	}
}

// CreateCheckout prices the cart, verifies the claimed total, creates the
// Stripe Checkout session and persists the CREATED order. The order must be
// durable before the response leaves, otherwise a fast webhook could arrive
// for a session the ledger has never heard of.
func (s *Service) CreateCheckout(ctx context.Context, userID *uuid.UUID, req CreateCheckoutRequest) (*CreateCheckoutResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	priced, total, err := s.priceCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	total += s.shippingFee

	if req.ClaimedTotal != total {
		s.logger.Warn("Checkout claimed total mismatch",
			zap.Int64("claimed", req.ClaimedTotal),
			zap.Int64("recomputed", total))
		return nil, ErrAmountMismatch
	}

	orderID := uuid.New()
	session, err := s.sessions.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionInput{
		OrderID:   orderID,
		UserID:    userID,
		LineItems: priced,
		Currency:  s.currency,
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session", zap.Error(err))
		return nil, ErrPaymentProvider
	}

	order, err := checkout.NewOrder(session.SessionID, userID, total, s.currency)
	if err != nil {
		return nil, err
	}
	order.ID = orderID

	for _, line := range priced {
		if _, err := order.AddItem(line.ItemID, line.Name, line.UnitAmount, line.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.Error("Failed to persist order",
			zap.String("session_id", session.SessionID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Checkout session created",
		zap.String("order_id", orderID.String()),
		zap.String("session_id", session.SessionID),
		zap.Int64("amount_total", total),
		zap.Int("items", len(priced)))

	return &CreateCheckoutResponse{
		SessionID:   session.SessionID,
		RedirectURL: session.URL,
		OrderID:     orderID.String(),
		AmountTotal: total,
		Currency:    s.currency,
	}, nil
}

// GetOrderBySession returns an order from the session ledger
func (s *Service) GetOrderBySession(ctx context.Context, sessionID string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByStripeSessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// priceCart resolves every cart item against the catalog and returns the
// priced line items plus their subtotal in minor units
func (s *Service) priceCart(ctx context.Context, items []CartItemInput) ([]billing.CheckoutLineItem, int64, error) {
	priced := make([]billing.CheckoutLineItem, 0, len(items))
	total := int64(0)

	for _, input := range items {
		item, err := s.catalog.GetItem(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, 0, ErrItemNotFound
			}
			return nil, 0, err
		}

		unitPrice := item.PriceMinorUnits()
		priced = append(priced, billing.CheckoutLineItem{
			ItemID:     item.ID,
			Name:       item.Title,
			UnitAmount: unitPrice,
			Quantity:   input.Quantity,
		})
		total += unitPrice * int64(input.Quantity)
	}

	return priced, total, nil
}
