package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"go.uber.org/zap"
)

// StripeAdapter implements Stripe Checkout operations for the storefront
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Initialize Stripe client
	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// CreateCheckoutSession creates a hosted Checkout session for a priced cart.
// Amounts come exclusively from the input; nothing client-supplied reaches
// Stripe. The order ID travels in metadata and the user identity in
// client_reference_id so both come back on the webhook.
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, input CreateCheckoutSessionInput) (*CreateCheckoutSessionOutput, error) {
	a.logger.Debug("Creating Stripe checkout session",
		zap.String("order_id", input.OrderID.String()),
		zap.Int("line_items", len(input.LineItems)))

	currency := input.Currency
	if currency == "" {
		currency = a.config.Currency
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.LineItems)+1)
	for _, item := range input.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	if a.config.ShippingFee > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(a.config.ShippingFee),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(a.config.ShippingLabel),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(a.config.SuccessURL),
		CancelURL:  stripe.String(a.config.CancelURL),
	}
	params.AddMetadata("order_id", input.OrderID.String())

	if input.UserID != nil {
		params.ClientReferenceID = stripe.String(input.UserID.String())
	}

	if len(a.config.AllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(a.config.AllowedCountries),
		}
	}

	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("order_id", input.OrderID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	a.logger.Info("Created Stripe checkout session",
		zap.String("order_id", input.OrderID.String()),
		zap.String("session_id", sess.ID),
		zap.Int64("amount_total", sess.AmountTotal))

	return &CreateCheckoutSessionOutput{
		SessionID:   sess.ID,
		URL:         sess.URL,
		AmountTotal: sess.AmountTotal,
		ExpiresAt:   time.Unix(sess.ExpiresAt, 0),
	}, nil
}

// GetCheckoutSession retrieves a Checkout session from Stripe
func (a *StripeAdapter) GetCheckoutSession(ctx context.Context, sessionID string) (*SessionDetails, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		a.logger.Error("Failed to get Stripe checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to get checkout session: %w", err)
	}

	return &SessionDetails{
		SessionID:         sess.ID,
		PaymentStatus:     string(sess.PaymentStatus),
		Status:            string(sess.Status),
		AmountTotal:       sess.AmountTotal,
		Currency:          string(sess.Currency),
		ClientReferenceID: sess.ClientReferenceID,
	}, nil
}
