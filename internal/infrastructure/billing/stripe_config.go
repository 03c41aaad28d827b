package billing

import (
	"fmt"

	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds configuration for Stripe Checkout integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`

	// PublishableKey is the Stripe publishable key for frontend (pk_test_xxx or pk_live_xxx)
	PublishableKey string `json:"publishable_key" mapstructure:"publishable_key"`

	// WebhookSecret is the secret for verifying webhook signatures
	WebhookSecret string `json:"webhook_secret" mapstructure:"webhook_secret"`

	// IsTestMode indicates if using Stripe test mode
	IsTestMode bool `json:"is_test_mode" mapstructure:"is_test_mode"`

	// Currency is the checkout currency (e.g., "usd")
	Currency string `json:"currency" mapstructure:"currency"`

	// SuccessURL is the URL to redirect after successful checkout.
	// The {CHECKOUT_SESSION_ID} placeholder is filled in by Stripe.
	SuccessURL string `json:"success_url" mapstructure:"success_url"`

	// CancelURL is the URL to redirect after cancelled checkout
	CancelURL string `json:"cancel_url" mapstructure:"cancel_url"`

	// ShippingFee is the flat shipping surcharge in minor currency units,
	// added to every cart as its own line item
	ShippingFee int64 `json:"shipping_fee" mapstructure:"shipping_fee"`

	// ShippingLabel is the display name of the shipping line item
	ShippingLabel string `json:"shipping_label" mapstructure:"shipping_label"`

	// AllowedCountries restricts shipping address collection
	AllowedCountries []string `json:"allowed_countries" mapstructure:"allowed_countries"`
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}

	// Validate key format
	if c.IsTestMode {
		if len(c.SecretKey) > 7 && c.SecretKey[:7] != "sk_test" {
			return fmt.Errorf("stripe: test mode enabled but secret key is not a test key")
		}
	} else {
		if len(c.SecretKey) > 7 && c.SecretKey[:7] != "sk_live" {
			return fmt.Errorf("stripe: live mode enabled but secret key is not a live key")
		}
	}

	if c.Currency == "" {
		return fmt.Errorf("stripe: currency is required")
	}

	if c.ShippingFee < 0 {
		return fmt.Errorf("stripe: shipping fee cannot be negative")
	}

	return nil
}

// InitStripeClient initializes the Stripe client with the configured API key
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
