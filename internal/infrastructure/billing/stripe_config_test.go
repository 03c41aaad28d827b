package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *StripeConfig {
	return &StripeConfig{
		SecretKey:     "sk_test_123456789",
		WebhookSecret: "whsec_test",
		IsTestMode:    true,
		Currency:      "usd",
		ShippingFee:   1400,
		ShippingLabel: "Worldwide Shipping",
	}
}

func TestStripeConfig_Validate(t *testing.T) {
	t.Run("accepts valid test config", func(t *testing.T) {
		assert.NoError(t, validTestConfig().Validate())
	})

	t.Run("requires secret key", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.SecretKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects live key in test mode", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.SecretKey = "sk_live_123456789"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects test key in live mode", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.IsTestMode = false
		assert.Error(t, cfg.Validate())
	})

	t.Run("requires currency", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.Currency = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects negative shipping fee", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.ShippingFee = -1
		assert.Error(t, cfg.Validate())
	})
}
