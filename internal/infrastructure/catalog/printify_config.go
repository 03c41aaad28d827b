package catalog

import "errors"

// PrintifyConfig holds configuration for the Printify catalog API
type PrintifyConfig struct {
	// APIKey is the Printify personal access token
	APIKey string
	// ShopID is the shop whose products form the storefront catalog
	ShopID string
	// APIBaseURL is the base URL for the Printify API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// PrintifyProductionAPIURL is the production API endpoint
const PrintifyProductionAPIURL = "https://api.printify.com/v1"

// Errors for Printify configuration
var (
	ErrPrintifyConfigMissingAPIKey = errors.New("printify: API key is required")
	ErrPrintifyConfigMissingShop   = errors.New("printify: shop ID is required")
)

// NewPrintifyConfig creates a new Printify configuration with defaults
func NewPrintifyConfig(apiKey, shopID string) *PrintifyConfig {
	return &PrintifyConfig{
		APIKey:         apiKey,
		ShopID:         shopID,
		APIBaseURL:     PrintifyProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Printify configuration
func (c *PrintifyConfig) Validate() error {
	if c.APIKey == "" {
		return ErrPrintifyConfigMissingAPIKey
	}
	if c.ShopID == "" {
		return ErrPrintifyConfigMissingShop
	}
	return nil
}
