package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// maxPrintifyResponseSize limits the response body size to prevent memory exhaustion
const maxPrintifyResponseSize = 10 * 1024 * 1024 // 10MB max response

// minorUnitsPerMajor converts Printify's minor-unit prices to decimal amounts
const minorUnitsPerMajor = 100

// PrintifyAdapter implements the armory.Catalog interface against the
// Printify products API. Items are the storefront's source of truth for
// titles and prices; nothing client-supplied overrides them.
type PrintifyAdapter struct {
	config     *PrintifyConfig
	httpClient *http.Client
}

// NewPrintifyAdapter creates a new Printify adapter with the given configuration
func NewPrintifyAdapter(config *PrintifyConfig) (*PrintifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &PrintifyAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// ListItems returns every visible catalog item in the shop
func (a *PrintifyAdapter) ListItems(ctx context.Context) ([]armory.CatalogItem, error) {
	items := make([]armory.CatalogItem, 0)

	page := 1
	for {
		resp, err := a.fetchProductsPage(ctx, page)
		if err != nil {
			return nil, err
		}

		for _, product := range resp.Data {
			item, ok := a.toCatalogItem(product)
			if !ok {
				continue
			}
			items = append(items, item)
		}

		if resp.LastPage == 0 || page >= resp.LastPage {
			break
		}
		page++
	}

	return items, nil
}

// GetItem returns a single catalog item by its Printify product ID
func (a *PrintifyAdapter) GetItem(ctx context.Context, itemID string) (*armory.CatalogItem, error) {
	url := fmt.Sprintf("%s/shops/%s/products/%s.json", a.config.APIBaseURL, a.config.ShopID, itemID)

	var product printifyProduct
	if err := a.getJSON(ctx, url, &product); err != nil {
		return nil, err
	}

	item, ok := a.toCatalogItem(product)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &item, nil
}

func (a *PrintifyAdapter) fetchProductsPage(ctx context.Context, page int) (*printifyProductsResponse, error) {
	url := fmt.Sprintf("%s/shops/%s/products.json?page=%s",
		a.config.APIBaseURL, a.config.ShopID, strconv.Itoa(page))

	var resp printifyProductsResponse
	if err := a.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *PrintifyAdapter) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("printify: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("printify: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("printify: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPrintifyResponseSize))
	if err != nil {
		return fmt.Errorf("printify: failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("printify: failed to decode response: %w", err)
	}
	return nil
}

// toCatalogItem maps a Printify product to a catalog item. Hidden products
// and products without an enabled variant are skipped.
func (a *PrintifyAdapter) toCatalogItem(product printifyProduct) (armory.CatalogItem, bool) {
	if !product.Visible {
		return armory.CatalogItem{}, false
	}

	price, ok := defaultVariantPrice(product.Variants)
	if !ok {
		return armory.CatalogItem{}, false
	}

	return armory.CatalogItem{
		ID:       product.ID,
		Title:    product.Title,
		ImageURL: defaultImage(product.Images),
		Price:    decimal.NewFromInt(price).Div(decimal.NewFromInt(minorUnitsPerMajor)),
	}, true
}

func defaultVariantPrice(variants []printifyVariant) (int64, bool) {
	var fallback *printifyVariant
	for i := range variants {
		v := &variants[i]
		if !v.IsEnabled {
			continue
		}
		if v.IsDefault {
			return v.Price, true
		}
		if fallback == nil {
			fallback = v
		}
	}
	if fallback != nil {
		return fallback.Price, true
	}
	return 0, false
}

func defaultImage(images []printifyImage) string {
	for _, img := range images {
		if img.IsDefault {
			return img.Src
		}
	}
	if len(images) > 0 {
		return images[0].Src
	}
	return ""
}
