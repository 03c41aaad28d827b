package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsPage = `{
	"current_page": 1,
	"last_page": 1,
	"data": [
		{
			"id": "prod_visible",
			"title": "Mythril Blade",
			"visible": true,
			"images": [
				{"src": "https://img.example.com/alt.png", "is_default": false},
				{"src": "https://img.example.com/blade.png", "is_default": true}
			],
			"variants": [
				{"id": 1, "price": 1800, "is_enabled": false, "is_default": true},
				{"id": 2, "price": 2600, "is_enabled": true, "is_default": false}
			]
		},
		{
			"id": "prod_hidden",
			"title": "Hidden Relic",
			"visible": false,
			"variants": [{"id": 3, "price": 900, "is_enabled": true, "is_default": true}]
		}
	]
}`

func newTestAdapter(t *testing.T, handler http.HandlerFunc) (*PrintifyAdapter, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := NewPrintifyConfig("test-key", "shop-1")
	config.APIBaseURL = server.URL

	adapter, err := NewPrintifyAdapter(config)
	require.NoError(t, err)
	return adapter, server
}

func TestPrintifyAdapter_ListItems(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shops/shop-1/products.json", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsPage))
	})

	items, err := adapter.ListItems(context.Background())
	require.NoError(t, err)

	// Hidden products are excluded; disabled variants are not priced
	require.Len(t, items, 1)
	assert.Equal(t, "prod_visible", items[0].ID)
	assert.Equal(t, "Mythril Blade", items[0].Title)
	assert.Equal(t, "https://img.example.com/blade.png", items[0].ImageURL)
	assert.Equal(t, int64(2600), items[0].PriceMinorUnits())
}

func TestPrintifyAdapter_GetItem(t *testing.T) {
	t.Run("resolves an item by id", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/shops/shop-1/products/prod_visible.json", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "prod_visible",
				"title": "Mythril Blade",
				"visible": true,
				"variants": [{"id": 2, "price": 2600, "is_enabled": true, "is_default": true}]
			}`))
		})

		item, err := adapter.GetItem(context.Background(), "prod_visible")
		require.NoError(t, err)
		assert.Equal(t, int64(2600), item.PriceMinorUnits())
	})

	t.Run("maps upstream 404 to not found", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := adapter.GetItem(context.Background(), "prod_missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// fakeCatalog counts upstream hits for cache behavior tests
type fakeCatalog struct {
	calls atomic.Int64
	items []armory.CatalogItem
	err   error
}

func (f *fakeCatalog) GetItem(ctx context.Context, itemID string) (*armory.CatalogItem, error) {
	for _, item := range f.items {
		if item.ID == itemID {
			return &item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeCatalog) ListItems(ctx context.Context) ([]armory.CatalogItem, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func TestCachedCatalog(t *testing.T) {
	t.Run("serves repeated lookups from one refresh", func(t *testing.T) {
		upstream := &fakeCatalog{items: []armory.CatalogItem{{ID: "prod_1", Title: "Blade"}}}
		cached := NewCachedCatalog(upstream, time.Minute)

		for i := 0; i < 5; i++ {
			item, err := cached.GetItem(context.Background(), "prod_1")
			require.NoError(t, err)
			assert.Equal(t, "Blade", item.Title)
		}

		assert.Equal(t, int64(1), upstream.calls.Load())
	})

	t.Run("unknown item within a fresh cache does not refetch", func(t *testing.T) {
		upstream := &fakeCatalog{items: []armory.CatalogItem{{ID: "prod_1"}}}
		cached := NewCachedCatalog(upstream, time.Minute)

		_, err := cached.GetItem(context.Background(), "prod_1")
		require.NoError(t, err)

		_, err = cached.GetItem(context.Background(), "prod_unknown")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, int64(1), upstream.calls.Load())
	})
}
