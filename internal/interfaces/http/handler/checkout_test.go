package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	checkoutapp "github.com/armory/backend/internal/application/checkout"
	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/checkout"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/billing"
	"github.com/armory/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeCatalog serves a fixed price list
type fakeCatalog struct {
	items map[string]armory.CatalogItem
}

func (f *fakeCatalog) GetItem(_ context.Context, itemID string) (*armory.CatalogItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &item, nil
}

func (f *fakeCatalog) ListItems(_ context.Context) ([]armory.CatalogItem, error) {
	out := make([]armory.CatalogItem, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

// fakeSessions records the session creation call
type fakeSessions struct {
	lastInput *billing.CreateCheckoutSessionInput
	err       error
}

func (f *fakeSessions) CreateCheckoutSession(_ context.Context, input billing.CreateCheckoutSessionInput) (*billing.CreateCheckoutSessionOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastInput = &input
	return &billing.CreateCheckoutSessionOutput{
		SessionID:   "cs_test_handler",
		URL:         "https://checkout.stripe.com/c/pay/cs_test_handler",
		AmountTotal: 0,
	}, nil
}

// memOrderRepo is an in-memory order store for handler tests
type memOrderRepo struct {
	orders map[string]*checkout.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*checkout.Order)}
}

func (m *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*checkout.Order, error) {
	for _, order := range m.orders {
		if order.ID == id {
			return order, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memOrderRepo) FindByStripeSessionID(_ context.Context, sessionID string) (*checkout.Order, error) {
	order, ok := m.orders[sessionID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

func (m *memOrderRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]checkout.Order, error) {
	var out []checkout.Order
	for _, order := range m.orders {
		if order.UserID != nil && *order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *memOrderRepo) Save(_ context.Context, order *checkout.Order) error {
	m.orders[order.StripeSessionID] = order
	return nil
}

func newCheckoutRouter(t *testing.T, repo *memOrderRepo, sessions *fakeSessions) *gin.Engine {
	t.Helper()

	svc := checkoutapp.NewService(checkoutapp.ServiceConfig{
		OrderRepo: repo,
		Catalog: &fakeCatalog{items: map[string]armory.CatalogItem{
			"prod_axe":    {ID: "prod_axe", Title: "Battle Axe", Price: decimal.NewFromFloat(23.00)},
			"prod_shield": {ID: "prod_shield", Title: "Tower Shield", Price: decimal.NewFromFloat(41.50)},
		}},
		Sessions:    sessions,
		Currency:    "usd",
		ShippingFee: 1400,
		Logger:      zap.NewNop(),
	})

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewCheckoutHandler(svc).RegisterRoutes(api)
	return engine
}

func postCheckout(t *testing.T, engine *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestCheckoutHandler_CreateCheckout(t *testing.T) {
	t.Run("creates a session for a correctly priced cart", func(t *testing.T) {
		repo := newMemOrderRepo()
		sessions := &fakeSessions{}
		engine := newCheckoutRouter(t, repo, sessions)

		// 2*2300 + 4150 + 1400 shipping
		w := postCheckout(t, engine, gin.H{
			"items": []gin.H{
				{"item_id": "prod_axe", "quantity": 2},
				{"item_id": "prod_shield", "quantity": 1},
			},
			"claimed_total": 10150,
		})

		require.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "cs_test_handler", data["session_id"])
		assert.NotEmpty(t, data["redirect_url"])

		// the order must be durable before the redirect URL leaves
		order, err := repo.FindByStripeSessionID(context.Background(), "cs_test_handler")
		require.NoError(t, err)
		assert.Equal(t, checkout.OrderStatusCreated, order.Status)
		assert.Equal(t, int64(10150), order.AmountTotal)
	})

	t.Run("rejects a mispriced cart", func(t *testing.T) {
		engine := newCheckoutRouter(t, newMemOrderRepo(), &fakeSessions{})

		w := postCheckout(t, engine, gin.H{
			"items":         []gin.H{{"item_id": "prod_axe", "quantity": 1}},
			"claimed_total": 2300, // forgot shipping
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeAmountMismatch)
	})

	t.Run("rejects an unknown item", func(t *testing.T) {
		engine := newCheckoutRouter(t, newMemOrderRepo(), &fakeSessions{})

		w := postCheckout(t, engine, gin.H{
			"items":         []gin.H{{"item_id": "prod_ghost", "quantity": 1}},
			"claimed_total": 1400,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeItemNotFound)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		engine := newCheckoutRouter(t, newMemOrderRepo(), &fakeSessions{})

		w := postCheckout(t, engine, gin.H{
			"items":         []gin.H{},
			"claimed_total": 1400,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps provider failure to 502", func(t *testing.T) {
		engine := newCheckoutRouter(t, newMemOrderRepo(), &fakeSessions{err: assert.AnError})

		w := postCheckout(t, engine, gin.H{
			"items":         []gin.H{{"item_id": "prod_axe", "quantity": 1}},
			"claimed_total": 3700,
		})

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodePaymentProvider)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		engine := newCheckoutRouter(t, newMemOrderRepo(), &fakeSessions{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte("{nope")))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidJSON)
	})
}

func TestCheckoutHandler_GetOrder(t *testing.T) {
	repo := newMemOrderRepo()
	engine := newCheckoutRouter(t, repo, &fakeSessions{})

	order, err := checkout.NewOrder("cs_test_lookup", nil, 3700, "usd")
	require.NoError(t, err)
	_, err = order.AddItem("prod_axe", "Battle Axe", 2300, 1)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), order))

	t.Run("returns an existing order", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/cs_test_lookup", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "cs_test_lookup")
		assert.Contains(t, w.Body.String(), "CREATED")
	})

	t.Run("404 for an unknown session", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/cs_test_other", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
