package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/checkout"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCatalog is a mock implementation of armory.Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetItem(ctx context.Context, itemID string) (*armory.CatalogItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*armory.CatalogItem), args.Error(1)
}

func (m *MockCatalog) ListItems(ctx context.Context) ([]armory.CatalogItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]armory.CatalogItem), args.Error(1)
}

// MockSessionCreator is a mock implementation of SessionCreator
type MockSessionCreator struct {
	mock.Mock
}

func (m *MockSessionCreator) CreateCheckoutSession(ctx context.Context, input billing.CreateCheckoutSessionInput) (*billing.CreateCheckoutSessionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CreateCheckoutSessionOutput), args.Error(1)
}

// MockOrderRepository is a mock implementation of checkout.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (*checkout.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]checkout.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]checkout.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *checkout.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func catalogItem(id, title string, price string) *armory.CatalogItem {
	return &armory.CatalogItem{
		ID:    id,
		Title: title,
		Price: decimal.RequireFromString(price),
	}
}

func newTestService(orderRepo *MockOrderRepository, cat *MockCatalog, sessions *MockSessionCreator) *Service {
	return NewService(ServiceConfig{
		OrderRepo:   orderRepo,
		Catalog:     cat,
		Sessions:    sessions,
		Currency:    "usd",
		ShippingFee: 1400,
		Logger:      zap.NewNop(),
	})
}

func TestCreateCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("prices cart server-side and persists CREATED order", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		cat := new(MockCatalog)
		sessions := new(MockSessionCreator)

		cat.On("GetItem", mock.Anything, "prod_axe").Return(catalogItem("prod_axe", "Battle Axe", "23.00"), nil)
		cat.On("GetItem", mock.Anything, "prod_shield").Return(catalogItem("prod_shield", "Tower Shield", "41.50"), nil)
		sessions.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(&billing.CreateCheckoutSessionOutput{
			SessionID: "cs_test_abc",
			URL:       "https://checkout.stripe.com/pay/cs_test_abc",
		}, nil)

		var saved *checkout.Order
		orderRepo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*checkout.Order)
		}).Return(nil)

		svc := newTestService(orderRepo, cat, sessions)
		// 2*2300 + 4150 + 1400 shipping
		resp, err := svc.CreateCheckout(ctx, nil, CreateCheckoutRequest{
			Items: []CartItemInput{
				{ItemID: "prod_axe", Quantity: 2},
				{ItemID: "prod_shield", Quantity: 1},
			},
			ClaimedTotal: 10150,
		})

		require.NoError(t, err)
		assert.Equal(t, "cs_test_abc", resp.SessionID)
		assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_abc", resp.RedirectURL)
		assert.Equal(t, int64(10150), resp.AmountTotal)
		assert.Equal(t, "usd", resp.Currency)

		require.NotNil(t, saved)
		assert.Equal(t, checkout.OrderStatusCreated, saved.Status)
		assert.Equal(t, "cs_test_abc", saved.StripeSessionID)
		assert.Equal(t, int64(10150), saved.AmountTotal)
		require.Len(t, saved.Items, 2)
		assert.Equal(t, int64(2300), saved.Items[0].UnitPrice)
		assert.Equal(t, 2, saved.Items[0].Quantity)
	})

	t.Run("binds authenticated buyer to the session", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		cat := new(MockCatalog)
		sessions := new(MockSessionCreator)
		userID := uuid.New()

		cat.On("GetItem", mock.Anything, "prod_axe").Return(catalogItem("prod_axe", "Battle Axe", "23.00"), nil)
		sessions.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(input billing.CreateCheckoutSessionInput) bool {
			return input.UserID != nil && *input.UserID == userID
		})).Return(&billing.CreateCheckoutSessionOutput{SessionID: "cs_test_user", URL: "https://stripe/pay"}, nil)
		orderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(orderRepo, cat, sessions)
		_, err := svc.CreateCheckout(ctx, &userID, CreateCheckoutRequest{
			Items:        []CartItemInput{{ItemID: "prod_axe", Quantity: 1}},
			ClaimedTotal: 3700,
		})

		require.NoError(t, err)
		sessions.AssertExpectations(t)
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		svc := newTestService(new(MockOrderRepository), new(MockCatalog), new(MockSessionCreator))

		_, err := svc.CreateCheckout(ctx, nil, CreateCheckoutRequest{ClaimedTotal: 1400})
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("rejects mispriced cart without correcting it", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		cat := new(MockCatalog)
		sessions := new(MockSessionCreator)

		cat.On("GetItem", mock.Anything, "prod_axe").Return(catalogItem("prod_axe", "Battle Axe", "23.00"), nil)

		svc := newTestService(orderRepo, cat, sessions)
		_, err := svc.CreateCheckout(ctx, nil, CreateCheckoutRequest{
			Items:        []CartItemInput{{ItemID: "prod_axe", Quantity: 1}},
			ClaimedTotal: 2300, // stale price, forgot shipping
		})

		assert.ErrorIs(t, err, ErrAmountMismatch)
		sessions.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
		orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown catalog item", func(t *testing.T) {
		cat := new(MockCatalog)
		cat.On("GetItem", mock.Anything, "prod_ghost").Return(nil, shared.ErrNotFound)

		svc := newTestService(new(MockOrderRepository), cat, new(MockSessionCreator))
		_, err := svc.CreateCheckout(ctx, nil, CreateCheckoutRequest{
			Items:        []CartItemInput{{ItemID: "prod_ghost", Quantity: 1}},
			ClaimedTotal: 1400,
		})

		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("catalog outage is not reported as a missing item", func(t *testing.T) {
		cat := new(MockCatalog)
		outage := errors.New("catalog unreachable")
		cat.On("GetItem", mock.Anything, "prod_axe").Return(nil, outage)

		svc := newTestService(new(MockOrderRepository), cat, new(MockSessionCreator))
		_, err := svc.CreateCheckout(ctx, nil, CreateCheckoutRequest{
			Items:        []CartItemInput{{ItemID: "prod_axe", Quantity: 1}},
			ClaimedTotal: 3700,
		})

		assert.ErrorIs(t, err, outage)
		assert.NotErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("maps processor failure to provider error", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		cat := new(MockCatalog)
		sessions := new(MockSessionCreator)

		cat.On("GetItem", mock.Anything, "prod_axe").Return(catalogItem("prod_axe", "Battle Axe", "23.00"), nil)
		sessions.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, errors.New("stripe timeout"))

		svc := newTestService(orderRepo, cat, sessions)
		_, err := svc.CreateCheckout(ctx, nil, CreateCheckoutRequest{
			Items:        []CartItemInput{{ItemID: "prod_axe", Quantity: 1}},
			ClaimedTotal: 3700,
		})

		assert.ErrorIs(t, err, ErrPaymentProvider)
		orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("propagates persistence failure", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		cat := new(MockCatalog)
		sessions := new(MockSessionCreator)

		cat.On("GetItem", mock.Anything, "prod_axe").Return(catalogItem("prod_axe", "Battle Axe", "23.00"), nil)
		sessions.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(&billing.CreateCheckoutSessionOutput{
			SessionID: "cs_test_save_fail",
			URL:       "https://stripe/pay",
		}, nil)
		dbErr := errors.New("connection reset")
		orderRepo.On("Save", mock.Anything, mock.Anything).Return(dbErr)

		svc := newTestService(orderRepo, cat, sessions)
		_, err := svc.CreateCheckout(ctx, nil, CreateCheckoutRequest{
			Items:        []CartItemInput{{ItemID: "prod_axe", Quantity: 1}},
			ClaimedTotal: 3700,
		})

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestGetOrderBySession(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the order view", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		order, err := checkout.NewOrder("cs_test_view", nil, 3700, "usd")
		require.NoError(t, err)
		_, err = order.AddItem("prod_axe", "Battle Axe", 2300, 1)
		require.NoError(t, err)
		orderRepo.On("FindByStripeSessionID", mock.Anything, "cs_test_view").Return(order, nil)

		svc := newTestService(orderRepo, new(MockCatalog), new(MockSessionCreator))
		resp, err := svc.GetOrderBySession(ctx, "cs_test_view")

		require.NoError(t, err)
		assert.Equal(t, "cs_test_view", resp.StripeSessionID)
		assert.Equal(t, "CREATED", resp.Status)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, int64(2300), resp.Items[0].Subtotal)
	})

	t.Run("propagates not found", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		orderRepo.On("FindByStripeSessionID", mock.Anything, "cs_test_missing").Return(nil, shared.ErrNotFound)

		svc := newTestService(orderRepo, new(MockCatalog), new(MockSessionCreator))
		_, err := svc.GetOrderBySession(ctx, "cs_test_missing")

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
