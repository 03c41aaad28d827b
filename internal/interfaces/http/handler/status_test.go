package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	statusapp "github.com/armory/backend/internal/application/status"
	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/checkout"
	"github.com/armory/backend/internal/domain/progression"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/auth"
	"github.com/armory/backend/internal/infrastructure/config"
	"github.com/armory/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memGrantRepo serves fixed grants for handler tests
type memGrantRepo struct {
	grants []armory.InventoryGrant
}

func (m *memGrantRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]armory.InventoryGrant, error) {
	var out []armory.InventoryGrant
	for _, g := range m.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGrantRepo) FindByStripeSessionID(_ context.Context, sessionID string) ([]armory.InventoryGrant, error) {
	var out []armory.InventoryGrant
	for _, g := range m.grants {
		if g.StripeSessionID == sessionID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGrantRepo) FindStale(_ context.Context, _ time.Time, _ int) ([]armory.InventoryGrant, error) {
	return nil, nil
}

func (m *memGrantRepo) UpdateDeliveryStatus(_ context.Context, _ uuid.UUID, _ armory.DeliveryStatus) (bool, error) {
	return false, nil
}

// memXPRepo serves fixed progress rows for handler tests
type memXPRepo struct {
	progress map[uuid.UUID]int64
	credits  map[string]*progression.XPCredit
}

func (m *memXPRepo) GetProgress(_ context.Context, userID uuid.UUID) (*progression.UserProgress, error) {
	return &progression.UserProgress{UserID: userID, XP: m.progress[userID]}, nil
}

func (m *memXPRepo) FindCreditBySessionID(_ context.Context, sessionID string) (*progression.XPCredit, error) {
	credit, ok := m.credits[sessionID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return credit, nil
}

const statusTestSecret = "status-handler-secret"

func newStatusRouter(t *testing.T, orders *memOrderRepo, grants *memGrantRepo, xp *memXPRepo) *gin.Engine {
	t.Helper()

	svc := statusapp.NewService(statusapp.ServiceConfig{
		OrderRepo: orders,
		GrantRepo: grants,
		XPRepo:    xp,
		Logger:    zap.NewNop(),
	})

	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: statusTestSecret})

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewStatusHandler(svc, middleware.RequireAuth(verifier, nil)).RegisterRoutes(api)
	return engine
}

func bearerToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: userID.String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(statusTestSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestStatusHandler_GetSessionStatus(t *testing.T) {
	orders := newMemOrderRepo()
	order, err := checkout.NewOrder("cs_test_status", nil, 3700, "usd")
	require.NoError(t, err)
	_, err = order.AddItem("prod_axe", "Battle Axe", 2300, 1)
	require.NoError(t, err)
	require.NoError(t, orders.Save(context.Background(), order))

	engine := newStatusRouter(t, orders, &memGrantRepo{}, &memXPRepo{})

	t.Run("returns the session read model", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status/session/cs_test_status", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "CREATED")
		assert.Contains(t, w.Body.String(), "prod_axe")
	})

	t.Run("404 for an unknown session", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status/session/cs_test_nope", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStatusHandler_GetMyStatus(t *testing.T) {
	userID := uuid.New()

	grant, err := armory.NewInventoryGrant(userID, uuid.New(), "cs_test_mine", "prod_axe", "Battle Axe", 1)
	require.NoError(t, err)

	engine := newStatusRouter(t,
		newMemOrderRepo(),
		&memGrantRepo{grants: []armory.InventoryGrant{*grant}},
		&memXPRepo{progress: map[uuid.UUID]int64{userID: 37}},
	)

	t.Run("requires authentication", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status/me", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns xp and inventory for the caller", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status/me", nil)
		req.Header.Set("Authorization", bearerToken(t, userID))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"xp":37`)
		assert.Contains(t, w.Body.String(), "prod_axe")
		assert.Contains(t, w.Body.String(), "GRANTED")
	})

	t.Run("another user sees an empty inventory", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status/me", nil)
		req.Header.Set("Authorization", bearerToken(t, uuid.New()))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"xp":0`)
		assert.NotContains(t, w.Body.String(), "prod_axe")
	})
}
