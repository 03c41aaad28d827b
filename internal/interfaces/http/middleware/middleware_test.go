package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/armory/backend/internal/infrastructure/auth"
	"github.com/armory/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", okHandler)

	t.Run("generates an id when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("echoes a provided id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-abc", w.Header().Get("X-Request-ID"))
	})
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://shop.example.com"}

	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/ping", okHandler)

	t.Run("allows configured origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("omits headers for unknown origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("answers preflight with 204", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimit(16))
	router.POST("/echo", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("passes a small body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small"))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects an oversize body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()

	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/ping", okHandler)

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get().Code)
	assert.Equal(t, http.StatusOK, get().Code)

	limited := get()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))
}

func signToken(t *testing.T, secret string, userID uuid.UUID, expiresIn time.Duration) string {
	t.Helper()

	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		UserID: userID.String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestRequireAuth(t *testing.T) {
	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: "middleware-test-secret"})

	router := gin.New()
	router.GET("/me", RequireAuth(verifier, nil), okHandler)

	t.Run("rejects a request without a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		userID := uuid.New()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "middleware-test-secret", userID, -time.Minute))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
	})

	t.Run("passes a valid token and exposes the user id", func(t *testing.T) {
		userID := uuid.New()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "middleware-test-secret", userID, time.Hour))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}

func TestOptionalAuth(t *testing.T) {
	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: "middleware-test-secret"})

	router := gin.New()
	router.GET("/checkout", OptionalAuth(verifier), okHandler)

	t.Run("anonymous requests pass through", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":""`)
	})

	t.Run("a bad token is ignored rather than rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":""`)
	})

	t.Run("a valid token attaches identity", func(t *testing.T) {
		userID := uuid.New()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "middleware-test-secret", userID, time.Hour))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}
