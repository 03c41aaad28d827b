package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/armory/backend/internal/infrastructure/auth"
	"github.com/armory/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// RequireAuth creates middleware that rejects requests without a valid
// bearer token issued by the identity collaborator
func RequireAuth(verifier *auth.TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, verifier)
		if err != nil {
			code := dto.ErrCodeUnauthorized
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			if logger != nil {
				logger.Debug("Rejected unauthenticated request",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(code, "Authentication required"))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth creates middleware that attaches the caller's identity when a
// valid bearer token is present but never rejects the request. Checkout is
// open to anonymous buyers; a token just lets the paid order bind to them.
func OptionalAuth(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := bearerClaims(c, verifier); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

var errNoBearerToken = errors.New("missing bearer token")

func bearerClaims(c *gin.Context, verifier *auth.TokenVerifier) (*auth.Claims, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		return nil, errNoBearerToken
	}
	tokenString := strings.TrimPrefix(header, BearerPrefix)
	if tokenString == "" {
		return nil, errNoBearerToken
	}
	return verifier.Verify(tokenString)
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTUsernameKey, claims.Username)
}

// GetJWTUserID returns the authenticated user ID from the context, or ""
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}
