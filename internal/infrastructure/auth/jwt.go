package auth

import (
	"errors"

	"github.com/armory/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrMissingUserID = errors.New("missing user_id in claims")
)

// Claims represents the bearer token claims issued by the identity
// collaborator. This service only verifies tokens, it never mints them.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// GetUserUUID returns the user ID claim as a UUID
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	if c.UserID == "" {
		return uuid.Nil, ErrMissingUserID
	}
	return uuid.Parse(c.UserID)
}

// TokenVerifier validates bearer tokens against the shared signing secret
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a token verifier from config
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify parses and validates a token string and returns its claims
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}
