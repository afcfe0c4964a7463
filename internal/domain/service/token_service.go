package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tells access and refresh tokens apart.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Token validation failures. Callers outside the auth layer treat them alike.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
)

// Claims defines the custom claims for the JWT tokens.
// The account id travels in the registered "sub" claim.
type Claims struct {
	AccountID uuid.UUID `json:"-"`
	Type      TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login hands to the client.
type TokenPair struct {
	AccessToken      string    `json:"access"`
	RefreshToken     string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// TokenService defines the interface for generating and validating JWTs.
// Validation is pure: no storage is consulted.
type TokenService interface {
	// IssueTokens creates a new access and refresh token for an account.
	IssueTokens(accountID uuid.UUID) (*TokenPair, error)

	ValidateAccessToken(tokenString string) (*Claims, error)

	ValidateRefreshToken(tokenString string) (*Claims, error)

	// RefreshAccessToken issues a new access token for the refresh token's account.
	// The refresh token itself is not rotated.
	RefreshAccessToken(refreshToken string) (accessToken string, expiresAt time.Time, err error)
}
