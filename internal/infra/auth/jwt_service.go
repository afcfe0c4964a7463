// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tracker/config"
	"tracker/internal/domain/service"
	"tracker/internal/errors"
)

const tokenIssuer = "tracker"

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	accessSecret  []byte        // Secret key for signing access tokens.
	refreshSecret []byte        // Secret key for signing refresh tokens.
	accessTTL     time.Duration // Time-to-live for access tokens.
	refreshTTL    time.Duration // Time-to-live for refresh tokens.
	now           func() time.Time
}

// NewJWTService is the constructor for jwtService.
// Secrets are read once here; rotating them requires a restart.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	accessTTL, refreshTTL := config.DefaultAccessTTL, config.DefaultRefreshTTL
	if cfg.Auth != nil {
		if cfg.Auth.AccessTTL > 0 {
			accessTTL = cfg.Auth.AccessTTL
		}
		if cfg.Auth.RefreshTTL > 0 {
			refreshTTL = cfg.Auth.RefreshTTL
		}
	}

	return &jwtService{
		accessSecret:  []byte(cfg.SecretKey.Access),
		refreshSecret: []byte(cfg.SecretKey.Refresh),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// IssueTokens creates a new access token and refresh token for an account.
func (s *jwtService) IssueTokens(accountID uuid.UUID) (*service.TokenPair, error) {
	now := s.now()

	accessToken, accessExp, err := s.generateToken(accountID, service.TokenTypeAccess, now)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := s.generateToken(accountID, service.TokenTypeRefresh, now)
	if err != nil {
		return nil, err
	}

	return &service.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	return s.validate(tokenString, service.TokenTypeAccess)
}

func (s *jwtService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	return s.validate(tokenString, service.TokenTypeRefresh)
}

// RefreshAccessToken issues a fresh access token. The refresh token is reusable until it expires.
func (s *jwtService) RefreshAccessToken(refreshToken string) (string, time.Time, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}

	return s.generateToken(claims.AccountID, service.TokenTypeAccess, s.now())
}

func (s *jwtService) secretFor(tokenType service.TokenType) []byte {
	if tokenType == service.TokenTypeRefresh {
		return s.refreshSecret
	}

	return s.accessSecret
}

func (s *jwtService) ttlFor(tokenType service.TokenType) time.Duration {
	if tokenType == service.TokenTypeRefresh {
		return s.refreshTTL
	}

	return s.accessTTL
}

// generateToken is a private helper to create a JWT with specific claims.
func (s *jwtService) generateToken(accountID uuid.UUID, tokenType service.TokenType, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.ttlFor(tokenType))
	claims := &service.Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretFor(tokenType))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign token")
	}

	return signed, expiresAt, nil
}

func (s *jwtService) validate(tokenString string, want service.TokenType) (*service.Claims, error) {
	claims := &service.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secretFor(want), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, s.classify(tokenString, want, err)
	}

	if claims.Type != want {
		return nil, errors.Wrapf(service.ErrTokenMalformed, "expected %s token, got %q", want, claims.Type)
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(service.ErrTokenMalformed, "subject is not an account id")
	}
	claims.AccountID = accountID

	return claims, nil
}

// classify maps jwt parse failures onto the domain token errors.
// A token signed for the other type fails signature checks, and is reported as malformed.
func (s *jwtService) classify(tokenString string, want service.TokenType, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Wrap(service.ErrTokenExpired, err.Error())
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		unverified := &service.Claims{}
		if _, _, parseErr := jwt.NewParser().ParseUnverified(tokenString, unverified); parseErr == nil &&
			unverified.Type != "" && unverified.Type != want {
			return errors.Wrapf(service.ErrTokenMalformed, "expected %s token, got %q", want, unverified.Type)
		}

		return errors.Wrap(service.ErrTokenSignature, err.Error())
	default:
		return errors.Wrap(service.ErrTokenMalformed, err.Error())
	}
}
