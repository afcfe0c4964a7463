// Package middleware holds the API-only echo middleware.
package middleware

import (
	"strings"

	"tracker/internal/delivery/api/response"
	deliverycontext "tracker/internal/delivery/context"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/entity"
	"tracker/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware turns a bearer access token into the request's caller.
type AuthMiddleware struct {
	tokens service.TokenService
}

func NewAuthMiddleware(tokens service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate rejects requests without a valid access token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c)
		if !ok {
			return response.Unauthorized(c, domainerrors.ErrUnauthenticated.ErrorCode(), "Authorization header with a Bearer token is required")
		}
		caller, err := m.callerFor(token)
		if err != nil {
			return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), domainerrors.ErrInvalidToken.Message())
		}
		deliverycontext.SetCaller(c, caller)

		return next(c)
	}
}

// OptionalAuthenticate sets the caller when a valid token is present and
// lets every other request through as anonymous.
func (m *AuthMiddleware) OptionalAuthenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token, ok := bearerToken(c); ok {
			if caller, err := m.callerFor(token); err == nil {
				deliverycontext.SetCaller(c, caller)
			}
		}

		return next(c)
	}
}

func (m *AuthMiddleware) callerFor(token string) (entity.Caller, error) {
	claims, err := m.tokens.ValidateAccessToken(token)
	if err != nil {
		return entity.Anonymous, err
	}

	return entity.NewCaller(claims.AccountID), nil
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)

	return token, token != ""
}
