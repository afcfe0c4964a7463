package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tracker/internal/delivery/api/response"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/service"
	"tracker/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler serves the unauthenticated /auth routes.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FederatedLoginRequest accepts firebase_uid as an alias of federated_id.
type FederatedLoginRequest struct {
	FederatedID   string `json:"federated_id"`
	FirebaseUID   string `json:"firebase_uid"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
	Mode          string `json:"mode" validate:"omitempty,oneof=signup login"`
	IDToken       string `json:"id_token"`
}

type VerifyTokenRequest struct {
	Token string `json:"token"`
}

type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type RegisterResponse struct {
	Account *AccountResponse   `json:"account"`
	Tokens  *service.TokenPair `json:"tokens"`
}

type LoginResponse struct {
	Message string             `json:"message"`
	Tokens  *service.TokenPair `json:"tokens"`
	Account *AccountResponse   `json:"account"`
}

type FederatedLoginResponse struct {
	User    *AccountResponse   `json:"user"`
	Tokens  *service.TokenPair `json:"tokens"`
	Message string             `json:"message"`
}

type VerifyTokenResponse struct {
	User  *AccountResponse `json:"user"`
	Valid bool             `json:"valid"`
}

type RefreshTokenResponse struct {
	Access          string    `json:"access"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

// Register creates a password account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if ok, err := decode(c, &req); !ok {
		return err
	}

	out, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, RegisterResponse{
		Account: newAccountResponse(out.Account),
		Tokens:  out.Tokens,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if ok, err := decode(c, &req); !ok {
		return err
	}

	out, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RemoteAddr: c.RealIP(),
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, LoginResponse{
		Message: out.Message,
		Tokens:  out.Tokens,
		Account: newAccountResponse(out.Account),
	})
}

// FederatedLogin signs in with an external identity, creating or linking the account.
func (h *AuthHandler) FederatedLogin(c echo.Context) error {
	var req FederatedLoginRequest
	if ok, err := decode(c, &req); !ok {
		return err
	}
	if req.FederatedID == "" {
		req.FederatedID = req.FirebaseUID
	}

	out, err := h.authUC.FederatedLogin(c.Request().Context(), &usecase.FederatedLoginInput{
		FederatedID:   req.FederatedID,
		Email:         req.Email,
		DisplayName:   req.Name,
		AvatarURL:     req.Picture,
		EmailVerified: req.EmailVerified,
		Mode:          req.Mode,
		IDToken:       req.IDToken,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, FederatedLoginResponse{
		User:    newAccountResponse(out.Account),
		Tokens:  out.Tokens,
		Message: out.Message,
	})
}

func (h *AuthHandler) VerifyToken(c echo.Context) error {
	var req VerifyTokenRequest
	if ok, err := decode(c, &req); !ok {
		return err
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return response.FromAppError(c, domainerrors.ErrValidationFailed.WithDetails("token is required"))
	}

	account, err := h.authUC.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, VerifyTokenResponse{User: newAccountResponse(account), Valid: true})
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if ok, err := decode(c, &req); !ok {
		return err
	}

	out, err := h.authUC.RefreshToken(c.Request().Context(), req.Refresh)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, RefreshTokenResponse{Access: out.AccessToken, AccessExpiresAt: out.ExpiresAt})
}

// Logout is stateless; clients drop their tokens.
func (h *AuthHandler) Logout(c echo.Context) error {
	return response.Message(c, "Logged out successfully")
}
