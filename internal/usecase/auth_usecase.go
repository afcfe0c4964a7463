// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"tracker/internal/domain/entity"
	"tracker/internal/domain/service"
)

// Federated login modes. Only the response message differs.
const (
	FederatedModeSignup = "signup"
	FederatedModeLogin  = "login"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a password account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput defines the data required for a password login.
// RemoteAddr is part of the throttling key.
type LoginInput struct {
	Email      string
	Password   string
	RemoteAddr string
}

// FederatedLoginInput is the payload of a federated sign-in.
// When a verifier is configured only IDToken and Mode are trusted.
type FederatedLoginInput struct {
	FederatedID   string
	Email         string
	DisplayName   string
	AvatarURL     string
	EmailVerified bool
	Mode          string
	IDToken       string
}

// --- Output DTOs ---

// RegisterOutput returns the new account with its first token pair.
type RegisterOutput struct {
	Account *entity.Account
	Tokens  *service.TokenPair
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	Message string
	Account *entity.Account
	Tokens  *service.TokenPair
}

// FederatedLoginOutput reports which account the identity resolved to.
type FederatedLoginOutput struct {
	Message string
	Account *entity.Account
	Tokens  *service.TokenPair
	Created bool // A new account was registered.
	Linked  bool // An existing password account got the federated id.
}

// RefreshOutput carries a re-issued access token.
type RefreshOutput struct {
	AccessToken string
	ExpiresAt   time.Time
}

// AuthUsecase covers registration, both login paths and token checks.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	FederatedLogin(ctx context.Context, input *FederatedLoginInput) (*FederatedLoginOutput, error)

	// VerifyToken validates an access token and loads its account.
	VerifyToken(ctx context.Context, accessToken string) (*entity.Account, error)

	RefreshToken(ctx context.Context, refreshToken string) (*RefreshOutput, error)
}
