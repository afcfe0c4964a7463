package service

import (
	"context"
	"errors"
)

// ErrFederatedTokenInvalid is returned when an ID token fails verification.
var ErrFederatedTokenInvalid = errors.New("federated token invalid")

// FederatedIdentity is the verified subset of an ID token's claims.
type FederatedIdentity struct {
	Subject       string // Provider user id (Firebase uid or Google sub).
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// FederatedVerifier checks an ID token issued by an external identity provider.
type FederatedVerifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedIdentity, error)

	// Name returns the verifier kind, e.g. "firebase".
	Name() string
}
