// Package firebase verifies Firebase Authentication ID tokens.
package firebase

import (
	"context"
	"log/slog"

	"tracker/config"
	"tracker/internal/domain/service"
	"tracker/internal/errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const verifierName = "firebase"

// tokenVerifier is the slice of *auth.Client used here
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Verifier checks Firebase ID tokens with the Admin SDK.
type Verifier struct {
	client tokenVerifier
	logger *slog.Logger
}

// NewVerifier initializes a Firebase app from the configured project and credentials file.
// Without a credentials path, application default credentials are used.
func NewVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Verifier, error) {
	fbCfg := cfg.Federated.Firebase

	var opts []option.ClientOption
	if fbCfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(fbCfg.CredentialsPath))
	}

	var appCfg *firebase.Config
	if fbCfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: fbCfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get Firebase auth client")
	}

	return &Verifier{client: client, logger: logger}, nil
}

// Name returns "firebase".
func (v *Verifier) Name() string {
	return verifierName
}

// Verify validates the token and maps its claims. The Firebase uid is the federated subject.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*service.FederatedIdentity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		v.logger.WarnContext(ctx, "Firebase ID token rejected", slog.Any("error", err))

		return nil, errors.Wrap(service.ErrFederatedTokenInvalid, err.Error())
	}

	identity := &service.FederatedIdentity{Subject: token.UID}
	identity.Email, _ = token.Claims["email"].(string)
	identity.EmailVerified, _ = token.Claims["email_verified"].(bool)
	identity.Name, _ = token.Claims["name"].(string)
	identity.Picture, _ = token.Claims["picture"].(string)

	return identity, nil
}
