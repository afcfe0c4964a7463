package auth

import (
	"context"
	"log/slog"

	"tracker/config"
	"tracker/internal/domain/service"
	"tracker/internal/errors"
	"tracker/internal/infra/auth/firebase"
	"tracker/internal/infra/auth/google"
)

// NewFederatedVerifier selects the verifier named by federated.verifier.
// "none" returns a nil verifier and federated payloads are trusted as sent.
func NewFederatedVerifier(cfg *config.Config, logger *slog.Logger) (service.FederatedVerifier, error) {
	ctx := context.Background()

	switch cfg.Federated.Verifier {
	case config.FederatedVerifierFirebase:
		verifier, err := firebase.NewVerifier(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		return verifier, nil
	case config.FederatedVerifierGoogle:
		verifier, err := google.NewVerifier(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		return verifier, nil
	case config.FederatedVerifierNone, "":
		logger.Warn("Federated ID tokens are not verified; federated login trusts the request payload")

		return nil, nil
	default:
		return nil, errors.Errorf("unknown federated verifier: %s", cfg.Federated.Verifier)
	}
}
