package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/domain/service"
	"tracker/internal/errors"
)

// translateRepoError turns repository sentinels into AppErrors; anything else is wrapped.
func translateRepoError(err error, subject string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return domainerrors.ErrNotFound.WrapMessage(subject + " not found")
	case errors.Is(err, repository.ErrAccountNotFound):
		return domainerrors.ErrAccountNotFound.WrapMessage(subject)
	default:
		return errors.Wrap(err, subject)
	}
}

func requireCaller(caller entity.Caller) error {
	if !caller.Authenticated() {
		return domainerrors.ErrUnauthenticated.WrapMessage("authentication required")
	}

	return nil
}

// requiredName trims a create-time name; missing or blank fails validation.
func requiredName(value *string, field string) (string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", domainerrors.ErrValidationFailed.WithDetails(field + " is required")
	}

	return strings.TrimSpace(*value), nil
}

// updatedName applies an optional rename; a blank rename fails validation.
func updatedName(current string, value *string, field string) (string, error) {
	if value == nil {
		return current, nil
	}

	return requiredName(value, field)
}

func setIfPresent[T any](dst *T, value *T) {
	if value != nil {
		*dst = *value
	}
}

func toCreatedRange(start, end *time.Time) repository.CreatedRange {
	return repository.CreatedRange{From: start, To: end}
}

func publishAccountEvent(ctx context.Context, logger *slog.Logger, publisher service.EventPublisher, event *service.AccountEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishAccountEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish account event",
			slog.String("event_type", string(event.Type)),
			slog.String("account_id", event.AccountID),
			slog.Any("error", err),
		)
	}
}
