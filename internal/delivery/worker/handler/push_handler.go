// Package handler contains the worker's push endpoint.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"tracker/config"
	deliverycontext "tracker/internal/delivery/context"
	"tracker/internal/domain/service"
	"tracker/internal/infra/pubsub"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// retryableError marks a failure Pub/Sub should redeliver.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func isRetryable(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// tokenValidator matches idtoken.Validate.
type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler consumes account events delivered by Pub/Sub push.
type PushHandler struct {
	verifyPushAuth bool
	validate       tokenValidator
	avatars        service.AvatarStore
	logger         *slog.Logger
}

// PushHandlerParams holds dependencies for PushHandler, injected by Fx.
type PushHandlerParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Avatars service.AvatarStore
}

// NewPushHandler verifies push tokens only for Google deliveries outside develop.
func NewPushHandler(params PushHandlerParams) *PushHandler {
	verify := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == pubsub.ProviderGoogle &&
		params.Config.Env.Env != config.EnvDevelop

	return &PushHandler{
		verifyPushAuth: verify,
		validate:       idtoken.Validate,
		avatars:        params.Avatars,
		logger:         params.Logger,
	}
}

// HandlePush answers 200 when the message is done (handled or hopeless),
// 503 when it should be redelivered.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg pubsub.PushMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}
	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}
	var event service.AccountEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse account event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(
		slog.String("request_id", requestID),
		slog.String("message_id", pushMsg.Message.MessageID),
		slog.String("event_type", string(event.Type)),
		slog.String("account_id", event.AccountID),
	)
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	if err := h.process(ctx, &event); err != nil {
		reqLogger.Error("[Worker] Failed to process account event",
			slog.Any("error", err),
			slog.Bool("retryable", isRetryable(err)),
		)
		if isRetryable(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	return c.NoContent(http.StatusOK)
}

func (h *PushHandler) process(ctx context.Context, event *service.AccountEvent) error {
	logger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)

	switch event.Type {
	case service.AccountDeleted:
		accountID, err := uuid.Parse(event.AccountID)
		if err != nil {
			return errors.Wrap(err, "account id")
		}
		removed, err := h.avatars.DeletePrefix(ctx, service.AvatarKeyPrefix(accountID.String()))
		if err != nil {
			return &retryableError{err: err}
		}
		logger.Info("[Worker] Purged avatars of deleted account", slog.Int("removed", removed))
	case service.AccountRegistered, service.AccountLinked:
		logger.Info("[Worker] Account event acknowledged", slog.String("provider", event.Provider))
	default:
		logger.Warn("[Worker] Unknown account event type")
	}

	return nil
}

// extractRequestID prefers message attributes, then the event, then the
// push request's own id, then a fresh one.
func extractRequestID(ctx context.Context, pushMsg *pubsub.PushMessage, event *service.AccountEvent) string {
	if requestID := pushMsg.Message.Attributes["request_id"]; requestID != "" {
		return requestID
	}
	if event.RequestID != "" {
		return event.RequestID
	}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.NewString()
}

// verifyPubSubToken checks the OIDC token Google attaches to push requests.
// The audience is this endpoint's URL.
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	scheme, token, found := strings.Cut(req.Header.Get(echo.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return errors.New("missing bearer token")
	}

	proto := "https"
	if req.TLS == nil && req.Header.Get(echo.HeaderXForwardedProto) != "https" {
		proto = "http"
	}
	audience := fmt.Sprintf("%s://%s%s", proto, req.Host, req.URL.Path)

	payload, err := h.validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "validate token")
	}
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return errors.New("email not verified")
	}

	return nil
}
