// Package context carries request-scoped values between echo and the usecases.
package context

import (
	"context"
	"log/slog"

	"tracker/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ctxKey string

const (
	keyRequestID ctxKey = "request_id"
	keyLogger    ctxKey = "logger"
	keyCaller    ctxKey = "caller"

	// HeaderXRequestID is echoed back on every response.
	HeaderXRequestID = echo.HeaderXRequestID
)

// GetRequestID returns the id set by the request-id middleware, or a fresh one.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(keyRequestID)).(string); ok && id != "" {
		return id
	}

	return uuid.NewString()
}

func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(keyRequestID), requestID)
}

// GetRequestIDFromContext returns "" outside a request.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)

	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// GetLoggerOrDefault returns the request-scoped logger, or fallback when none is set.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// SetCaller records the authenticated identity and tags the request logger with it.
func SetCaller(c echo.Context, caller entity.Caller) {
	c.Set(string(keyCaller), caller)

	ctx := c.Request().Context()
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		ctx = WithLogger(ctx, logger.With(slog.String("account_id", caller.AccountID.String())))
		c.SetRequest(c.Request().WithContext(ctx))
	}
}

// GetCaller returns entity.Anonymous when no middleware authenticated the request.
func GetCaller(c echo.Context) entity.Caller {
	caller, _ := c.Get(string(keyCaller)).(entity.Caller)

	return caller
}
