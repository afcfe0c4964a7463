package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tracker/config"
	"tracker/internal/domain/service"
	"tracker/internal/infra/pubsub"
	"tracker/internal/infra/storage"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"google.golang.org/api/idtoken"
)

type failingAvatarStore struct {
	mock.Mock
	service.AvatarStore
}

func (s *failingAvatarStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	args := s.Called(ctx, prefix)

	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandler(t *testing.T, cfg *config.Config, avatars service.AvatarStore) *PushHandler {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}

	return NewPushHandler(PushHandlerParams{Config: cfg, Logger: discardLogger(), Avatars: avatars})
}

func newMemStore(t *testing.T) service.AvatarStore {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	return storage.NewBlobAvatarStore(bucket, "")
}

func push(t *testing.T, h *PushHandler, body []byte, authorization string) int {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h.HandlePush(e.NewContext(req, rec)))

	return rec.Code
}

func encode(t *testing.T, event *service.AccountEvent) []byte {
	t.Helper()
	msg, err := pubsub.NewPushMessage(event)
	require.NoError(t, err)
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	return body
}

func TestPushHandler_AccountDeletedPurgesAvatars(t *testing.T) {
	ctx := context.Background()
	avatars := newMemStore(t)
	accountID := uuid.New()
	other := uuid.New()

	for _, key := range []string{
		service.AvatarKeyPrefix(accountID.String()) + "a.png",
		service.AvatarKeyPrefix(accountID.String()) + "b.png",
		service.AvatarKeyPrefix(other.String()) + "c.png",
	} {
		require.NoError(t, avatars.Put(ctx, key, strings.NewReader("img"), "image/png"))
	}

	h := newHandler(t, nil, avatars)
	status := push(t, h, encode(t, &service.AccountEvent{
		Type:       service.AccountDeleted,
		AccountID:  accountID.String(),
		OccurredAt: time.Now(),
	}), "")
	assert.Equal(t, http.StatusOK, status)

	_, _, err := avatars.Open(ctx, service.AvatarKeyPrefix(accountID.String())+"a.png")
	assert.Error(t, err)
	reader, _, err := avatars.Open(ctx, service.AvatarKeyPrefix(other.String())+"c.png")
	require.NoError(t, err)
	_ = reader.Close()
}

func TestPushHandler_StorageFailureIsRetried(t *testing.T) {
	store := &failingAvatarStore{}
	store.On("DeletePrefix", mock.Anything, mock.Anything).Return(0, errors.New("bucket unavailable"))

	h := newHandler(t, nil, store)
	status := push(t, h, encode(t, &service.AccountEvent{Type: service.AccountDeleted, AccountID: uuid.NewString()}), "")

	assert.Equal(t, http.StatusServiceUnavailable, status)
	store.AssertExpectations(t)
}

func TestPushHandler_NonRetryableOutcomes(t *testing.T) {
	h := newHandler(t, nil, &failingAvatarStore{})

	assert.Equal(t, http.StatusOK, push(t, h, encode(t, &service.AccountEvent{Type: service.AccountRegistered, AccountID: uuid.NewString()}), ""))
	assert.Equal(t, http.StatusOK, push(t, h, encode(t, &service.AccountEvent{Type: "account.unknown"}), ""))
	// A malformed id can never succeed, so it is acknowledged.
	assert.Equal(t, http.StatusOK, push(t, h, encode(t, &service.AccountEvent{Type: service.AccountDeleted, AccountID: "nope"}), ""))

	assert.Equal(t, http.StatusBadRequest, push(t, h, []byte(`{"message":{"data":"%%%"}}`), ""))
	assert.Equal(t, http.StatusBadRequest, push(t, h, []byte(`not json`), ""))
}

func TestPushHandler_VerifiesGooglePushTokens(t *testing.T) {
	cfg := &config.Config{PubSub: &config.PubSubConfig{Provider: pubsub.ProviderGoogle}}
	cfg.Env.Env = "production"
	h := newHandler(t, cfg, newMemStore(t))
	require.True(t, h.verifyPushAuth)

	var audience string
	h.validate = func(_ context.Context, token, aud string) (*idtoken.Payload, error) {
		audience = aud
		if token != "good" {
			return nil, errors.New("bad signature")
		}

		return &idtoken.Payload{Issuer: "https://accounts.google.com", Claims: map[string]any{"email_verified": true}}, nil
	}
	body := encode(t, &service.AccountEvent{Type: service.AccountRegistered, AccountID: uuid.NewString()})

	assert.Equal(t, http.StatusUnauthorized, push(t, h, body, ""))
	assert.Equal(t, http.StatusUnauthorized, push(t, h, body, "Bearer bad"))
	assert.Equal(t, http.StatusOK, push(t, h, body, "Bearer good"))
	assert.Equal(t, "http://example.com/push", audience)

	h.validate = func(context.Context, string, string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Issuer: "https://evil.example.com"}, nil
	}
	assert.Equal(t, http.StatusUnauthorized, push(t, h, body, "Bearer good"))
}

func TestPushHandler_SkipsVerificationInDevelop(t *testing.T) {
	cfg := &config.Config{PubSub: &config.PubSubConfig{Provider: pubsub.ProviderGoogle}}
	cfg.Env.Env = config.EnvDevelop

	assert.False(t, newHandler(t, cfg, nil).verifyPushAuth)
}

func TestExtractRequestID(t *testing.T) {
	msg := &pubsub.PushMessage{}
	msg.Message.Attributes = map[string]string{"request_id": "from-attr"}
	event := &service.AccountEvent{RequestID: "from-event"}

	assert.Equal(t, "from-attr", extractRequestID(context.Background(), msg, event))
	msg.Message.Attributes = nil
	assert.Equal(t, "from-event", extractRequestID(context.Background(), msg, event))
	event.RequestID = ""
	assert.NotEmpty(t, extractRequestID(context.Background(), msg, event))
}
