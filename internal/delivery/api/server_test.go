package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"tracker/config"
	apimiddleware "tracker/internal/delivery/api/middleware"
	"tracker/internal/delivery/api/router"
	"tracker/internal/delivery/api/router/handler"
	"tracker/internal/infra/auth"
	"tracker/internal/infra/export"
	"tracker/internal/infra/metrics"
	"tracker/internal/infra/persistence/postgres"
	"tracker/internal/infra/persistence/testdb"
	"tracker/internal/infra/pubsub"
	"tracker/internal/infra/ratelimit"
	"tracker/internal/infra/storage"
	"tracker/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type testAPI struct {
	t *testing.T
	e *echo.Echo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "api_test_access_secret_long_enough"
	cfg.SecretKey.Refresh = "api_test_refresh_secret_long_enough"
	cfg.HTTP.MaxRequestBodySize = "4M"
	cfg.Metrics.Enabled = true
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db := testdb.New(t)
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	avatars := storage.NewBlobAvatarStore(bucket, "")
	publisher := pubsub.NewNoopPublisher(logger)
	m := metrics.NewMetrics()

	txManager := postgres.NewTransactionManager(db)
	accountRepo := postgres.NewAccountRepository(db)
	projectRepo := postgres.NewProjectRepository(db)

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		TxManager:    txManager,
		AccountRepo:  accountRepo,
		Hasher:       auth.NewBcryptHasherWithCost(0),
		TokenService: tokens,
		Limiter:      ratelimit.NewNoopLoginLimiter(),
		Metrics:      m,
		Publisher:    publisher,
		Logger:       logger,
	})
	profileUC := impl.NewProfileService(impl.ProfileServiceParams{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		ProfileRepo: postgres.NewProfileRepository(db),
		Avatars:     avatars,
		Logger:      logger,
	})

	e := NewEcho(ServerParams{
		Cfg:     cfg,
		Logger:  logger,
		Metrics: m,
		RouterParams: router.RouterParams{
			AuthHandler: handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Logger: logger}),
			AccountHandler: handler.NewAccountHandler(handler.AccountHandlerParams{
				AccountUC: impl.NewAccountService(impl.AccountServiceParams{TxManager: txManager, Publisher: publisher, Logger: logger}),
				ProfileUC: profileUC,
				Logger:    logger,
			}),
			WorkspaceHandler: handler.NewWorkspaceHandler(handler.WorkspaceHandlerParams{
				ClientUC:  impl.NewClientService(impl.ClientServiceParams{ClientRepo: postgres.NewClientRepository(db)}),
				TagUC:     impl.NewTagService(impl.TagServiceParams{TagRepo: postgres.NewTagRepository(db)}),
				ProjectUC: impl.NewProjectService(impl.ProjectServiceParams{TxManager: txManager, ProjectRepo: projectRepo}),
				TaskUC: impl.NewTaskService(impl.TaskServiceParams{
					TaskRepo:    postgres.NewTaskRepository(db),
					ProjectRepo: projectRepo,
				}),
				TimeEntryUC: impl.NewTimeEntryService(impl.TimeEntryServiceParams{
					EntryRepo:   postgres.NewTimeEntryRepository(db),
					ProjectRepo: projectRepo,
					Exporter:    export.NewXLSXExporter(),
					Logger:      logger,
				}),
				PomodoroUC: impl.NewPomodoroService(impl.PomodoroServiceParams{
					SessionRepo: postgres.NewPomodoroSessionRepository(db),
				}),
			}),
			AuthMiddleware: apimiddleware.NewAuthMiddleware(tokens),
		},
	})

	return &testAPI{t: t, e: e}
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return a.send(req, token)
}

func (a *testAPI) send(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}

	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))

	return out
}

// register signs up email and returns its access token.
func (a *testAPI) register(email string) string {
	a.t.Helper()

	rec, env := a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email":      email,
		"password":   "correct horse battery",
		"first_name": "Test",
		"last_name":  "User",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	return decodeData[handler.RegisterResponse](a.t, env).Tokens.AccessToken
}

func TestAPI_Health(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeData[handler.HealthResponse](t, env).Status)
	assert.NotEmpty(t, env.Meta.RequestID)
	assert.Equal(t, env.Meta.RequestID, rec.Header().Get(echo.HeaderXRequestID))
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice@example.com")

	rec, env := api.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": "ALICE@example.com", "password": "another password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_TAKEN", env.Error.Code)

	rec, env = api.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "bob@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, map[string]any{"password": "must be at least 8"}, env.Error.Details)

	rec, env = api.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeData[handler.LoginResponse](t, env)
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, "alice@example.com", login.Account.Email)
	assert.Equal(t, "Test User", login.Account.Name)
	assert.NotEmpty(t, login.Tokens.RefreshToken)

	wrong, wrongEnv := api.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong password"})
	unknown, unknownEnv := api.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongEnv.Error, unknownEnv.Error)
}

func TestAPI_TokenEndpoints(t *testing.T) {
	api := newTestAPI(t)
	_, env := api.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "correct horse battery",
	})
	tokens := decodeData[handler.RegisterResponse](t, env).Tokens

	rec, env := api.do(http.MethodPost, "/auth/token/verify", "", map[string]string{"token": tokens.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	verified := decodeData[handler.VerifyTokenResponse](t, env)
	assert.True(t, verified.Valid)
	assert.Equal(t, "alice@example.com", verified.User.Email)

	rec, _ = api.do(http.MethodPost, "/auth/token/verify", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = api.do(http.MethodPost, "/auth/token/verify", "", map[string]string{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)

	rec, env = api.do(http.MethodPost, "/auth/token/refresh", "", map[string]string{"refresh": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	access := decodeData[handler.RefreshTokenResponse](t, env).Access
	rec, _ = api.do(http.MethodGet, "/api/v1/profile", access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(http.MethodPost, "/auth/token/refresh", "", map[string]string{"refresh": tokens.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = api.do(http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decodeData[map[string]string](t, env)["message"])
}

func TestAPI_FederatedLogin(t *testing.T) {
	api := newTestAPI(t)
	payload := map[string]any{
		"firebase_uid":   "uid-1",
		"email":          "grace@example.com",
		"name":           "Grace Hopper",
		"picture":        "https://cdn.example.com/grace.png",
		"email_verified": true,
		"mode":           "signup",
	}

	rec, env := api.do(http.MethodPost, "/auth/federated", "", payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeData[handler.FederatedLoginResponse](t, env)
	assert.Equal(t, "User registered successfully", first.Message)
	assert.Equal(t, "google", first.User.Provider)
	require.NotNil(t, first.User.FederatedID)
	assert.Equal(t, "uid-1", *first.User.FederatedID)

	payload["mode"] = "login"
	_, env = api.do(http.MethodPost, "/auth/federated", "", payload)
	second := decodeData[handler.FederatedLoginResponse](t, env)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "User logged in successfully", second.Message)

	rec, env = api.do(http.MethodPost, "/auth/federated", "", map[string]any{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestAPI_OwnedRoutesAuthentication(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/v1/projects", "/api/v1/clients", "/api/v1/tasks", "/api/v1/time-entries", "/api/v1/tags", "/api/v1/pomodoro-sessions"} {
		rec, env := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, "[]", string(env.Data), path)

		rec, _ = api.do(http.MethodGet, path, "not-a-token", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)

		rec, env = api.do(http.MethodPost, path, "", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "UNAUTHENTICATED", env.Error.Code, path)
	}

	rec, _ := api.do(http.MethodDelete, "/api/v1/account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_ProjectIsolationAndDedup(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com")
	bob := api.register("bob@example.com")

	rec, env := api.do(http.MethodPost, "/api/v1/tags", alice, map[string]string{"name": "billable", "color": "#00ff00"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tag := decodeData[handler.TagResponse](t, env)

	rec, env = api.do(http.MethodPost, "/api/v1/projects", alice, map[string]any{
		"name":        "Website",
		"client_name": " Acme ",
		"tag_ids":     []string{tag.ID.String()},
		"owner_id":    "00000000-0000-0000-0000-000000000001",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decodeData[handler.ProjectResponse](t, env)
	require.NotNil(t, project.Client)
	assert.Equal(t, "Acme", project.Client.Name)
	assert.Equal(t, "Planning", project.Status)
	require.Len(t, project.Tags, 1)

	_, env = api.do(http.MethodPost, "/api/v1/projects", alice, map[string]any{"name": "Mobile", "client_name": "Acme"})
	assert.Equal(t, project.Client.ID, decodeData[handler.ProjectResponse](t, env).Client.ID)

	projectPath := "/api/v1/projects/" + project.ID.String()
	rec, env = api.do(http.MethodGet, projectPath, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	rec, _ = api.do(http.MethodPatch, projectPath, bob, map[string]string{"name": "Stolen"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = api.do(http.MethodDelete, projectPath, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = api.do(http.MethodGet, "/api/v1/projects/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, env = api.do(http.MethodGet, "/api/v1/projects", bob, nil)
	assert.JSONEq(t, "[]", string(env.Data))

	rec, env = api.do(http.MethodPut, projectPath, alice, map[string]any{"client_name": "", "status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[handler.ProjectResponse](t, env)
	assert.Nil(t, updated.Client)
	assert.Len(t, updated.Tags, 1)

	rec, env = api.do(http.MethodGet, "/api/v1/projects/completed-count", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decodeData[handler.CompletedProjectsResponse](t, env).CompletedProjects)

	rec, env = api.do(http.MethodGet, "/api/v1/projects/completed-count?start=yesterday", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rec, _ = api.do(http.MethodPost, "/api/v1/tasks", bob, map[string]any{"project": project.ID.String(), "title": "Sneaky"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(http.MethodDelete, projectPath, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = api.do(http.MethodDelete, projectPath, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_TimeEntries(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com")

	_, env := api.do(http.MethodPost, "/api/v1/projects", alice, map[string]string{"name": "Website"})
	project := decodeData[handler.ProjectResponse](t, env)

	rec, env := api.do(http.MethodPost, "/api/v1/time-entries", alice, map[string]any{
		"project":    project.ID.String(),
		"start_time": "09:00",
		"end_time":   "10:45",
		"date":       "2026-03-02",
		"billable":   true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decodeData[handler.TimeEntryResponse](t, env)
	assert.Equal(t, 105, entry.Duration)
	assert.Equal(t, "2026-03-02", entry.Date)
	assert.Equal(t, "regular", entry.Type)

	rec, _ = api.do(http.MethodPost, "/api/v1/time-entries", alice, map[string]any{
		"project": project.ID.String(), "start_time": "12:00", "end_time": "12:25", "date": "2026-03-02", "type": "pomodoro",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	_, env = api.do(http.MethodGet, "/api/v1/time-entries?type=pomodoro", alice, nil)
	assert.Len(t, decodeData[[]handler.TimeEntryResponse](t, env), 1)
	_, env = api.do(http.MethodGet, "/api/v1/time-entries", alice, nil)
	assert.Len(t, decodeData[[]handler.TimeEntryResponse](t, env), 2)
	rec, _ = api.do(http.MethodGet, "/api/v1/time-entries?type=bogus", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = api.do(http.MethodGet, "/api/v1/time-entries/export", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "time_entries.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	rec, _ = api.do(http.MethodGet, "/api/v1/time-entries/export", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_ProfileAndAvatar(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com")

	rec, env := api.do(http.MethodPatch, "/api/v1/profile", alice, map[string]any{
		"first_name": "Alice",
		"rate":       75,
		"website":    "alice.dev",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decodeData[handler.ProfileResponse](t, env)
	assert.Equal(t, "Alice", profile.Account.FirstName)
	assert.Equal(t, "https://alice.dev", profile.Website)
	assert.Nil(t, profile.AvatarURL)

	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), []byte("pixels")...)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	header.Set(echo.HeaderContentType, "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/avatar", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec, env = api.send(req, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile = decodeData[handler.ProfileResponse](t, env)
	require.NotNil(t, profile.AvatarURL)

	avatar := httptest.NewRecorder()
	api.e.ServeHTTP(avatar, httptest.NewRequest(http.MethodGet, *profile.AvatarURL, nil))
	assert.Equal(t, http.StatusOK, avatar.Code)
	assert.Equal(t, "image/png", avatar.Header().Get(echo.HeaderContentType))
	assert.Equal(t, png, avatar.Body.Bytes())

	req = httptest.NewRequest(http.MethodPut, "/api/v1/profile/avatar", strings.NewReader(""))
	rec, env = api.send(req, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "avatar file is required", env.Error.Details)
}

func TestAPI_DeleteAccount(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com")
	api.do(http.MethodPost, "/api/v1/projects", alice, map[string]string{"name": "Website", "client_name": "Acme"})

	rec, env := api.do(http.MethodDelete, "/api/v1/account", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Account deleted successfully", decodeData[map[string]string](t, env)["message"])

	rec, _ = api.do(http.MethodPost, "/auth/token/verify", "", map[string]string{"token": alice})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The access token is still signed and unexpired, but its account is gone.
	rec, env = api.do(http.MethodDelete, "/api/v1/account", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)

	rec, _ = api.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com", "password": "correct horse battery"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_Metrics(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodGet, "/health", "", nil)

	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tracker_http_requests_total{method="GET",path="/health",status="200"}`)
}
