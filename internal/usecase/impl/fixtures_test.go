package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"tracker/config"
	"tracker/internal/domain/entity"
	"tracker/internal/domain/service"
	"tracker/internal/infra/auth"
	"tracker/internal/infra/export"
	"tracker/internal/infra/persistence/postgres"
	"tracker/internal/infra/persistence/testdb"
	"tracker/internal/infra/ratelimit"
	"tracker/internal/infra/storage"
	"tracker/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"gorm.io/gorm"
)

const testLoginMaxFailures = 3

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishAccountEvent(ctx context.Context, event *service.AccountEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

// published returns the event types seen so far, in order.
func (m *mockPublisher) published() []service.AccountEventType {
	var types []service.AccountEventType
	for _, call := range m.Calls {
		if call.Method == "PublishAccountEvent" {
			types = append(types, call.Arguments.Get(1).(*service.AccountEvent).Type)
		}
	}

	return types
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, idToken string) (*service.FederatedIdentity, error) {
	args := m.Called(ctx, idToken)
	identity, _ := args.Get(0).(*service.FederatedIdentity)

	return identity, args.Error(1)
}

func (m *mockVerifier) Name() string {
	return "mock"
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) ObserveLogin(method, outcome string) {
	m.Called(method, outcome)
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.SecretKey.Refresh = "test_refresh_secret_key_very_long_for_testing"
	cfg.Auth = &config.AuthConfig{
		LoginMaxFailures: testLoginMaxFailures,
		LoginWindow:      time.Minute,
		LoginLockout:     time.Minute,
	}

	return cfg
}

// fixture wires every usecase against one in-memory database.
type fixture struct {
	db        *gorm.DB
	redis     *miniredis.Miniredis
	publisher *mockPublisher
	metrics   *mockMetrics
	tokens    service.TokenService
	avatars   service.AvatarStore

	auth      usecase.AuthUsecase
	accounts  usecase.AccountUsecase
	profiles  usecase.ProfileUsecase
	clients   usecase.ClientUsecase
	tags      usecase.TagUsecase
	projects  usecase.ProjectUsecase
	tasks     usecase.TaskUsecase
	entries   usecase.TimeEntryUsecase
	pomodoros usecase.PomodoroUsecase
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithVerifier(t, nil)
}

func newFixtureWithVerifier(t *testing.T, verifier service.FederatedVerifier) *fixture {
	t.Helper()

	cfg := newTestConfig()
	db := testdb.New(t)
	logger := newDiscardLogger()

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := ratelimit.NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	avatars := storage.NewBlobAvatarStore(bucket, "")

	publisher := &mockPublisher{}
	publisher.On("PublishAccountEvent", mock.Anything, mock.Anything).Return(nil).Maybe()
	metrics := &mockMetrics{}
	metrics.On("ObserveLogin", mock.Anything, mock.Anything).Maybe()

	txManager := postgres.NewTransactionManager(db)
	accountRepo := postgres.NewAccountRepository(db)
	projectRepo := postgres.NewProjectRepository(db)

	return &fixture{
		db:        db,
		redis:     mr,
		publisher: publisher,
		metrics:   metrics,
		tokens:    tokens,
		avatars:   avatars,
		auth: NewAuthService(AuthServiceParams{
			TxManager:    txManager,
			AccountRepo:  accountRepo,
			Hasher:       auth.NewBcryptHasherWithCost(0),
			TokenService: tokens,
			Verifier:     verifier,
			Limiter:      ratelimit.NewRedisLoginLimiter(client, cfg.Auth),
			Metrics:      metrics,
			Publisher:    publisher,
			Logger:       logger,
		}),
		accounts: NewAccountService(AccountServiceParams{
			TxManager: txManager,
			Publisher: publisher,
			Logger:    logger,
		}),
		profiles: NewProfileService(ProfileServiceParams{
			TxManager:   txManager,
			AccountRepo: accountRepo,
			ProfileRepo: postgres.NewProfileRepository(db),
			Avatars:     avatars,
			Logger:      logger,
		}),
		clients:  NewClientService(ClientServiceParams{ClientRepo: postgres.NewClientRepository(db)}),
		tags:     NewTagService(TagServiceParams{TagRepo: postgres.NewTagRepository(db)}),
		projects: NewProjectService(ProjectServiceParams{TxManager: txManager, ProjectRepo: projectRepo}),
		tasks: NewTaskService(TaskServiceParams{
			TaskRepo:    postgres.NewTaskRepository(db),
			ProjectRepo: projectRepo,
		}),
		entries: NewTimeEntryService(TimeEntryServiceParams{
			EntryRepo:   postgres.NewTimeEntryRepository(db),
			ProjectRepo: projectRepo,
			Exporter:    export.NewXLSXExporter(),
			Logger:      logger,
		}),
		pomodoros: NewPomodoroService(PomodoroServiceParams{
			SessionRepo: postgres.NewPomodoroSessionRepository(db),
		}),
	}
}

// register creates a password account and returns it as a caller.
func (f *fixture) register(t *testing.T, email string) entity.Caller {
	t.Helper()

	out, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Email:     email,
		Password:  "correct horse battery",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)

	return entity.NewCaller(out.Account.ID)
}

func ptr[T any](v T) *T {
	return &v
}
