package impl

import (
	"context"
	"testing"
	"time"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/service"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workspace struct {
	client  *entity.Client
	tag     *entity.Tag
	project *entity.Project
	task    *entity.Task
	entry   *entity.TimeEntry
	session *entity.PomodoroSession
}

// seedWorkspace gives caller one record of every owned type.
func seedWorkspace(t *testing.T, f *fixture, caller entity.Caller) workspace {
	t.Helper()
	ctx := context.Background()

	tag, err := f.tags.Create(ctx, caller, &usecase.TagInput{Name: ptr("billable")})
	require.NoError(t, err)
	project, err := f.projects.Create(ctx, caller, &usecase.ProjectInput{
		Name:       ptr("Website"),
		ClientName: ptr("Acme"),
		TagIDs:     &[]uuid.UUID{tag.ID},
	})
	require.NoError(t, err)
	task, err := f.tasks.Create(ctx, caller, &usecase.TaskInput{ProjectID: &project.ID, Title: ptr("Design")})
	require.NoError(t, err)
	entry, err := f.entries.Create(ctx, caller, &usecase.TimeEntryInput{
		ProjectID: &project.ID,
		StartTime: ptr("09:00"),
		EndTime:   ptr("10:30"),
		Date:      ptr(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session, err := f.pomodoros.Create(ctx, caller, &usecase.PomodoroInput{
		StartTime: &start,
		EndTime:   ptr(start.Add(25 * time.Minute)),
	})
	require.NoError(t, err)
	_, err = f.profiles.GetProfile(ctx, caller)
	require.NoError(t, err)

	return workspace{client: project.Client, tag: tag, project: project, task: task, entry: entry, session: session}
}

func TestAccountService_DeleteAccount_RemovesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")
	seeded := seedWorkspace(t, f, alice)
	seedWorkspace(t, f, bob)

	require.NoError(t, f.accounts.DeleteAccount(ctx, alice))

	_, err := f.projects.Get(ctx, alice, seeded.project.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = f.tasks.Get(ctx, alice, seeded.task.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = f.entries.Get(ctx, alice, seeded.entry.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = f.pomodoros.Get(ctx, alice, seeded.session.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = f.tags.Get(ctx, alice, seeded.tag.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = f.clients.Get(ctx, alice, seeded.client.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	for _, table := range []string{"profiles", "time_entries", "tasks", "projects", "clients", "tags", "pomodoro_sessions"} {
		var count int64
		require.NoError(t, f.db.Table(table).Where("owner_id = ?", alice.AccountID).Count(&count).Error)
		assert.Zero(t, count, table)
	}
	var links int64
	require.NoError(t, f.db.Table("project_tags").Count(&links).Error)
	assert.Equal(t, int64(1), links, "only bob's project link is left")

	bobProjects, err := f.projects.List(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobProjects, 1)
	assert.Len(t, bobProjects[0].Tags, 1)

	_, err = f.auth.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: testPassword})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Contains(t, f.publisher.published(), service.AccountDeleted)
}

func TestAccountService_DeleteAccount_Twice(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com")

	require.NoError(t, f.accounts.DeleteAccount(context.Background(), alice))
	err := f.accounts.DeleteAccount(context.Background(), alice)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestAccountService_DeleteAccount_Anonymous(t *testing.T) {
	f := newFixture(t)

	err := f.accounts.DeleteAccount(context.Background(), entity.Anonymous)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	assert.Empty(t, f.publisher.published())
}

func TestAccountService_DeleteAccount_EventCarriesAccount(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com")

	require.NoError(t, f.accounts.DeleteAccount(context.Background(), alice))

	var deleted *service.AccountEvent
	for _, call := range f.publisher.Calls {
		if event := call.Arguments.Get(1).(*service.AccountEvent); event.Type == service.AccountDeleted {
			deleted = event
		}
	}
	require.NotNil(t, deleted)
	assert.Equal(t, alice.AccountID.String(), deleted.AccountID)
	assert.Equal(t, "alice@example.com", deleted.Email)
}
