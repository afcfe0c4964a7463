package impl

import (
	"bytes"
	"context"
	"testing"
	"time"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func createProject(t *testing.T, f *fixture, caller entity.Caller, input *usecase.ProjectInput) *entity.Project {
	t.Helper()

	project, err := f.projects.Create(context.Background(), caller, input)
	require.NoError(t, err)

	return project
}

func TestWorkspace_IsolationIsSymmetric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")
	aliceWork := seedWorkspace(t, f, alice)
	bobWork := seedWorkspace(t, f, bob)

	for _, pair := range []struct {
		caller entity.Caller
		other  workspace
	}{{alice, bobWork}, {bob, aliceWork}} {
		_, err := f.projects.Get(ctx, pair.caller, pair.other.project.ID)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
		_, err = f.projects.Update(ctx, pair.caller, pair.other.project.ID, &usecase.ProjectInput{Name: ptr("stolen")})
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
		assert.ErrorIs(t, f.projects.Delete(ctx, pair.caller, pair.other.project.ID), domainerrors.ErrNotFound)

		_, err = f.tasks.Get(ctx, pair.caller, pair.other.task.ID)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
		assert.ErrorIs(t, f.entries.Delete(ctx, pair.caller, pair.other.entry.ID), domainerrors.ErrNotFound)
		_, err = f.pomodoros.Update(ctx, pair.caller, pair.other.session.ID, &usecase.PomodoroInput{Notes: ptr("x")})
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
		_, err = f.tags.Get(ctx, pair.caller, pair.other.tag.ID)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
		_, err = f.clients.Get(ctx, pair.caller, pair.other.client.ID)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)

		projects, err := f.projects.List(ctx, pair.caller)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, pair.caller.AccountID, projects[0].OwnerID)
	}

	// Nothing was changed by the foreign attempts.
	project, err := f.projects.Get(ctx, bob, bobWork.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website", project.Name)
}

func TestWorkspace_AnonymousCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	seedWorkspace(t, f, alice)

	projects, err := f.projects.List(ctx, entity.Anonymous)
	require.NoError(t, err)
	assert.Empty(t, projects)
	entries, err := f.entries.ListByType(ctx, entity.Anonymous, entity.TimeEntryTypeRegular)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = f.clients.Create(ctx, entity.Anonymous, &usecase.ClientInput{Name: ptr("Acme")})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	_, err = f.projects.Create(ctx, entity.Anonymous, &usecase.ProjectInput{Name: ptr("x")})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	_, err = f.tags.Get(ctx, entity.Anonymous, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestProjectService_ClientNameDedup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	first := createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("One"), ClientName: ptr("Acme")})
	second := createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("Two"), ClientName: ptr("  Acme ")})
	bobs := createProject(t, f, bob, &usecase.ProjectInput{Name: ptr("Three"), ClientName: ptr("Acme")})

	require.NotNil(t, first.ClientID)
	require.NotNil(t, second.ClientID)
	assert.Equal(t, *first.ClientID, *second.ClientID)
	assert.NotEqual(t, *first.ClientID, *bobs.ClientID)
	assert.Equal(t, "Acme", second.ClientName())

	clients, err := f.clients.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	blank := createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("Blank"), ClientName: ptr("   ")})
	assert.Nil(t, blank.ClientID)

	unchanged, err := f.projects.Update(ctx, alice, first.ID, &usecase.ProjectInput{Status: ptr("Completed")})
	require.NoError(t, err)
	require.NotNil(t, unchanged.ClientID)
	assert.Equal(t, *first.ClientID, *unchanged.ClientID)

	cleared, err := f.projects.Update(ctx, alice, first.ID, &usecase.ProjectInput{ClientName: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.ClientID)
	assert.Empty(t, cleared.ClientName())

	moved, err := f.projects.Update(ctx, alice, first.ID, &usecase.ProjectInput{ClientName: ptr("Globex")})
	require.NoError(t, err)
	assert.Equal(t, "Globex", moved.ClientName())
}

func TestProjectService_Tags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	mine, err := f.tags.Create(ctx, alice, &usecase.TagInput{Name: ptr("urgent"), Color: ptr("#f00")})
	require.NoError(t, err)
	theirs, err := f.tags.Create(ctx, bob, &usecase.TagInput{Name: ptr("urgent")})
	require.NoError(t, err)

	_, err = f.projects.Create(ctx, alice, &usecase.ProjectInput{Name: ptr("x"), TagIDs: &[]uuid.UUID{theirs.ID}})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	projects, err := f.projects.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, projects, "a rejected tag aborts the whole create")

	project := createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("x"), TagIDs: &[]uuid.UUID{mine.ID, mine.ID}})
	require.Len(t, project.Tags, 1)
	assert.Equal(t, mine.ID, project.Tags[0].ID)

	renamed, err := f.projects.Update(ctx, alice, project.ID, &usecase.ProjectInput{Name: ptr("y")})
	require.NoError(t, err)
	assert.Len(t, renamed.Tags, 1, "absent tag_ids keep the links")

	cleared, err := f.projects.Update(ctx, alice, project.ID, &usecase.ProjectInput{TagIDs: &[]uuid.UUID{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Tags)
}

func TestProjectService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")

	_, err := f.projects.Create(ctx, alice, &usecase.ProjectInput{Name: ptr("  ")})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	_, err = f.projects.Create(ctx, alice, &usecase.ProjectInput{Name: ptr("x"), Progress: ptr(101)})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	project := createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("x")})
	assert.Equal(t, entity.ProjectStatusPlanning, project.Status)
	assert.Zero(t, project.Progress)
}

func TestCompletedCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	done := createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("a"), Status: ptr("completed")})
	createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("b"), Status: ptr("Completed")})
	createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("c")})
	createProject(t, f, bob, &usecase.ProjectInput{Name: ptr("d"), Status: ptr("Completed")})

	count, err := f.projects.CountCompleted(ctx, alice, usecase.CreatedBetween{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	future := time.Now().Add(time.Hour)
	count, err = f.projects.CountCompleted(ctx, alice, usecase.CreatedBetween{Start: &future})
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.tasks.Create(ctx, alice, &usecase.TaskInput{ProjectID: &done.ID, Title: ptr("t1"), Status: ptr(entity.TaskStatusCompleted)})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, alice, &usecase.TaskInput{ProjectID: &done.ID, Title: ptr("t2")})
	require.NoError(t, err)

	count, err = f.tasks.CountCompleted(ctx, alice, usecase.CreatedBetween{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = f.tasks.CountCompleted(ctx, entity.Anonymous, usecase.CreatedBetween{})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestTaskService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")
	project := createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("a")})
	foreign := createProject(t, f, bob, &usecase.ProjectInput{Name: ptr("b")})

	_, err := f.tasks.Create(ctx, alice, &usecase.TaskInput{ProjectID: &foreign.ID, Title: ptr("x")})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = f.tasks.Create(ctx, alice, &usecase.TaskInput{Title: ptr("x")})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	bad := entity.TaskStatus("Blocked")
	_, err = f.tasks.Create(ctx, alice, &usecase.TaskInput{ProjectID: &project.ID, Title: ptr("x"), Status: &bad})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	task, err := f.tasks.Create(ctx, alice, &usecase.TaskInput{ProjectID: &project.ID, Title: ptr("x"), AssignedTo: ptr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusPending, task.Status)
	require.NotNil(t, task.AssignedTo)

	moved, err := f.tasks.Update(ctx, alice, task.ID, &usecase.TaskInput{ProjectID: &foreign.ID})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Nil(t, moved)

	updated, err := f.tasks.Update(ctx, alice, task.ID, &usecase.TaskInput{
		Status:     ptr(entity.TaskStatusOnHold),
		AssignedTo: ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusOnHold, updated.Status)
	assert.Nil(t, updated.AssignedTo)
	assert.Equal(t, "x", updated.Title)

	require.NoError(t, f.tasks.Delete(ctx, alice, task.ID))
	assert.ErrorIs(t, f.tasks.Delete(ctx, alice, task.ID), domainerrors.ErrNotFound)
}

func TestTimeEntryService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	project := createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("a")})

	entry, err := f.entries.Create(ctx, alice, &usecase.TimeEntryInput{
		ProjectID: &project.ID,
		StartTime: ptr("09:15"),
		EndTime:   ptr("11:00:00"),
		Date:      ptr(testDate.Add(13 * time.Hour)),
		Billable:  ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 105, entry.Duration)
	assert.Equal(t, entity.TimeEntryTypeRegular, entry.Type)
	assert.Equal(t, "2026-03-02", entry.Date.Format(entity.DateLayout))

	overnight, err := f.entries.Create(ctx, alice, &usecase.TimeEntryInput{
		ProjectID: &project.ID,
		StartTime: ptr("23:30"),
		EndTime:   ptr("00:15"),
		Date:      &testDate,
		Type:      ptr(entity.TimeEntryTypePomodoro),
	})
	require.NoError(t, err)
	assert.Equal(t, 45, overnight.Duration)

	explicit, err := f.entries.Update(ctx, alice, entry.ID, &usecase.TimeEntryInput{Duration: ptr(90)})
	require.NoError(t, err)
	assert.Equal(t, 90, explicit.Duration)

	for name, input := range map[string]*usecase.TimeEntryInput{
		"bad clock":    {ProjectID: &project.ID, StartTime: ptr("25:00"), EndTime: ptr("10:00"), Date: &testDate},
		"missing date": {ProjectID: &project.ID, StartTime: ptr("09:00"), EndTime: ptr("10:00")},
		"bad type":     {ProjectID: &project.ID, StartTime: ptr("09:00"), EndTime: ptr("10:00"), Date: &testDate, Type: ptr(entity.TimeEntryType("other"))},
		"negative":     {ProjectID: &project.ID, StartTime: ptr("09:00"), EndTime: ptr("10:00"), Date: &testDate, Duration: ptr(-5)},
	} {
		_, err := f.entries.Create(ctx, alice, input)
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed, name)
	}

	pomodoros, err := f.entries.ListByType(ctx, alice, entity.TimeEntryTypePomodoro)
	require.NoError(t, err)
	require.Len(t, pomodoros, 1)
	assert.Equal(t, overnight.ID, pomodoros[0].ID)

	all, err := f.entries.ListByType(ctx, alice, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.entries.ListByType(ctx, alice, "other")
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestTimeEntryService_Export(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	project := createProject(t, f, alice, &usecase.ProjectInput{Name: ptr("Website")})
	_, err := f.entries.Create(ctx, alice, &usecase.TimeEntryInput{
		ProjectID:   &project.ID,
		Description: ptr("Layout"),
		StartTime:   ptr("09:00"),
		EndTime:     ptr("10:00"),
		Date:        &testDate,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	contentType, err := f.entries.Export(ctx, alice, "", &buf)
	require.NoError(t, err)
	assert.Contains(t, contentType, "spreadsheetml")

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Timesheet")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, "Website", rows[1][1])
	assert.Equal(t, "Layout", rows[1][2])

	_, err = f.entries.Export(ctx, entity.Anonymous, "", &buf)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestPomodoroService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	session, err := f.pomodoros.Create(ctx, alice, &usecase.PomodoroInput{
		StartTime: &start,
		EndTime:   ptr(start.Add(25 * time.Minute)),
	})
	require.NoError(t, err)
	assert.Equal(t, 25, session.Duration)
	assert.Equal(t, 1, session.Cycles)
	assert.Zero(t, session.BreakDuration)

	_, err = f.pomodoros.Create(ctx, alice, &usecase.PomodoroInput{StartTime: &start, EndTime: ptr(start.Add(-time.Minute))})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	_, err = f.pomodoros.Update(ctx, alice, session.ID, &usecase.PomodoroInput{Cycles: ptr(0)})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	updated, err := f.pomodoros.Update(ctx, alice, session.ID, &usecase.PomodoroInput{Cycles: ptr(4), BreakDuration: ptr(5), Notes: ptr("deep work")})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Cycles)
	assert.Equal(t, 5, updated.BreakDuration)
	assert.Equal(t, 25, updated.Duration)
}

func TestClientAndTagServices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")

	client, err := f.clients.Create(ctx, alice, &usecase.ClientInput{Name: ptr(" Acme "), Email: ptr("billing@acme.test")})
	require.NoError(t, err)
	assert.Equal(t, "Acme", client.Name)
	assert.Equal(t, entity.DefaultCurrency, client.Currency)
	assert.Equal(t, alice.AccountID, client.OwnerID)

	_, err = f.clients.Create(ctx, alice, &usecase.ClientInput{Name: ptr("Acme")})
	assert.ErrorIs(t, err, domainerrors.ErrNameTaken)

	updated, err := f.clients.Update(ctx, alice, client.ID, &usecase.ClientInput{Currency: ptr("eur")})
	require.NoError(t, err)
	assert.Equal(t, "EUR", updated.Currency)
	assert.Equal(t, "billing@acme.test", updated.Email)

	_, err = f.clients.Update(ctx, alice, client.ID, &usecase.ClientInput{Name: ptr("")})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = f.tags.Create(ctx, alice, &usecase.TagInput{})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	tag, err := f.tags.Create(ctx, alice, &usecase.TagInput{Name: ptr("urgent")})
	require.NoError(t, err)
	_, err = f.tags.Create(ctx, alice, &usecase.TagInput{Name: ptr("urgent")})
	assert.ErrorIs(t, err, domainerrors.ErrNameTaken)

	require.NoError(t, f.tags.Delete(ctx, alice, tag.ID))
	_, err = f.tags.Get(ctx, alice, tag.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
