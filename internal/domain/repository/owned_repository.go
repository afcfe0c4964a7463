package repository

import (
	"context"
	"errors"
	"time"

	"tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrNotFound is returned for owned records that are absent or belong to another account.
var ErrNotFound = errors.New("record not found")

// OwnedRepository is the caller-scoped contract shared by every per-account record type.
// An anonymous caller lists nothing and can reach nothing.
type OwnedRepository[T any] interface {
	// List returns the caller's records, newest first. Anonymous callers get an empty slice.
	List(ctx context.Context, caller entity.Caller) ([]*T, error)

	// Get returns ErrNotFound unless the record exists and is owned by the caller.
	Get(ctx context.Context, caller entity.Caller, id uuid.UUID) (*T, error)

	// Create stamps the caller as owner, ignoring any owner set on the record.
	Create(ctx context.Context, caller entity.Caller, record *T) error

	// Update locks the caller's record, applies mutate and saves it.
	Update(ctx context.Context, caller entity.Caller, id uuid.UUID, mutate func(*T) error) (*T, error)

	// Delete removes the caller's record. A second delete of the same id returns ErrNotFound.
	Delete(ctx context.Context, caller entity.Caller, id uuid.UUID) error

	// DeleteAllOwnedBy removes every record of one owner, used by account deletion.
	DeleteAllOwnedBy(ctx context.Context, ownerID uuid.UUID) error
}

// CreatedRange bounds created_at; nil ends are open.
type CreatedRange struct {
	From *time.Time
	To   *time.Time
}

// ClientRepository adds name-based dedup to the owned contract.
type ClientRepository interface {
	OwnedRepository[entity.Client]

	// FindOrCreateByName returns the caller's client with this name, inserting it when absent.
	// The name must already be trimmed and non-blank.
	FindOrCreateByName(ctx context.Context, caller entity.Caller, name string) (*entity.Client, error)
}

// TagRepository persists tags.
type TagRepository interface {
	OwnedRepository[entity.Tag]

	// FindByIDs returns the caller's tags among ids. Unknown or foreign ids are left out.
	FindByIDs(ctx context.Context, caller entity.Caller, ids []uuid.UUID) ([]entity.Tag, error)
}

// ProjectRepository persists projects with their client and tags.
type ProjectRepository interface {
	OwnedRepository[entity.Project]

	// ReplaceTags sets the project's tag links. Tags must already be resolved for the caller.
	ReplaceTags(ctx context.Context, caller entity.Caller, projectID uuid.UUID, tagIDs []uuid.UUID) error

	// CountCompleted counts projects whose status equals "Completed" ignoring case.
	CountCompleted(ctx context.Context, caller entity.Caller, created CreatedRange) (int64, error)

	// DeleteTagLinksOwnedBy removes project_tags rows of one owner's projects.
	DeleteTagLinksOwnedBy(ctx context.Context, ownerID uuid.UUID) error
}

// TaskRepository persists tasks.
type TaskRepository interface {
	OwnedRepository[entity.Task]

	CountCompleted(ctx context.Context, caller entity.Caller, created CreatedRange) (int64, error)
}

// TimeEntryRepository persists time entries.
type TimeEntryRepository interface {
	OwnedRepository[entity.TimeEntry]

	// ListByType lists the caller's entries of one type.
	ListByType(ctx context.Context, caller entity.Caller, entryType entity.TimeEntryType) ([]*entity.TimeEntry, error)
}

// PomodoroSessionRepository persists pomodoro sessions.
type PomodoroSessionRepository interface {
	OwnedRepository[entity.PomodoroSession]
}

// ProfileRepository persists the single profile of each account.
type ProfileRepository interface {
	// GetOrCreate returns the caller's profile, creating an empty one on first access.
	GetOrCreate(ctx context.Context, caller entity.Caller) (*entity.Profile, error)

	// Update locks the caller's profile, creating it first if needed, and applies mutate.
	Update(ctx context.Context, caller entity.Caller, mutate func(*entity.Profile) error) (*entity.Profile, error)

	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
}
