package usecase

import (
	"context"
	"io"
	"time"

	"tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// Inputs below are partial: on update a nil field keeps the stored value.
// On create, required fields are checked by the usecase.

// ClientInput describes a client write.
type ClientInput struct {
	Name     *string
	Email    *string
	Address  *string
	Note     *string
	Currency *string
}

// TagInput describes a tag write.
type TagInput struct {
	Name        *string
	Color       *string
	Description *string
}

// ProjectInput describes a project write.
// ClientName is deduplicated per owner; a blank value clears the client.
type ProjectInput struct {
	Name       *string
	ClientName *string
	Status     *string
	Progress   *int
	TagIDs     *[]uuid.UUID
}

// TaskInput describes a task write. An empty AssignedTo clears it.
type TaskInput struct {
	ProjectID  *uuid.UUID
	Title      *string
	Status     *entity.TaskStatus
	AssignedTo *string
}

// TimeEntryInput describes a time entry write.
// A missing Duration on create is derived from StartTime and EndTime.
type TimeEntryInput struct {
	ProjectID   *uuid.UUID
	Description *string
	StartTime   *string
	EndTime     *string
	Duration    *int
	Date        *time.Time
	Billable    *bool
	Type        *entity.TimeEntryType
}

// PomodoroInput describes a pomodoro session write.
type PomodoroInput struct {
	StartTime     *time.Time
	EndTime       *time.Time
	Duration      *int
	BreakDuration *int
	Cycles        *int
	Notes         *string
}

// CreatedBetween bounds completed-count queries on created_at.
type CreatedBetween struct {
	Start *time.Time
	End   *time.Time
}

// CrudUsecase is the owner-scoped surface every workspace resource exposes.
type CrudUsecase[T any, In any] interface {
	List(ctx context.Context, caller entity.Caller) ([]*T, error)
	Get(ctx context.Context, caller entity.Caller, id uuid.UUID) (*T, error)
	Create(ctx context.Context, caller entity.Caller, input *In) (*T, error)
	Update(ctx context.Context, caller entity.Caller, id uuid.UUID, input *In) (*T, error)
	Delete(ctx context.Context, caller entity.Caller, id uuid.UUID) error
}

type ClientUsecase interface {
	CrudUsecase[entity.Client, ClientInput]
}

type TagUsecase interface {
	CrudUsecase[entity.Tag, TagInput]
}

type ProjectUsecase interface {
	CrudUsecase[entity.Project, ProjectInput]

	CountCompleted(ctx context.Context, caller entity.Caller, between CreatedBetween) (int64, error)
}

type TaskUsecase interface {
	CrudUsecase[entity.Task, TaskInput]

	CountCompleted(ctx context.Context, caller entity.Caller, between CreatedBetween) (int64, error)
}

type TimeEntryUsecase interface {
	CrudUsecase[entity.TimeEntry, TimeEntryInput]

	// ListByType filters by entry type; an empty type lists everything.
	ListByType(ctx context.Context, caller entity.Caller, entryType entity.TimeEntryType) ([]*entity.TimeEntry, error)

	// Export writes the caller's entries as a spreadsheet and returns its content type.
	Export(ctx context.Context, caller entity.Caller, entryType entity.TimeEntryType, w io.Writer) (string, error)
}

type PomodoroUsecase interface {
	CrudUsecase[entity.PomodoroSession, PomodoroInput]
}
