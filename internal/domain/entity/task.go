package entity

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusOnHold     TaskStatus = "On Hold"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOnHold:
		return true
	default:
		return false
	}
}

// Task is a unit of work inside a project.
type Task struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	ProjectID  uuid.UUID
	Title      string
	Status     TaskStatus
	AssignedTo *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
