package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskModel mirrors the 'tasks' table.
type TaskModel struct {
	Owned
	ProjectID  uuid.UUID     `gorm:"type:uuid;not null;index"`
	Project    *ProjectModel `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Title      string        `gorm:"type:varchar(255);not null"`
	Status     string        `gorm:"type:varchar(20);not null;default:Pending"`
	AssignedTo *string       `gorm:"type:varchar(255)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (TaskModel) TableName() string {
	return "tasks"
}
