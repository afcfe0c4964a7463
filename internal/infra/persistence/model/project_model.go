package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectModel mirrors the 'projects' table. Tags go through 'project_tags'.
type ProjectModel struct {
	Owned
	Name      string       `gorm:"type:varchar(255);not null"`
	ClientID  *uuid.UUID   `gorm:"type:uuid;index"`
	Client    *ClientModel `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL"`
	Status    string       `gorm:"type:varchar(50);not null;default:Planning"`
	Progress  int          `gorm:"not null;default:0"`
	Tags      []TagModel   `gorm:"many2many:project_tags;joinForeignKey:ProjectID;joinReferences:TagID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProjectModel) TableName() string {
	return "projects"
}

// ProjectTagModel is the join row between projects and tags.
type ProjectTagModel struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (ProjectTagModel) TableName() string {
	return "project_tags"
}
