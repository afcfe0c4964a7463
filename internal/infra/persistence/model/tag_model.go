package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TagModel mirrors the 'tags' table. (owner_id, name) is unique.
type TagModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tags_owner_name,priority:1"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_tags_owner_name,priority:2"`
	Color       string    `gorm:"type:varchar(20);not null;default:''"`
	Description string    `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TagModel) TableName() string {
	return "tags"
}

func (m *TagModel) GetID() uuid.UUID { return m.ID }

func (m *TagModel) GetOwnerID() uuid.UUID { return m.OwnerID }

func (m *TagModel) SetOwnerID(ownerID uuid.UUID) { m.OwnerID = ownerID }

func (m *TagModel) BeforeCreate(_ *gorm.DB) error {
	return assignID(&m.ID)
}
