package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntryModel mirrors the 'time_entries' table. Clock times are stored as text.
type TimeEntryModel struct {
	Owned
	ProjectID   uuid.UUID     `gorm:"type:uuid;not null;index"`
	Project     *ProjectModel `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Description string        `gorm:"type:text;not null;default:''"`
	StartTime   string        `gorm:"type:varchar(8);not null"`
	EndTime     string        `gorm:"type:varchar(8);not null"`
	Duration    int           `gorm:"not null"`
	Date        time.Time     `gorm:"type:date;not null;index"`
	Billable    bool          `gorm:"not null"`
	Type        string        `gorm:"type:varchar(20);not null;default:regular;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TimeEntryModel) TableName() string {
	return "time_entries"
}
