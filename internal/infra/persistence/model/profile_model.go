package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileModel mirrors the 'profiles' table, one row per account.
type ProfileModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_profiles_owner"`
	Phone     string    `gorm:"type:varchar(50);not null;default:''"`
	JobTitle  string    `gorm:"type:varchar(150);not null;default:''"`
	Company   string    `gorm:"type:varchar(150);not null;default:''"`
	Bio       string    `gorm:"type:text;not null;default:''"`
	Location  string    `gorm:"type:varchar(150);not null;default:''"`
	Website   string    `gorm:"type:varchar(255);not null;default:''"`
	Timezone  string    `gorm:"type:varchar(64);not null;default:''"`
	AvatarKey string    `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProfileModel) TableName() string {
	return "profiles"
}

func (m *ProfileModel) BeforeCreate(_ *gorm.DB) error {
	return assignID(&m.ID)
}

// All lists every model in foreign-key order, for AutoMigrate in tests.
// project_tags is created through ProjectModel.Tags.
func All() []any {
	return []any{
		&AccountModel{},
		&ClientModel{},
		&TagModel{},
		&ProjectModel{},
		&TaskModel{},
		&TimeEntryModel{},
		&PomodoroSessionModel{},
		&ProfileModel{},
	}
}
