package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountModel mirrors the 'accounts' table.
// PasswordHash and FederatedID are NULL rather than empty so the unique index on federated_id admits many unlinked rows.
type AccountModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex:idx_accounts_email;not null"`
	PasswordHash  *string   `gorm:"type:varchar(255)"`
	FederatedID   *string   `gorm:"type:varchar(255);uniqueIndex:idx_accounts_federated_id"`
	Provider      string    `gorm:"type:varchar(20);not null;default:local"`
	EmailVerified bool      `gorm:"not null;default:false"`
	FirstName     string    `gorm:"type:varchar(150);not null;default:''"`
	LastName      string    `gorm:"type:varchar(150);not null;default:''"`
	Picture       string    `gorm:"type:text;not null;default:''"`
	Rate          *float64  `gorm:"type:numeric(10,2)"`
	Cost          *float64  `gorm:"type:numeric(10,2)"`
	WorkHours     *string   `gorm:"type:varchar(100)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

func (m *AccountModel) BeforeCreate(_ *gorm.DB) error {
	return assignID(&m.ID)
}
