package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientModel mirrors the 'clients' table. (owner_id, name) is unique.
type ClientModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_clients_owner_name,priority:1"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_clients_owner_name,priority:2"`
	Email     string    `gorm:"type:varchar(255);not null;default:''"`
	Address   string    `gorm:"type:text;not null;default:''"`
	Note      string    `gorm:"type:text;not null;default:''"`
	Currency  string    `gorm:"type:varchar(10);not null;default:USD"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ClientModel) TableName() string {
	return "clients"
}

func (m *ClientModel) GetID() uuid.UUID { return m.ID }

func (m *ClientModel) GetOwnerID() uuid.UUID { return m.OwnerID }

func (m *ClientModel) SetOwnerID(ownerID uuid.UUID) { m.OwnerID = ownerID }

func (m *ClientModel) BeforeCreate(_ *gorm.DB) error {
	return assignID(&m.ID)
}
