// Package model holds the GORM persistence structs. They mirror the goose schema in ../migrations.
package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedRow is implemented by every table carrying owner_id.
type OwnedRow interface {
	GetID() uuid.UUID
	GetOwnerID() uuid.UUID
	SetOwnerID(ownerID uuid.UUID)
}

// Owned is embedded by per-account rows. The owner_id foreign key (ON DELETE CASCADE) lives in the migrations.
type Owned struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (o *Owned) GetID() uuid.UUID { return o.ID }

func (o *Owned) GetOwnerID() uuid.UUID { return o.OwnerID }

func (o *Owned) SetOwnerID(ownerID uuid.UUID) { o.OwnerID = ownerID }

// BeforeCreate assigns a time-ordered UUID when the caller left the id empty.
func (o *Owned) BeforeCreate(_ *gorm.DB) error {
	return assignID(&o.ID)
}

func assignID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}

	generated, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = generated

	return nil
}
