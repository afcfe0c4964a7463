package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tag labels projects. Names are unique within one owner.
type Tag struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Color       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
