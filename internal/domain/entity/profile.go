package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds optional personal details, at most one per account.
type Profile struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Phone     string
	JobTitle  string
	Company   string
	Bio       string
	Location  string
	Website   string
	Timezone  string
	AvatarKey string // Blob key of the uploaded avatar, empty when none.
	CreatedAt time.Time
	UpdatedAt time.Time
}
