package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency is used when a client is created without one.
const DefaultCurrency = "USD"

// Client is a billable customer, unique by name within one owner.
type Client struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Email     string
	Address   string
	Note      string
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
