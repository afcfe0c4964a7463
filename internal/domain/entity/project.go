package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ProjectStatusPlanning  = "Planning"
	ProjectStatusCompleted = "Completed"
)

// Project groups tasks and time entries, optionally for a client.
type Project struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	ClientID  *uuid.UUID // nil when the project has no client.
	Client    *Client    // Loaded alongside reads; nil when ClientID is nil.
	Status    string     // Free text, "Planning" by default.
	Progress  int        // Percentage, 0-100.
	Tags      []Tag
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientName returns the linked client's name or "".
func (p *Project) ClientName() string {
	if p.Client == nil {
		return ""
	}

	return p.Client.Name
}

// IsCompleted compares the status case-insensitively.
func (p *Project) IsCompleted() bool {
	return strings.EqualFold(p.Status, ProjectStatusCompleted)
}
