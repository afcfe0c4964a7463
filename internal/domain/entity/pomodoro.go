package entity

import (
	"time"

	"github.com/google/uuid"
)

// PomodoroSession is one focus session with its break and cycle count.
type PomodoroSession struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	StartTime     time.Time
	EndTime       time.Time
	Duration      int // Minutes of focus.
	BreakDuration int // Minutes of break.
	Cycles        int
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
