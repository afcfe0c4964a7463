package entity

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntryType distinguishes manual entries from pomodoro-generated ones.
type TimeEntryType string

const (
	TimeEntryTypeRegular  TimeEntryType = "regular"
	TimeEntryTypePomodoro TimeEntryType = "pomodoro"
)

// Valid reports whether t is a known entry type.
func (t TimeEntryType) Valid() bool {
	return t == TimeEntryTypeRegular || t == TimeEntryTypePomodoro
}

// DateLayout is the wire format of TimeEntry.Date.
const DateLayout = "2006-01-02"

// TimeEntry records time spent on a project on one day.
type TimeEntry struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	ProjectID   uuid.UUID
	Description string
	StartTime   string // Clock time, HH:MM or HH:MM:SS.
	EndTime     string
	Duration    int       // Minutes.
	Date        time.Time // Calendar day, time of day is zero.
	Billable    bool
	Type        TimeEntryType
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
