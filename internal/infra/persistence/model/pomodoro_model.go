package model

import "time"

// PomodoroSessionModel mirrors the 'pomodoro_sessions' table.
type PomodoroSessionModel struct {
	Owned
	StartTime     time.Time `gorm:"not null"`
	EndTime       time.Time `gorm:"not null"`
	Duration      int       `gorm:"not null"`
	BreakDuration int       `gorm:"not null;default:0"`
	Cycles        int       `gorm:"not null;default:1"`
	Notes         string    `gorm:"type:text;not null;default:''"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PomodoroSessionModel) TableName() string {
	return "pomodoro_sessions"
}
