package postgres

import (
	"tracker/internal/domain/entity"
	"tracker/internal/domain/repository"
	"tracker/internal/infra/persistence/model"

	"gorm.io/gorm"
)

type pomodoroSessionRepository struct {
	*ownedStore[entity.PomodoroSession, model.PomodoroSessionModel, *model.PomodoroSessionModel]
}

// NewPomodoroSessionRepository is the constructor for pomodoroSessionRepository.
func NewPomodoroSessionRepository(db *gorm.DB) repository.PomodoroSessionRepository {
	return &pomodoroSessionRepository{ownedStore: &ownedStore[entity.PomodoroSession, model.PomodoroSessionModel, *model.PomodoroSessionModel]{
		db:         db,
		name:       "pomodoro session",
		toDomain:   toPomodoroDomain,
		fromDomain: fromPomodoroDomain,
	}}
}

func toPomodoroDomain(m *model.PomodoroSessionModel) *entity.PomodoroSession {
	return &entity.PomodoroSession{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		Duration:      m.Duration,
		BreakDuration: m.BreakDuration,
		Cycles:        m.Cycles,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func fromPomodoroDomain(s *entity.PomodoroSession) *model.PomodoroSessionModel {
	cycles := s.Cycles
	if cycles <= 0 {
		cycles = 1
	}

	return &model.PomodoroSessionModel{
		Owned:         model.Owned{ID: s.ID, OwnerID: s.OwnerID},
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Duration:      s.Duration,
		BreakDuration: s.BreakDuration,
		Cycles:        cycles,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
