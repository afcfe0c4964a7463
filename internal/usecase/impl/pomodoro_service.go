package impl

import (
	"context"
	"time"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type pomodoroService struct {
	ownedCrud[entity.PomodoroSession]
}

// PomodoroServiceParams holds dependencies for PomodoroService, injected by Fx.
type PomodoroServiceParams struct {
	fx.In

	SessionRepo repository.PomodoroSessionRepository
}

// NewPomodoroService is the constructor for pomodoroService.
func NewPomodoroService(params PomodoroServiceParams) usecase.PomodoroUsecase {
	return &pomodoroService{ownedCrud: ownedCrud[entity.PomodoroSession]{subject: "pomodoro session", repo: params.SessionRepo}}
}

func (srv *pomodoroService) Create(ctx context.Context, caller entity.Caller, input *usecase.PomodoroInput) (*entity.PomodoroSession, error) {
	if input.StartTime == nil || input.EndTime == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("start_time and end_time are required")
	}

	session := &entity.PomodoroSession{Cycles: 1}
	if err := applyPomodoroFields(session, input); err != nil {
		return nil, err
	}
	if input.Duration == nil {
		session.Duration = int(session.EndTime.Sub(session.StartTime) / time.Minute)
	}

	return srv.create(ctx, caller, session)
}

func (srv *pomodoroService) Update(ctx context.Context, caller entity.Caller, id uuid.UUID, input *usecase.PomodoroInput) (*entity.PomodoroSession, error) {
	return srv.update(ctx, caller, id, func(session *entity.PomodoroSession) error {
		return applyPomodoroFields(session, input)
	})
}

func applyPomodoroFields(session *entity.PomodoroSession, input *usecase.PomodoroInput) error {
	setIfPresent(&session.StartTime, input.StartTime)
	setIfPresent(&session.EndTime, input.EndTime)
	if session.EndTime.Before(session.StartTime) {
		return domainerrors.ErrValidationFailed.WithDetails("end_time must not be before start_time")
	}

	if input.Duration != nil && *input.Duration < 0 {
		return domainerrors.ErrValidationFailed.WithDetails("duration must not be negative")
	}
	if input.BreakDuration != nil && *input.BreakDuration < 0 {
		return domainerrors.ErrValidationFailed.WithDetails("break_duration must not be negative")
	}
	if input.Cycles != nil && *input.Cycles < 1 {
		return domainerrors.ErrValidationFailed.WithDetails("cycles must be at least 1")
	}
	setIfPresent(&session.Duration, input.Duration)
	setIfPresent(&session.BreakDuration, input.BreakDuration)
	setIfPresent(&session.Cycles, input.Cycles)
	setIfPresent(&session.Notes, input.Notes)

	return nil
}
