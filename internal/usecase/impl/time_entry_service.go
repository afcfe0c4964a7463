package impl

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"time"

	deliverycontext "tracker/internal/delivery/context"
	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/domain/service"
	"tracker/internal/errors"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

type timeEntryService struct {
	ownedCrud[entity.TimeEntry]

	entryRepo   repository.TimeEntryRepository
	projectRepo repository.ProjectRepository
	exporter    service.TimesheetExporter
	logger      *slog.Logger
}

// TimeEntryServiceParams holds dependencies for TimeEntryService, injected by Fx.
type TimeEntryServiceParams struct {
	fx.In

	EntryRepo   repository.TimeEntryRepository
	ProjectRepo repository.ProjectRepository
	Exporter    service.TimesheetExporter
	Logger      *slog.Logger
}

// NewTimeEntryService is the constructor for timeEntryService.
func NewTimeEntryService(params TimeEntryServiceParams) usecase.TimeEntryUsecase {
	return &timeEntryService{
		ownedCrud:   ownedCrud[entity.TimeEntry]{subject: "time entry", repo: params.EntryRepo},
		entryRepo:   params.EntryRepo,
		projectRepo: params.ProjectRepo,
		exporter:    params.Exporter,
		logger:      params.Logger,
	}
}

func (srv *timeEntryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *timeEntryService) Create(ctx context.Context, caller entity.Caller, input *usecase.TimeEntryInput) (*entity.TimeEntry, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if input.ProjectID == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("project_id is required")
	}
	if input.StartTime == nil || input.EndTime == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("start_time and end_time are required")
	}
	if input.Date == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("date is required")
	}
	if err := requireProject(ctx, srv.projectRepo, caller, *input.ProjectID); err != nil {
		return nil, err
	}

	entry := &entity.TimeEntry{ProjectID: *input.ProjectID, Type: entity.TimeEntryTypeRegular}
	if err := applyTimeEntryFields(entry, input); err != nil {
		return nil, err
	}
	if input.Duration == nil {
		entry.Duration = clockMinutes(entry.StartTime, entry.EndTime)
	}

	return srv.create(ctx, caller, entry)
}

func (srv *timeEntryService) Update(ctx context.Context, caller entity.Caller, id uuid.UUID, input *usecase.TimeEntryInput) (*entity.TimeEntry, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if input.ProjectID != nil {
		if err := requireProject(ctx, srv.projectRepo, caller, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	return srv.update(ctx, caller, id, func(entry *entity.TimeEntry) error {
		setIfPresent(&entry.ProjectID, input.ProjectID)
		if err := applyTimeEntryFields(entry, input); err != nil {
			return err
		}
		if input.Duration == nil && (input.StartTime != nil || input.EndTime != nil) {
			entry.Duration = clockMinutes(entry.StartTime, entry.EndTime)
		}

		return nil
	})
}

func (srv *timeEntryService) ListByType(ctx context.Context, caller entity.Caller, entryType entity.TimeEntryType) ([]*entity.TimeEntry, error) {
	if entryType == "" {
		return srv.List(ctx, caller)
	}
	if !entryType.Valid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("type must be regular or pomodoro")
	}

	entries, err := srv.entryRepo.ListByType(ctx, caller, entryType)
	if err != nil {
		return nil, translateRepoError(err, "list time entries")
	}

	return entries, nil
}

// Export writes the caller's entries with project names resolved.
func (srv *timeEntryService) Export(ctx context.Context, caller entity.Caller, entryType entity.TimeEntryType, w io.Writer) (string, error) {
	if err := requireCaller(caller); err != nil {
		return "", err
	}

	entries, err := srv.ListByType(ctx, caller, entryType)
	if err != nil {
		return "", err
	}

	projects, err := srv.projectRepo.List(ctx, caller)
	if err != nil {
		return "", translateRepoError(err, "list projects")
	}
	names := make(map[uuid.UUID]string, len(projects))
	for _, project := range projects {
		names[project.ID] = project.Name
	}

	if err := srv.exporter.Export(w, entries, names); err != nil {
		return "", errors.Wrap(err, "failed to export timesheet")
	}
	srv.log(ctx).Info("Timesheet exported",
		slog.String("account_id", caller.AccountID.String()),
		slog.Int("entries", len(entries)),
	)

	return srv.exporter.ContentType(), nil
}

func applyTimeEntryFields(entry *entity.TimeEntry, input *usecase.TimeEntryInput) error {
	if input.StartTime != nil {
		if !clockPattern.MatchString(*input.StartTime) {
			return domainerrors.ErrValidationFailed.WithDetails("start_time must be HH:MM or HH:MM:SS")
		}
		entry.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		if !clockPattern.MatchString(*input.EndTime) {
			return domainerrors.ErrValidationFailed.WithDetails("end_time must be HH:MM or HH:MM:SS")
		}
		entry.EndTime = *input.EndTime
	}
	if input.Duration != nil {
		if *input.Duration < 0 {
			return domainerrors.ErrValidationFailed.WithDetails("duration must not be negative")
		}
		entry.Duration = *input.Duration
	}
	if input.Date != nil {
		entry.Date = truncateDay(*input.Date)
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return domainerrors.ErrValidationFailed.WithDetails("type must be regular or pomodoro")
		}
		entry.Type = *input.Type
	}
	setIfPresent(&entry.Description, input.Description)
	setIfPresent(&entry.Billable, input.Billable)

	return nil
}

// clockMinutes is end minus start; an end before start wraps past midnight.
func clockMinutes(start, end string) int {
	startAt, errStart := parseClock(start)
	endAt, errEnd := parseClock(end)
	if errStart != nil || errEnd != nil {
		return 0
	}

	diff := endAt.Sub(startAt)
	if diff < 0 {
		diff += 24 * time.Hour
	}

	return int(diff / time.Minute)
}

func parseClock(value string) (time.Time, error) {
	if len(value) == len("15:04") {
		return time.Parse("15:04", value)
	}

	return time.Parse("15:04:05", value)
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
