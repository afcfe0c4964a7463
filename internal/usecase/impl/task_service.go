package impl

import (
	"context"
	"strings"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type taskService struct {
	ownedCrud[entity.Task]

	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// TaskServiceParams holds dependencies for TaskService, injected by Fx.
type TaskServiceParams struct {
	fx.In

	TaskRepo    repository.TaskRepository
	ProjectRepo repository.ProjectRepository
}

// NewTaskService is the constructor for taskService.
func NewTaskService(params TaskServiceParams) usecase.TaskUsecase {
	return &taskService{
		ownedCrud:   ownedCrud[entity.Task]{subject: "task", repo: params.TaskRepo},
		taskRepo:    params.TaskRepo,
		projectRepo: params.ProjectRepo,
	}
}

func (srv *taskService) Create(ctx context.Context, caller entity.Caller, input *usecase.TaskInput) (*entity.Task, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if input.ProjectID == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("project_id is required")
	}
	title, err := requiredName(input.Title, "title")
	if err != nil {
		return nil, err
	}
	if err := requireProject(ctx, srv.projectRepo, caller, *input.ProjectID); err != nil {
		return nil, err
	}

	task := &entity.Task{ProjectID: *input.ProjectID, Title: title, Status: entity.TaskStatusPending}
	if err := applyTaskFields(task, input); err != nil {
		return nil, err
	}

	return srv.create(ctx, caller, task)
}

func (srv *taskService) Update(ctx context.Context, caller entity.Caller, id uuid.UUID, input *usecase.TaskInput) (*entity.Task, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if input.ProjectID != nil {
		if err := requireProject(ctx, srv.projectRepo, caller, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	return srv.update(ctx, caller, id, func(task *entity.Task) error {
		title, err := updatedName(task.Title, input.Title, "title")
		if err != nil {
			return err
		}
		task.Title = title
		setIfPresent(&task.ProjectID, input.ProjectID)

		return applyTaskFields(task, input)
	})
}

func (srv *taskService) CountCompleted(ctx context.Context, caller entity.Caller, between usecase.CreatedBetween) (int64, error) {
	if err := requireCaller(caller); err != nil {
		return 0, err
	}

	count, err := srv.taskRepo.CountCompleted(ctx, caller, toCreatedRange(between.Start, between.End))
	if err != nil {
		return 0, translateRepoError(err, "count completed tasks")
	}

	return count, nil
}

func applyTaskFields(task *entity.Task, input *usecase.TaskInput) error {
	if input.Status != nil {
		if !input.Status.Valid() {
			return domainerrors.ErrValidationFailed.WithDetails("status must be one of Pending, In Progress, Completed, On Hold")
		}
		task.Status = *input.Status
	}
	if input.AssignedTo != nil {
		assignee := strings.TrimSpace(*input.AssignedTo)
		task.AssignedTo = &assignee
		if assignee == "" {
			task.AssignedTo = nil
		}
	}

	return nil
}

// requireProject fails with NotFound unless the project is visible to the caller.
func requireProject(ctx context.Context, projects repository.ProjectRepository, caller entity.Caller, projectID uuid.UUID) error {
	if _, err := projects.Get(ctx, caller, projectID); err != nil {
		return translateRepoError(err, "project")
	}

	return nil
}
