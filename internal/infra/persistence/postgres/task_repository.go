package postgres

import (
	"context"
	"strings"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/infra/persistence/model"

	"gorm.io/gorm"
)

type taskRepository struct {
	*ownedStore[entity.Task, model.TaskModel, *model.TaskModel]
}

// NewTaskRepository is the constructor for taskRepository.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{ownedStore: &ownedStore[entity.Task, model.TaskModel, *model.TaskModel]{
		db:         db,
		name:       "task",
		toDomain:   toTaskDomain,
		fromDomain: fromTaskDomain,
	}}
}

func (repo *taskRepository) CountCompleted(ctx context.Context, caller entity.Caller, created repository.CreatedRange) (int64, error) {
	if !caller.Authenticated() {
		return 0, nil
	}

	query := repo.db.WithContext(ctx).Model(&model.TaskModel{}).
		Where("owner_id = ? AND LOWER(status) = ?", caller.AccountID, strings.ToLower(string(entity.TaskStatusCompleted)))

	var count int64
	if err := applyCreatedRange(query, created).Count(&count).Error; err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count completed tasks")
	}

	return count, nil
}

func toTaskDomain(m *model.TaskModel) *entity.Task {
	return &entity.Task{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		ProjectID:  m.ProjectID,
		Title:      m.Title,
		Status:     entity.TaskStatus(m.Status),
		AssignedTo: m.AssignedTo,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func fromTaskDomain(t *entity.Task) *model.TaskModel {
	status := t.Status
	if status == "" {
		status = entity.TaskStatusPending
	}

	return &model.TaskModel{
		Owned:      model.Owned{ID: t.ID, OwnerID: t.OwnerID},
		ProjectID:  t.ProjectID,
		Title:      t.Title,
		Status:     string(status),
		AssignedTo: t.AssignedTo,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
