package postgres

import (
	"context"

	"tracker/internal/domain/entity"
	"tracker/internal/domain/repository"
	"tracker/internal/infra/persistence/model"

	"gorm.io/gorm"
)

type timeEntryRepository struct {
	*ownedStore[entity.TimeEntry, model.TimeEntryModel, *model.TimeEntryModel]
}

// NewTimeEntryRepository is the constructor for timeEntryRepository.
func NewTimeEntryRepository(db *gorm.DB) repository.TimeEntryRepository {
	return &timeEntryRepository{ownedStore: &ownedStore[entity.TimeEntry, model.TimeEntryModel, *model.TimeEntryModel]{
		db:         db,
		name:       "time entry",
		toDomain:   toTimeEntryDomain,
		fromDomain: fromTimeEntryDomain,
	}}
}

func (repo *timeEntryRepository) ListByType(ctx context.Context, caller entity.Caller, entryType entity.TimeEntryType) ([]*entity.TimeEntry, error) {
	return repo.list(ctx, caller, func(db *gorm.DB) *gorm.DB {
		return db.Where("type = ?", string(entryType))
	})
}

func toTimeEntryDomain(m *model.TimeEntryModel) *entity.TimeEntry {
	return &entity.TimeEntry{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		ProjectID:   m.ProjectID,
		Description: m.Description,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Duration:    m.Duration,
		Date:        m.Date,
		Billable:    m.Billable,
		Type:        entity.TimeEntryType(m.Type),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromTimeEntryDomain(e *entity.TimeEntry) *model.TimeEntryModel {
	entryType := e.Type
	if entryType == "" {
		entryType = entity.TimeEntryTypeRegular
	}

	return &model.TimeEntryModel{
		Owned:       model.Owned{ID: e.ID, OwnerID: e.OwnerID},
		ProjectID:   e.ProjectID,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Duration:    e.Duration,
		Date:        e.Date,
		Billable:    e.Billable,
		Type:        string(entryType),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
