package postgres

import (
	"context"
	"strings"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type projectRepository struct {
	*ownedStore[entity.Project, model.ProjectModel, *model.ProjectModel]
}

// NewProjectRepository is the constructor for projectRepository. Reads load the client and tags.
func NewProjectRepository(db *gorm.DB) repository.ProjectRepository {
	return &projectRepository{ownedStore: &ownedStore[entity.Project, model.ProjectModel, *model.ProjectModel]{
		db:         db,
		name:       "project",
		toDomain:   toProjectDomain,
		fromDomain: fromProjectDomain,
		preloads:   []string{"Client", "Tags"},
	}}
}

// Update saves the project columns and returns it with the client and tags reloaded.
func (repo *projectRepository) Update(ctx context.Context, caller entity.Caller, id uuid.UUID, mutate func(*entity.Project) error) (*entity.Project, error) {
	if _, err := repo.ownedStore.Update(ctx, caller, id, mutate); err != nil {
		return nil, err
	}

	return repo.Get(ctx, caller, id)
}

// Delete removes the project's tag links together with the project.
func (repo *projectRepository) Delete(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.find(forUpdate(tx), caller, id); err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectTagModel{}).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to unlink project tags")
		}

		return repo.bind(tx).Delete(ctx, caller, id)
	})
}

func (repo *projectRepository) ReplaceTags(ctx context.Context, caller entity.Caller, projectID uuid.UUID, tagIDs []uuid.UUID) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.find(forUpdate(tx), caller, projectID); err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectTagModel{}).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to clear project tags")
		}

		links := make([]model.ProjectTagModel, 0, len(tagIDs))
		seen := make(map[uuid.UUID]struct{}, len(tagIDs))
		for _, tagID := range tagIDs {
			if _, dup := seen[tagID]; dup {
				continue
			}
			seen[tagID] = struct{}{}
			links = append(links, model.ProjectTagModel{ProjectID: projectID, TagID: tagID})
		}
		if len(links) == 0 {
			return nil
		}

		if err := tx.Create(&links).Error; err != nil {
			return repo.translateWriteError(err, "tag")
		}

		return nil
	})
}

func (repo *projectRepository) CountCompleted(ctx context.Context, caller entity.Caller, created repository.CreatedRange) (int64, error) {
	if !caller.Authenticated() {
		return 0, nil
	}

	query := repo.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("owner_id = ? AND LOWER(status) = ?", caller.AccountID, strings.ToLower(entity.ProjectStatusCompleted))

	var count int64
	if err := applyCreatedRange(query, created).Count(&count).Error; err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count completed projects")
	}

	return count, nil
}

func (repo *projectRepository) DeleteTagLinksOwnedBy(ctx context.Context, ownerID uuid.UUID) error {
	db := repo.db.WithContext(ctx)
	owned := db.Model(&model.ProjectModel{}).Select("id").Where("owner_id = ?", ownerID)

	if err := db.Where("project_id IN (?)", owned).Delete(&model.ProjectTagModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete project tags of owner")
	}

	return nil
}

func toProjectDomain(m *model.ProjectModel) *entity.Project {
	project := &entity.Project{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Name:      m.Name,
		ClientID:  m.ClientID,
		Status:    m.Status,
		Progress:  m.Progress,
		Tags:      toTagDomains(m.Tags),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Client != nil {
		project.Client = toClientDomain(m.Client)
	}

	return project
}

// fromProjectDomain maps columns only; tags are written through ReplaceTags.
func fromProjectDomain(p *entity.Project) *model.ProjectModel {
	status := p.Status
	if status == "" {
		status = entity.ProjectStatusPlanning
	}

	return &model.ProjectModel{
		Owned:     model.Owned{ID: p.ID, OwnerID: p.OwnerID},
		Name:      p.Name,
		ClientID:  p.ClientID,
		Status:    status,
		Progress:  p.Progress,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
