package postgres

import (
	"context"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tagRepository struct {
	*ownedStore[entity.Tag, model.TagModel, *model.TagModel]
}

// NewTagRepository is the constructor for tagRepository.
func NewTagRepository(db *gorm.DB) repository.TagRepository {
	return &tagRepository{ownedStore: &ownedStore[entity.Tag, model.TagModel, *model.TagModel]{
		db:         db,
		name:       "tag",
		toDomain:   toTagDomain,
		fromDomain: fromTagDomain,
		conflict:   domainerrors.ErrNameTaken,
	}}
}

func (repo *tagRepository) FindByIDs(ctx context.Context, caller entity.Caller, ids []uuid.UUID) ([]entity.Tag, error) {
	if !caller.Authenticated() || len(ids) == 0 {
		return []entity.Tag{}, nil
	}

	var rows []model.TagModel
	err := repo.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", caller.AccountID, ids).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find tags")
	}

	return toTagDomains(rows), nil
}

func toTagDomains(rows []model.TagModel) []entity.Tag {
	tags := make([]entity.Tag, 0, len(rows))
	for i := range rows {
		tags = append(tags, *toTagDomain(&rows[i]))
	}

	return tags
}

func toTagDomain(m *model.TagModel) *entity.Tag {
	return &entity.Tag{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Color:       m.Color,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromTagDomain(t *entity.Tag) *model.TagModel {
	return &model.TagModel{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Name:        t.Name,
		Color:       t.Color,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
