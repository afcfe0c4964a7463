package postgres

import (
	"context"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/errors"
	"tracker/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// GetOrCreate inserts an empty profile when the caller has none. owner_id is unique, so racing first reads converge.
func (repo *profileRepository) GetOrCreate(ctx context.Context, caller entity.Caller) (*entity.Profile, error) {
	profileM, err := repo.ensure(repo.db.WithContext(ctx), caller)
	if err != nil {
		return nil, err
	}

	return toProfileDomain(profileM), nil
}

func (repo *profileRepository) Update(ctx context.Context, caller entity.Caller, mutate func(*entity.Profile) error) (*entity.Profile, error) {
	var saved *model.ProfileModel
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.ensure(tx, caller); err != nil {
			return err
		}

		var profileM model.ProfileModel
		if err := forUpdate(tx).Where("owner_id = ?", caller.AccountID).Take(&profileM).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to lock profile")
		}

		profile := toProfileDomain(&profileM)
		if err := mutate(profile); err != nil {
			return err
		}

		next := fromProfileDomain(profile)
		next.ID = profileM.ID
		next.OwnerID = caller.AccountID
		if err := tx.Save(next).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to update profile")
		}
		saved = next

		return nil
	})
	if err != nil {
		return nil, err
	}

	return toProfileDomain(saved), nil
}

func (repo *profileRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&model.ProfileModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete profile")
	}

	return nil
}

func (repo *profileRepository) ensure(db *gorm.DB, caller entity.Caller) (*model.ProfileModel, error) {
	if !caller.Authenticated() {
		return nil, domainerrors.ErrUnauthenticated
	}

	candidate := &model.ProfileModel{OwnerID: caller.AccountID}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoNothing: true,
	}).Create(candidate).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return nil, errors.Wrap(repository.ErrAccountNotFound, "profile owner")
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to create profile")
	}

	var profileM model.ProfileModel
	if err := db.Where("owner_id = ?", caller.AccountID).Take(&profileM).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to load profile")
	}

	return &profileM, nil
}

func toProfileDomain(m *model.ProfileModel) *entity.Profile {
	return &entity.Profile{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Phone:     m.Phone,
		JobTitle:  m.JobTitle,
		Company:   m.Company,
		Bio:       m.Bio,
		Location:  m.Location,
		Website:   m.Website,
		Timezone:  m.Timezone,
		AvatarKey: m.AvatarKey,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromProfileDomain(p *entity.Profile) *model.ProfileModel {
	return &model.ProfileModel{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Phone:     p.Phone,
		JobTitle:  p.JobTitle,
		Company:   p.Company,
		Bio:       p.Bio,
		Location:  p.Location,
		Website:   p.Website,
		Timezone:  p.Timezone,
		AvatarKey: p.AvatarKey,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
