package postgres

import (
	"context"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type clientRepository struct {
	*ownedStore[entity.Client, model.ClientModel, *model.ClientModel]
}

// NewClientRepository is the constructor for clientRepository.
func NewClientRepository(db *gorm.DB) repository.ClientRepository {
	return &clientRepository{ownedStore: &ownedStore[entity.Client, model.ClientModel, *model.ClientModel]{
		db:         db,
		name:       "client",
		toDomain:   toClientDomain,
		fromDomain: fromClientDomain,
		conflict:   domainerrors.ErrNameTaken,
	}}
}

// FindOrCreateByName inserts with ON CONFLICT (owner_id, name) DO NOTHING, then reads the surviving row.
// Concurrent writers of the same name converge on one client.
func (repo *clientRepository) FindOrCreateByName(ctx context.Context, caller entity.Caller, name string) (*entity.Client, error) {
	if !caller.Authenticated() {
		return nil, domainerrors.ErrUnauthenticated
	}

	db := repo.db.WithContext(ctx)
	candidate := &model.ClientModel{OwnerID: caller.AccountID, Name: name, Currency: entity.DefaultCurrency}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(candidate).Error
	if err != nil {
		return nil, repo.translateWriteError(err, "create")
	}

	var clientM model.ClientModel
	if err := db.Where("owner_id = ? AND name = ?", caller.AccountID, name).Take(&clientM).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to load client by name")
	}

	return toClientDomain(&clientM), nil
}

func toClientDomain(m *model.ClientModel) *entity.Client {
	return &entity.Client{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Name:      m.Name,
		Email:     m.Email,
		Address:   m.Address,
		Note:      m.Note,
		Currency:  m.Currency,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromClientDomain(c *entity.Client) *model.ClientModel {
	currency := c.Currency
	if currency == "" {
		currency = entity.DefaultCurrency
	}

	return &model.ClientModel{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Email:     c.Email,
		Address:   c.Address,
		Note:      c.Note,
		Currency:  currency,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
