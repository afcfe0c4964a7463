// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
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
	"gorm.io/plugin/dbresolver"
)

// accountRepository implements repository.AccountRepository using GORM.
// Lookups used by authentication read from the primary, since a replica may lag behind a fresh registration.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) primary(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).Clauses(dbresolver.Write)
}

// FindByID retrieves a single account by its unique ID.
func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return repo.take(repo.primary(ctx).Where("id = ?", id), "id")
}

// FindByEmail retrieves a single account by its normalized email.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return repo.take(repo.primary(ctx).Where("email = ?", email), "email")
}

// FindByEmailForUpdate locks the matching row until the surrounding transaction ends.
func (repo *accountRepository) FindByEmailForUpdate(ctx context.Context, email string) (*entity.Account, error) {
	return repo.take(forUpdate(repo.primary(ctx)).Where("email = ?", email), "email")
}

func (repo *accountRepository) FindByFederatedID(ctx context.Context, federatedID string) (*entity.Account, error) {
	if federatedID == "" {
		return nil, repository.ErrAccountNotFound
	}

	return repo.take(repo.primary(ctx).Where("federated_id = ?", federatedID), "federated id")
}

func (repo *accountRepository) take(query *gorm.DB, by string) (*entity.Account, error) {
	var accountM model.AccountModel
	if err := query.Take(&accountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account by "+by)
	}

	return toAccountDomain(&accountM), nil
}

// Create persists a new account, filling in the generated ID and timestamps.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrEmailTaken.WrapMessage("account already registered")
		}
		if isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WithDetails("missing or invalid account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	*account = *toAccountDomain(accountM)

	return nil
}

// Update saves every mutable column of the account.
func (repo *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Save(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("account email or federated id already in use")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update account")
	}

	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

func (repo *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AccountModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete account")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

func toAccountDomain(m *model.AccountModel) *entity.Account {
	account := &entity.Account{
		ID:            m.ID,
		Email:         m.Email,
		Provider:      entity.Provider(m.Provider),
		EmailVerified: m.EmailVerified,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Picture:       m.Picture,
		Rate:          m.Rate,
		Cost:          m.Cost,
		WorkHours:     m.WorkHours,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.PasswordHash != nil {
		account.PasswordHash = *m.PasswordHash
	}
	if m.FederatedID != nil {
		account.FederatedID = *m.FederatedID
	}

	return account
}

func fromAccountDomain(a *entity.Account) *model.AccountModel {
	provider := a.Provider
	if provider == "" {
		provider = entity.ProviderLocal
	}

	return &model.AccountModel{
		ID:            a.ID,
		Email:         a.Email,
		PasswordHash:  nullableString(a.PasswordHash),
		FederatedID:   nullableString(a.FederatedID),
		Provider:      string(provider),
		EmailVerified: a.EmailVerified,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Picture:       a.Picture,
		Rate:          a.Rate,
		Cost:          a.Cost,
		WorkHours:     a.WorkHours,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
