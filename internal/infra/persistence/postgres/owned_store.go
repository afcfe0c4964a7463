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

const defaultListOrder = "created_at DESC, id DESC"

// ownedStore is the caller-scoped repository core shared by every owned table.
// Every query it issues carries owner_id = caller; an anonymous caller never reaches the database.
type ownedStore[E any, M any, PM interface {
	*M
	model.OwnedRow
}] struct {
	db         *gorm.DB
	name       string // For error messages, e.g. "project".
	toDomain   func(*M) *E
	fromDomain func(*E) *M
	preloads   []string
	conflict   *domainerrors.BaseError // Returned on unique violations.
}

// bind returns a copy of the store running on db, typically a transaction.
func (s *ownedStore[E, M, PM]) bind(db *gorm.DB) *ownedStore[E, M, PM] {
	bound := *s
	bound.db = db

	return &bound
}

func (s *ownedStore[E, M, PM]) withPreloads(db *gorm.DB) *gorm.DB {
	for _, preload := range s.preloads {
		db = db.Preload(preload)
	}

	return db
}

func (s *ownedStore[E, M, PM]) List(ctx context.Context, caller entity.Caller) ([]*E, error) {
	return s.list(ctx, caller, nil)
}

func (s *ownedStore[E, M, PM]) list(ctx context.Context, caller entity.Caller, scope func(*gorm.DB) *gorm.DB) ([]*E, error) {
	if !caller.Authenticated() {
		return []*E{}, nil
	}

	query := s.withPreloads(s.db.WithContext(ctx)).Where("owner_id = ?", caller.AccountID)
	if scope != nil {
		query = scope(query)
	}

	var rows []M
	if err := query.Order(defaultListOrder).Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list "+s.name)
	}

	records := make([]*E, 0, len(rows))
	for i := range rows {
		records = append(records, s.toDomain(&rows[i]))
	}

	return records, nil
}

func (s *ownedStore[E, M, PM]) Get(ctx context.Context, caller entity.Caller, id uuid.UUID) (*E, error) {
	row, err := s.find(s.withPreloads(s.db.WithContext(ctx)), caller, id)
	if err != nil {
		return nil, err
	}

	return s.toDomain(row), nil
}

// find loads one owned row. Rows of other owners are indistinguishable from missing rows.
func (s *ownedStore[E, M, PM]) find(db *gorm.DB, caller entity.Caller, id uuid.UUID) (*M, error) {
	if !caller.Authenticated() {
		return nil, repository.ErrNotFound
	}

	row := new(M)
	err := db.Where("id = ? AND owner_id = ?", id, caller.AccountID).Take(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find "+s.name)
	}

	return row, nil
}

func (s *ownedStore[E, M, PM]) Create(ctx context.Context, caller entity.Caller, record *E) error {
	if !caller.Authenticated() {
		return domainerrors.ErrUnauthenticated
	}

	row := s.fromDomain(record)
	PM(row).SetOwnerID(caller.AccountID)

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return s.translateWriteError(err, "create")
	}

	*record = *s.toDomain(row)

	return nil
}

func (s *ownedStore[E, M, PM]) Update(ctx context.Context, caller entity.Caller, id uuid.UUID, mutate func(*E) error) (*E, error) {
	if !caller.Authenticated() {
		return nil, repository.ErrNotFound
	}

	var saved *M
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.find(forUpdate(tx), caller, id)
		if err != nil {
			return err
		}

		record := s.toDomain(row)
		if err := mutate(record); err != nil {
			return err
		}

		next := s.fromDomain(record)
		if PM(next).GetID() != id {
			return errors.Errorf("%s id changed during update", s.name)
		}
		PM(next).SetOwnerID(caller.AccountID)

		if err := tx.Omit(clause.Associations).Save(next).Error; err != nil {
			return s.translateWriteError(err, "update")
		}
		saved = next

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toDomain(saved), nil
}

func (s *ownedStore[E, M, PM]) Delete(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	if !caller.Authenticated() {
		return repository.ErrNotFound
	}

	result := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, caller.AccountID).Delete(PM(new(M)))
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete "+s.name)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (s *ownedStore[E, M, PM]) DeleteAllOwnedBy(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(PM(new(M))).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete "+s.name+" records of owner")
	}

	return nil
}

func (s *ownedStore[E, M, PM]) translateWriteError(err error, op string) error {
	switch {
	case isUniqueConstraintViolation(err) && s.conflict != nil:
		return s.conflict.WrapMessage(s.name + " " + op)
	case isUniqueConstraintViolation(err):
		return domainerrors.ErrConflict.WrapMessage(s.name + " " + op)
	case isForeignKeyConstraintViolation(err):
		return errors.Wrap(repository.ErrNotFound, s.name+" references a missing record")
	case isCheckConstraintViolation(err), isNotNullConstraintViolation(err):
		return domainerrors.ErrValidationFailed.WithDetails(s.name + " violates a column constraint")
	default:
		return domainerrors.NewDatabaseExecuteError(err, "failed to "+op+" "+s.name)
	}
}

// forUpdate adds SELECT ... FOR UPDATE where the dialect has row locks. SQLite serializes writers instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector == nil || db.Dialector.Name() != "postgres" {
		return db
	}

	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// applyCreatedRange narrows a query to created_at bounds.
func applyCreatedRange(db *gorm.DB, created repository.CreatedRange) *gorm.DB {
	if created.From != nil {
		db = db.Where("created_at >= ?", *created.From)
	}
	if created.To != nil {
		db = db.Where("created_at <= ?", *created.To)
	}

	return db
}
