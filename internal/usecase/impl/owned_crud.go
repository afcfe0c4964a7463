package impl

import (
	"context"

	"tracker/internal/domain/entity"
	"tracker/internal/domain/repository"

	"github.com/google/uuid"
)

// ownedCrud implements the read and delete half of a workspace usecase over one owned repository.
// Writes differ per resource and are implemented by the embedding service.
type ownedCrud[T any] struct {
	subject string
	repo    repository.OwnedRepository[T]
}

// List never fails for anonymous callers; they see an empty list.
func (crud ownedCrud[T]) List(ctx context.Context, caller entity.Caller) ([]*T, error) {
	records, err := crud.repo.List(ctx, caller)
	if err != nil {
		return nil, translateRepoError(err, "list "+crud.subject)
	}

	return records, nil
}

func (crud ownedCrud[T]) Get(ctx context.Context, caller entity.Caller, id uuid.UUID) (*T, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	record, err := crud.repo.Get(ctx, caller, id)
	if err != nil {
		return nil, translateRepoError(err, crud.subject)
	}

	return record, nil
}

func (crud ownedCrud[T]) Delete(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}

	return translateRepoError(crud.repo.Delete(ctx, caller, id), crud.subject)
}

func (crud ownedCrud[T]) create(ctx context.Context, caller entity.Caller, record *T) (*T, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := crud.repo.Create(ctx, caller, record); err != nil {
		return nil, translateRepoError(err, "create "+crud.subject)
	}

	return record, nil
}

func (crud ownedCrud[T]) update(ctx context.Context, caller entity.Caller, id uuid.UUID, mutate func(*T) error) (*T, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	record, err := crud.repo.Update(ctx, caller, id, mutate)
	if err != nil {
		return nil, translateRepoError(err, crud.subject)
	}

	return record, nil
}
