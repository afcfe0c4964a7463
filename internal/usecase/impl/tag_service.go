package impl

import (
	"context"

	"tracker/internal/domain/entity"
	"tracker/internal/domain/repository"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type tagService struct {
	ownedCrud[entity.Tag]
}

// TagServiceParams holds dependencies for TagService, injected by Fx.
type TagServiceParams struct {
	fx.In

	TagRepo repository.TagRepository
}

// NewTagService is the constructor for tagService.
func NewTagService(params TagServiceParams) usecase.TagUsecase {
	return &tagService{ownedCrud: ownedCrud[entity.Tag]{subject: "tag", repo: params.TagRepo}}
}

func (srv *tagService) Create(ctx context.Context, caller entity.Caller, input *usecase.TagInput) (*entity.Tag, error) {
	name, err := requiredName(input.Name, "name")
	if err != nil {
		return nil, err
	}

	tag := &entity.Tag{Name: name}
	setIfPresent(&tag.Color, input.Color)
	setIfPresent(&tag.Description, input.Description)

	return srv.create(ctx, caller, tag)
}

func (srv *tagService) Update(ctx context.Context, caller entity.Caller, id uuid.UUID, input *usecase.TagInput) (*entity.Tag, error) {
	return srv.update(ctx, caller, id, func(tag *entity.Tag) error {
		name, err := updatedName(tag.Name, input.Name, "name")
		if err != nil {
			return err
		}
		tag.Name = name
		setIfPresent(&tag.Color, input.Color)
		setIfPresent(&tag.Description, input.Description)

		return nil
	})
}
