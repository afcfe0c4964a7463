package impl

import (
	"context"
	"strings"

	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type projectService struct {
	ownedCrud[entity.Project]

	txManager   repository.TransactionManager
	projectRepo repository.ProjectRepository
}

// ProjectServiceParams holds dependencies for ProjectService, injected by Fx.
type ProjectServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	ProjectRepo repository.ProjectRepository
}

// NewProjectService is the constructor for projectService.
func NewProjectService(params ProjectServiceParams) usecase.ProjectUsecase {
	return &projectService{
		ownedCrud:   ownedCrud[entity.Project]{subject: "project", repo: params.ProjectRepo},
		txManager:   params.TxManager,
		projectRepo: params.ProjectRepo,
	}
}

// Create resolves client_name and tag_ids for the caller and writes the project in one transaction.
func (srv *projectService) Create(ctx context.Context, caller entity.Caller, input *usecase.ProjectInput) (*entity.Project, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	name, err := requiredName(input.Name, "name")
	if err != nil {
		return nil, err
	}
	if err := validateProgress(input.Progress); err != nil {
		return nil, err
	}

	project := &entity.Project{Name: name, Status: entity.ProjectStatusPlanning}
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		project.Status = strings.TrimSpace(*input.Status)
	}
	setIfPresent(&project.Progress, input.Progress)

	var created *entity.Project
	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		projects := factory.NewProjectRepository()

		if input.ClientName != nil {
			clientID, err := resolveClient(ctx, factory, caller, *input.ClientName)
			if err != nil {
				return err
			}
			project.ClientID = clientID
		}

		tagIDs, err := resolveTags(ctx, factory, caller, input.TagIDs)
		if err != nil {
			return err
		}

		if err := projects.Create(ctx, caller, project); err != nil {
			return translateRepoError(err, "create project")
		}
		if len(tagIDs) > 0 {
			if err := projects.ReplaceTags(ctx, caller, project.ID, tagIDs); err != nil {
				return translateRepoError(err, "project")
			}
		}

		created, err = projects.Get(ctx, caller, project.ID)

		return translateRepoError(err, "project")
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update leaves the client untouched when client_name is absent and clears it when blank.
func (srv *projectService) Update(ctx context.Context, caller entity.Caller, id uuid.UUID, input *usecase.ProjectInput) (*entity.Project, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateProgress(input.Progress); err != nil {
		return nil, err
	}

	var updated *entity.Project
	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		projects := factory.NewProjectRepository()

		var clientID *uuid.UUID
		if input.ClientName != nil {
			resolved, err := resolveClient(ctx, factory, caller, *input.ClientName)
			if err != nil {
				return err
			}
			clientID = resolved
		}

		tagIDs, err := resolveTags(ctx, factory, caller, input.TagIDs)
		if err != nil {
			return err
		}

		updated, err = projects.Update(ctx, caller, id, func(project *entity.Project) error {
			name, err := updatedName(project.Name, input.Name, "name")
			if err != nil {
				return err
			}
			project.Name = name
			if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
				project.Status = strings.TrimSpace(*input.Status)
			}
			setIfPresent(&project.Progress, input.Progress)
			if input.ClientName != nil {
				project.ClientID = clientID
				project.Client = nil
			}

			return nil
		})
		if err != nil {
			return translateRepoError(err, "project")
		}

		if input.TagIDs == nil {
			return nil
		}
		if err := projects.ReplaceTags(ctx, caller, id, tagIDs); err != nil {
			return translateRepoError(err, "project")
		}
		updated, err = projects.Get(ctx, caller, id)

		return translateRepoError(err, "project")
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (srv *projectService) CountCompleted(ctx context.Context, caller entity.Caller, between usecase.CreatedBetween) (int64, error) {
	if err := requireCaller(caller); err != nil {
		return 0, err
	}

	count, err := srv.projectRepo.CountCompleted(ctx, caller, toCreatedRange(between.Start, between.End))
	if err != nil {
		return 0, translateRepoError(err, "count completed projects")
	}

	return count, nil
}

func validateProgress(progress *int) error {
	if progress != nil && (*progress < 0 || *progress > 100) {
		return domainerrors.ErrValidationFailed.WithDetails("progress must be between 0 and 100")
	}

	return nil
}

// resolveClient dedups a client by name. A blank name clears the reference.
func resolveClient(ctx context.Context, factory repository.RepositoryFactory, caller entity.Caller, clientName string) (*uuid.UUID, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, nil
	}

	client, err := factory.NewClientRepository().FindOrCreateByName(ctx, caller, clientName)
	if err != nil {
		return nil, translateRepoError(err, "client")
	}

	return &client.ID, nil
}

// resolveTags checks that every requested tag belongs to the caller.
func resolveTags(ctx context.Context, factory repository.RepositoryFactory, caller entity.Caller, tagIDs *[]uuid.UUID) ([]uuid.UUID, error) {
	if tagIDs == nil || len(*tagIDs) == 0 {
		return nil, nil
	}

	unique := make([]uuid.UUID, 0, len(*tagIDs))
	seen := make(map[uuid.UUID]struct{}, len(*tagIDs))
	for _, id := range *tagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := factory.NewTagRepository().FindByIDs(ctx, caller, unique)
	if err != nil {
		return nil, translateRepoError(err, "tag")
	}
	if len(found) != len(unique) {
		return nil, domainerrors.ErrNotFound.WrapMessage("tag not found")
	}

	return unique, nil
}
