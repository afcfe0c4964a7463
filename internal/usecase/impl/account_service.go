package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "tracker/internal/delivery/context"
	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/domain/service"
	"tracker/internal/errors"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type accountService struct {
	txManager repository.TransactionManager
	publisher service.EventPublisher
	logger    *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager: params.TxManager,
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

type purgeStep struct {
	name string
	run  func(ctx context.Context, ownerID uuid.UUID) error
}

// purgeSteps lists owned data in deletion order, children before parents.
func purgeSteps(factory repository.RepositoryFactory) []purgeStep {
	return []purgeStep{
		{"profile", factory.NewProfileRepository().DeleteByOwner},
		{"time entries", factory.NewTimeEntryRepository().DeleteAllOwnedBy},
		{"tasks", factory.NewTaskRepository().DeleteAllOwnedBy},
		{"project tags", factory.NewProjectRepository().DeleteTagLinksOwnedBy},
		{"projects", factory.NewProjectRepository().DeleteAllOwnedBy},
		{"clients", factory.NewClientRepository().DeleteAllOwnedBy},
		{"tags", factory.NewTagRepository().DeleteAllOwnedBy},
		{"pomodoro sessions", factory.NewPomodoroSessionRepository().DeleteAllOwnedBy},
	}
}

// DeleteAccount removes every owned record and then the account, all or nothing.
func (srv *accountService) DeleteAccount(ctx context.Context, caller entity.Caller) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	ownerID := caller.AccountID

	var account *entity.Account
	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		accounts := factory.NewAccountRepository()

		found, err := accounts.FindByID(ctx, ownerID)
		if errors.Is(err, repository.ErrAccountNotFound) {
			// The token outlived its account.
			return domainerrors.ErrInvalidToken.WrapMessage("account no longer exists")
		}
		if err != nil {
			return translateRepoError(err, "delete account")
		}
		account = found

		for _, step := range purgeSteps(factory) {
			if err := step.run(ctx, ownerID); err != nil {
				return errors.Wrapf(err, "failed to delete %s", step.name)
			}
		}

		return translateRepoError(accounts.Delete(ctx, ownerID), "delete account")
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Account deleted",
		slog.String("account_id", ownerID.String()),
		slog.String("email", account.Email),
	)
	publishAccountEvent(ctx, srv.log(ctx), srv.publisher, &service.AccountEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       service.AccountDeleted,
		AccountID:  ownerID.String(),
		Email:      account.Email,
		Provider:   string(account.Provider),
		OccurredAt: time.Now().UTC(),
	})

	return nil
}
