package main

import (
	"context"
	"log/slog"
	"os"

	"tracker/config"
	"tracker/internal/delivery"
	"tracker/internal/delivery/api"
	apimiddleware "tracker/internal/delivery/api/middleware"
	"tracker/internal/delivery/api/router/handler"
	"tracker/internal/infra/auth"
	"tracker/internal/infra/export"
	logs "tracker/internal/infra/log"
	"tracker/internal/infra/metrics"
	"tracker/internal/infra/persistence/postgres"
	"tracker/internal/infra/pubsub"
	"tracker/internal/infra/ratelimit"
	"tracker/internal/infra/storage"
	"tracker/internal/usecase/impl"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. Pending migrations are applied on start when
migration.autoMigrate is true.`,
		RunE: runServe,
	}
}

func runServe(*cobra.Command, []string) error {
	app := fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(startServer),
	)
	app.Run()

	return app.Err()
}

type startServerParams struct {
	fx.In
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
		),
		metrics.Module,
		storage.Module,
		pubsub.Module,
		ratelimit.Module,
	)
}

func injectRepo() fx.Option {
	return fx.Provide(
		postgres.NewTransactionManager,
		postgres.NewAccountRepository,
		postgres.NewProfileRepository,
		postgres.NewClientRepository,
		postgres.NewTagRepository,
		postgres.NewProjectRepository,
		postgres.NewTaskRepository,
		postgres.NewTimeEntryRepository,
		postgres.NewPomodoroSessionRepository,
	)
}

func injectService() fx.Option {
	return fx.Provide(
		auth.NewBcryptHasher,
		auth.NewJWTService,
		auth.NewFederatedVerifier,
		export.NewXLSXExporter,
	)
}

func injectUsecase() fx.Option {
	return fx.Provide(
		impl.NewAuthService,
		impl.NewAccountService,
		impl.NewProfileService,
		impl.NewClientService,
		impl.NewTagService,
		impl.NewProjectService,
		impl.NewTaskService,
		impl.NewTimeEntryService,
		impl.NewPomodoroService,
	)
}

func injectMiddleware() fx.Option {
	return fx.Provide(
		apimiddleware.NewAuthMiddleware,
	)
}

func injectHandler() fx.Option {
	return fx.Provide(
		handler.NewAuthHandler,
		handler.NewAccountHandler,
		handler.NewWorkspaceHandler,
	)
}

func injectDelivery() fx.Option {
	return fx.Provide(
		fx.Annotate(
			api.NewServer,
			fx.ResultTags(`group:"deliveries"`),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, d := range params.Deliveries {
		go func() {
			if err := d.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				if shutdownErr := params.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
