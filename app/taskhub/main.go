package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jrazmi/taskhub/app/taskhub/api"
	"github.com/jrazmi/taskhub/app/taskhub/config"
	"github.com/jrazmi/taskhub/bridge/scaffolding/mid"
	"github.com/jrazmi/taskhub/core/overduescan"
	"github.com/jrazmi/taskhub/core/repositories/taskrepo"
	"github.com/jrazmi/taskhub/core/repositories/taskrepo/stores/taskpgxstore"
	"github.com/jrazmi/taskhub/core/repositories/userrepo"
	"github.com/jrazmi/taskhub/core/repositories/userrepo/stores/userpgxstore"
	"github.com/jrazmi/taskhub/infrastructure/postgresdb"
	"github.com/jrazmi/taskhub/infrastructure/web"
	"github.com/jrazmi/taskhub/infrastructure/workers"
	"github.com/jrazmi/taskhub/sdk/environment"
	"github.com/jrazmi/taskhub/sdk/logger"
	"github.com/jrazmi/taskhub/sdk/telemetry"
)

var build = "develop"
var appName = "TASKHUB"

func main() {
	environment.LoadEnv()
	ctx := context.Background()

	log, err := logger.NewFromEnv(appName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuring logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	// DATABASES
	pg, err := postgresdb.NewFromEnv(appName)
	if err != nil {
		return fmt.Errorf("configuring postgres support: %w", err)
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection")
		pg.Close()
	}()

	// REPOSITORIES
	log.InfoContext(ctx, "startup", "status", "initializing repository support")
	taskRepository := taskrepo.NewRepository(log, taskpgxstore.NewStore(log, pg))
	userRepository := userrepo.NewRepository(log, userpgxstore.NewStore(log, pg))

	tel := telemetry.NewTelemetry()

	cfg := config.TaskHub{
		Build:  build,
		Logger: log,
		Repositories: config.Repositories{
			Task: taskRepository,
			User: userRepository,
		},
		Telemetry: tel,
	}

	// WEB HANDLER
	handler, err := web.NewWebHandlerFromEnv(appName,
		web.WithLogging(log.Logger),
		web.WithTelemetry(tel),
		web.WithGlobalMiddleware(
			mid.Logger(log),
			mid.Errors(log),
			mid.Metrics(),
			mid.Panics(),
		),
	)
	if err != nil {
		return fmt.Errorf("configuring web handler: %w", err)
	}
	api.AddHandlers(handler, cfg)

	server, err := web.NewServerFromEnv(appName,
		web.WithHandler(handler),
		web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)),
	)
	if err != nil {
		return fmt.Errorf("configuring web server: %w", err)
	}

	// OVERDUE SWEEP
	processor := overduescan.NewProcessor(log, taskRepository, overduescan.NewLogNotifier(log))
	pool, err := workers.NewPoolFromEnv(appName, processor,
		workers.WithName("overdue-scan"),
		workers.WithLogger(log.Logger),
		workers.WithMiddleware(workers.ConsecutiveErrorShutdown(5)),
	)
	if err != nil {
		return fmt.Errorf("configuring overdue sweep: %w", err)
	}

	poolErrors := make(chan error, 1)
	go func() {
		poolErrors <- pool.Start(ctx)
	}()

	serverErrors := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "startup", "status", "api router started", "host", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		pool.Stop()
		return fmt.Errorf("server error: %w", err)

	case err := <-poolErrors:
		if err != nil {
			return fmt.Errorf("overdue sweep error: %w", err)
		}
		return fmt.Errorf("overdue sweep stopped unexpectedly")

	case sig := <-shutdown:
		log.InfoContext(ctx, "shutdown", "status", "shutdown started", "signal", sig.String())
		defer log.InfoContext(ctx, "shutdown", "status", "shutdown complete", "signal", sig.String())

		pool.Stop()
		<-poolErrors

		shutdownCtx, cancel := context.WithTimeout(ctx, server.Config.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
