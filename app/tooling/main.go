package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/taskhub/app/tooling/commands"
	"github.com/jrazmi/taskhub/infrastructure/postgresdb"
	"github.com/jrazmi/taskhub/sdk/environment"
	"github.com/jrazmi/taskhub/sdk/logger"
)

var build = "develop"
var appName = "TOOLING"

func processCommands(ctx context.Context, log *logger.Logger, command string, args []string, pg *pgxpool.Pool) error {
	switch command {
	case "migrate":
		log.InfoContext(ctx, "running migration")
		if err := postgresdb.Migrate(ctx, pg); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.InfoContext(ctx, "migration completed successfully")
		return nil

	case "seed":
		log.InfoContext(ctx, "running seed")
		if err := commands.Seed(ctx, log.Logger, args, pg); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		return nil

	default:
		printHelp()
		return nil
	}

}
func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  migrate - create the schema in the database")
	fmt.Println("  seed    - load development users and tasks")
	fmt.Println()
	fmt.Println("Use 'go run app/tooling/main.go <command> --help' for command-specific help.")
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	var command string
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if command == "help" || command == "--help" || command == "-h" {
		printHelp()
		return nil
	}
	pg, err := postgresdb.NewFromEnv(appName, postgresdb.WithTracer(postgresdb.NewLoggingQueryTracer(log.Logger)))
	if err != nil {
		return fmt.Errorf("configuring postgres support: %w", err)
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection")
		pg.Close()
	}()
	log.InfoContext(ctx, "init", "service", "postgres")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		args := []string{}
		if len(os.Args) > 2 {
			args = os.Args[2:]
		}
		done <- processCommands(ctx, log, command, args, pg)
	}()

	select {
	case err := <-done:
		return err

	case sig := <-shutdown:
		log.InfoContext(ctx, "shutdown", "status", "shutdown started", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		select {
		case err := <-done:
			return err
		case <-shutdownCtx.Done():
			return fmt.Errorf("shutdown timeout: %w", shutdownCtx.Err())
		}
	}

}

func main() {
	environment.LoadEnv()

	log, err := logger.NewFromEnv(appName)
	if err != nil {
		fmt.Println("oh no we couldn't even get logging going.")
		os.Exit(1)
	}
	ctx := context.Background()

	if err = run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}
