package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"content-catalog/internal/jobs"
	"content-catalog/internal/wire"
	"content-catalog/pkg/database"
	"content-catalog/pkg/mailer"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// Commands returns the subcommands of the catalog binary.
func Commands() []*cli.Command {
	return []*cli.Command{
		serveCommand(),
		migrateCommand(),
		createAdminCommand(),
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and background jobs",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "apply pending migrations before serving",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.close()

	e.log.Info("Starting application",
		zap.String("app", e.config.App.Name),
		zap.String("port", e.config.App.Port),
		zap.Bool("debug", e.config.App.Debug),
	)

	if cmd.Bool("migrate") {
		if err := database.Migrate(e.config.Database, "up", e.log); err != nil {
			return err
		}
	}

	app := wire.Wiring(e.repo, e.config, mailer.New(e.config.Email, e.log), e.log)

	cleanup := jobs.NewCleanup(e.repo.ConfirmationCode, app.RateLimiter, app.Metrics.CodesPurged, e.log)
	scheduler, err := jobs.NewScheduler(e.config.Jobs, cleanup, e.log)
	if err != nil {
		return err
	}
	scheduler.Start()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := APIServer(ctx, app.Router, e.config.App.Port, e.log)

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	scheduler.Stop(stopCtx)

	return serveErr
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Action: runMigrate("up"),
			},
			{
				Name:   "down",
				Usage:  "roll back every migration",
				Action: runMigrate("down"),
			},
		},
	}
}

func runMigrate(direction string) cli.ActionFunc {
	return func(_ context.Context, _ *cli.Command) error {
		e, err := loadEnv(false)
		if err != nil {
			return err
		}
		defer e.close()

		return database.Migrate(e.config.Database, direction, e.log)
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create a superuser account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				Usage:    "login name of the new superuser",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "address confirmation codes are sent to",
				Required: true,
			},
		},
		Action: runCreateAdmin,
	}
}

func runCreateAdmin(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.close()

	app := wire.Wiring(e.repo, e.config, mailer.New(e.config.Email, e.log), e.log)

	user, err := app.Service.User.CreateSuperuser(ctx, cmd.String("username"), cmd.String("email"))
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}

	fmt.Fprintf(os.Stdout, "superuser %s <%s> created; request a token via /v1/auth/signup/\n", user.Username, user.Email)
	return nil
}
