package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"tasktracker/internal/config"
	"tasktracker/internal/job"
	"tasktracker/internal/platform/postgres"
	"tasktracker/internal/service/auth"
	"tasktracker/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore     store.UserStore
	taskStore     store.TaskStore
	tagStore      store.TagStore
	reminderStore store.ReminderStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	// Background jobs
	jobRunner *job.Runner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.tagStore = postgres.NewPostgresTagStore(db, logger)
	app.reminderStore = postgres.NewPostgresReminderStore(db, logger)

	// Background jobs
	app.jobRunner, err = setupJobRunner(app)
	if err != nil {
		return nil, fmt.Errorf("failed to set up job runner: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupJobRunner wires the automation core: the recurrence processor and
// reminder dispatcher over their postgres gateways, scheduled by the runner.
func setupJobRunner(app *application) (*job.Runner, error) {
	taskGateway := postgres.NewTaskJobGateway(app.db, app.logger)
	reminderGateway := postgres.NewReminderJobGateway(app.db, app.logger)

	recurrence := job.NewRecurrenceProcessor(taskGateway, app.config.Job.RowTimeout, app.logger)
	reminders := job.NewReminderDispatcher(
		reminderGateway,
		job.NewLogSink(app.logger),
		app.config.Job.RowTimeout,
		app.logger,
	)

	runner := job.NewRunner(recurrence, reminders, job.RunnerConfig{
		RecurrenceInterval: app.config.Job.RecurrenceInterval,
		ReminderInterval:   app.config.Job.ReminderInterval,
	}, app.logger)

	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}

	return runner, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
