// Package main implements the entry point for the task tracker API server:
// multi-user tasks with tags, due dates, recurrence and reminders, driven by
// an in-process background job runner.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"tasktracker/internal/config"
	"tasktracker/internal/platform/logger"
)

// main wires configuration, logging, database, migrations and the
// application, then runs the HTTP server until shutdown.
func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run performs startup in order; any failure aborts before the server
// begins accepting traffic.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"recurrence_interval", cfg.Job.RecurrenceInterval.String(),
		"reminder_interval", cfg.Job.ReminderInterval.String())

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := runMigrations(db, cfg.Database.MigrationsDir, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(context.Background())
}
