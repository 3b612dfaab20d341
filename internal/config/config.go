package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Job      JobConfig      `mapstructure:"job"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`

	// MigrationsDir is the path to the goose SQL migrations applied at
	// startup.
	MigrationsDir string `mapstructure:"migrations_dir" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// JobConfig contains the schedule and guard settings for the background
// jobs. Intervals are plain durations resolved once at startup; the
// scheduling mechanism itself lives in the job runner.
type JobConfig struct {
	// RecurrenceInterval is how often the recurrence processor ticks.
	RecurrenceInterval time.Duration `mapstructure:"recurrence_interval" validate:"required,gt=0"`

	// ReminderInterval is how often the reminder dispatcher ticks.
	ReminderInterval time.Duration `mapstructure:"reminder_interval" validate:"required,gt=0"`

	// RowTimeout bounds each per-candidate unit of work so a contended row
	// can never hold a lock past the job tick.
	RowTimeout time.Duration `mapstructure:"row_timeout" validate:"required,gt=0"`

	// CronSecret guards the external job-trigger endpoints.
	CronSecret string `mapstructure:"cron_secret" validate:"required,min=16"`
}
