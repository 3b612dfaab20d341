package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tasktracker/internal/api"
	apiMiddleware "tasktracker/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	taskHandler := api.NewTaskHandler(app.taskStore, app.tagStore, app.logger)
	reminderHandler := api.NewReminderHandler(app.reminderStore, app.taskStore, app.logger)
	jobHandler := api.NewJobHandler(app.jobRunner, app.config.Job.CronSecret, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Job trigger endpoints, guarded by the cron secret header
		r.Post("/jobs/recurring-tasks", jobHandler.RunRecurrence)
		r.Post("/jobs/reminder-dispatcher", jobHandler.RunReminders)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			// Task endpoints
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/search", taskHandler.Search)
			r.Get("/tasks/filter", taskHandler.Filter)
			r.Get("/tasks/sort", taskHandler.Sort)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)

			// Due date and recurrence
			r.Post("/tasks/{id}/due-date", taskHandler.SetDueDate)
			r.Post("/tasks/{id}/recurrence", taskHandler.SetRecurrence)
			r.Delete("/tasks/{id}/recurrence", taskHandler.ClearRecurrence)

			// Tag assignment
			r.Post("/tasks/{id}/tags/{name}", taskHandler.AttachTag)
			r.Delete("/tasks/{id}/tags/{name}", taskHandler.DetachTag)

			// Reminder endpoints
			r.Post("/tasks/{id}/reminders", reminderHandler.Create)
			r.Get("/tasks/{id}/reminders", reminderHandler.ListByTask)
			r.Get("/reminders/pending", reminderHandler.ListPending)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
