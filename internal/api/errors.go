package api

import (
	"errors"
	"net/http"

	"tasktracker/internal/api/shared"
	"tasktracker/internal/domain"
	"tasktracker/internal/job"
	"tasktracker/internal/service/auth"
	"tasktracker/internal/store"
)

// genericErrorMessage is the fallback for errors without a safe mapping.
const genericErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err),
		errors.Is(err, job.ErrAlreadyRunning):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		isDomainValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return "Invalid " + validationErr.Field + ": " + validationErr.Message
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrTagNotFound):
		return "Tag not found"

	case errors.Is(err, store.ErrReminderNotFound):
		return "Reminder not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrTagAssigned):
		return "Tag already assigned to task"

	case errors.Is(err, job.ErrAlreadyRunning):
		return "Job already running"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case isDomainValidationError(err):
		return err.Error()

	default:
		return genericErrorMessage
	}
}

// HandleAPIError maps the error to a status code and sanitized message and
// writes the response, logging the underlying error. When no safe message
// exists for the error, defaultMsg (if non-empty) is used instead of the
// generic fallback.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if message == genericErrorMessage && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// isDomainValidationError reports whether err is one of the sentinel
// validation errors raised by the domain constructors. These carry no
// sensitive detail and are safe to surface verbatim.
func isDomainValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrEmptyTaskTitle,
		domain.ErrInvalidPriority,
		domain.ErrInvalidRecurrenceType,
		domain.ErrInvalidRecurrenceConfig,
		domain.ErrEmptyTagName,
		domain.ErrZeroRemindAt,
		domain.ErrEmptyEmail,
		domain.ErrInvalidEmail,
		domain.ErrEmptyPassword,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
