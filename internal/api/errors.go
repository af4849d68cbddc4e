package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shamshodbekdevops/dicttrainer/internal/service/auth"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/quiz"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized

	// Validation errors
	case errors.Is(err, quiz.ErrInvalidDirection),
		errors.Is(err, quiz.ErrNoWords),
		errors.Is(err, quiz.ErrRangeOutOfBounds),
		errors.Is(err, quiz.ErrInvalidRange),
		errors.Is(err, quiz.ErrEmptyRange),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Terminal-state answers are expected and reported as a bad request
	// carrying the finished marker, never as a server fault.
	case errors.Is(err, quiz.ErrSessionFinished):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, quiz.ErrSessionNotFound),
		errors.Is(err, quiz.ErrWordNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors: a lost optimistic-concurrency race is transient and
	// the caller should retry the single operation.
	case errors.Is(err, store.ErrConcurrentModification):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. Validation errors pass their own message through
// (it names the valid bounds); everything else maps to a fixed string.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	// Validation errors carry user-correctable detail by construction
	// (e.g., *quiz.RangeOutOfBoundsError names the maximum valid end).
	case errors.Is(err, quiz.ErrInvalidDirection),
		errors.Is(err, quiz.ErrNoWords),
		errors.Is(err, quiz.ErrRangeOutOfBounds),
		errors.Is(err, quiz.ErrInvalidRange),
		errors.Is(err, quiz.ErrEmptyRange):
		return err.Error()

	case errors.Is(err, quiz.ErrSessionFinished):
		return "Session already finished"

	// Not found errors
	case errors.Is(err, quiz.ErrSessionNotFound):
		return "Test session not found"

	case errors.Is(err, quiz.ErrWordNotFound),
		errors.Is(err, store.ErrWordNotFound):
		return "Word not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrConcurrentModification):
		return "Session was modified concurrently, retry the request"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'StartTestRequest.Direction' Error:Field
		// validation for 'Direction' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "invalid identifier format"
	case "min":
		return "value too small"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
