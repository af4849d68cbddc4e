package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shamshodbekdevops/dicttrainer/internal/api"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/auth"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/quiz"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid direction", quiz.ErrInvalidDirection, http.StatusBadRequest},
		{"no words", quiz.ErrNoWords, http.StatusBadRequest},
		{"range out of bounds", &quiz.RangeOutOfBoundsError{MaxEnd: 3}, http.StatusBadRequest},
		{"invalid range", quiz.ErrInvalidRange, http.StatusBadRequest},
		{"finished session", quiz.ErrSessionFinished, http.StatusBadRequest},
		{"session not found", quiz.ErrSessionNotFound, http.StatusNotFound},
		{"word not found", store.ErrWordNotFound, http.StatusNotFound},
		{"lost race", store.ErrConcurrentModification, http.StatusConflict},
		{"wrapped lost race", fmt.Errorf("persist: %w", store.ErrConcurrentModification), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, api.MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	// Validation errors pass their own message through so the caller can
	// correct the request.
	msg := api.GetSafeErrorMessage(&quiz.RangeOutOfBoundsError{MaxEnd: 4})
	assert.Equal(t, "range end must be <= 4", msg)

	// Internal errors never leak their details.
	msg = api.GetSafeErrorMessage(errors.New("pq: connection refused on 10.0.0.5"))
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "10.0.0.5")

	assert.Equal(t, "Test session not found", api.GetSafeErrorMessage(quiz.ErrSessionNotFound))
	assert.Equal(t, "Session already finished", api.GetSafeErrorMessage(quiz.ErrSessionFinished))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'StartTestRequest.Direction' Error:Field validation for 'Direction' failed on the 'oneof' tag")
	assert.Equal(t, "Invalid Direction: invalid value", api.SanitizeValidationError(err))

	assert.Equal(t, "Validation error", api.SanitizeValidationError(errors.New("boom")))
}
