package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
)

// TestSessionStore defines the interface for test session persistence.
// The quiz service is the only writer; no other component mutates sessions.
//
// Sessions are addressed by the composite key (owner, id): Get and Update
// filter by owner in the query itself, so a guessed session ID belonging to
// another user is indistinguishable from a missing one.
type TestSessionStore interface {
	// Create saves a new test session to the store.
	// Returns validation errors if the session data is invalid.
	Create(ctx context.Context, session *domain.TestSession) error

	// Get retrieves one of the user's sessions by its unique ID.
	// Returns ErrSessionNotFound if no such session is owned by the user.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.TestSession, error)

	// Update persists the full session record in one atomic write, guarded
	// by an optimistic-concurrency check on the session's Version field.
	// On success the session's Version is incremented in place.
	//
	// Returns ErrConcurrentModification if the stored version no longer
	// matches (another call won the race; re-read and retry), or
	// ErrSessionNotFound if no such session is owned by the user.
	Update(ctx context.Context, session *domain.TestSession) error
}
