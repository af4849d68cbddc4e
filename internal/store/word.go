package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
)

// WordStore defines the interface for word data persistence. It doubles as
// the quiz engine's word-range provider: ListByUser returns the owner's words
// in stable position order and GetByID resolves one frozen order entry.
//
// Every method is scoped to an owner at the query layer. A word that exists
// but belongs to another user behaves exactly like a missing word
// (ErrWordNotFound), never like a denied one.
type WordStore interface {
	// Create saves a new word to the store, assigning it the next free
	// position in the owner's list. The word's Position field is set on
	// return. Returns validation errors if the word data is invalid.
	Create(ctx context.Context, word *domain.Word) error

	// ListByUser retrieves all of a user's words ordered by ascending
	// position. Returns an empty slice when the user has no words.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error)

	// GetByID retrieves one of the user's words by its unique ID.
	// Returns ErrWordNotFound if no such word is owned by the user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Word, error)

	// Delete removes one of the user's words by its unique ID. Positions of
	// the remaining words are not reassigned.
	// Returns ErrWordNotFound if no such word is owned by the user.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
