package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Word-specific validation errors
var (
	// ErrWordIDEmpty is returned when a word ID is empty or nil.
	ErrWordIDEmpty = errors.New("word ID cannot be empty")

	// ErrWordUserIDEmpty is returned when a word's user ID is empty or nil.
	ErrWordUserIDEmpty = errors.New("word user ID cannot be empty")

	// ErrWordSourceTextEmpty is returned when a word's source text is blank.
	ErrWordSourceTextEmpty = errors.New("word source text cannot be empty")

	// ErrWordTargetTextEmpty is returned when a word's target text is blank.
	ErrWordTargetTextEmpty = errors.New("word target text cannot be empty")

	// ErrWordPositionNegative is returned when a word's list position is negative.
	ErrWordPositionNegative = errors.New("word position cannot be negative")
)

// Word represents one source/target vocabulary pair belonging to a user.
// Position is the word's zero-based ordinal within the owner's list. It is
// assigned at insertion time and never reassigned afterward, so a session's
// frozen question order stays valid even when list membership changes around it.
type Word struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	SourceText string    `json:"source_text"`
	TargetText string    `json:"target_text"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewWord creates a new Word owned by the given user at the given list position.
// Both texts are stored trimmed. Returns an error if validation fails.
func NewWord(userID uuid.UUID, sourceText, targetText string, position int) (*Word, error) {
	word := &Word{
		ID:         uuid.New(),
		UserID:     userID,
		SourceText: strings.TrimSpace(sourceText),
		TargetText: strings.TrimSpace(targetText),
		Position:   position,
		CreatedAt:  time.Now().UTC(),
	}

	if err := word.Validate(); err != nil {
		return nil, err
	}

	return word, nil
}

// Validate checks if the Word has valid data.
// Returns an error if any field fails validation.
func (w *Word) Validate() error {
	if w.ID == uuid.Nil {
		return ErrWordIDEmpty
	}

	if w.UserID == uuid.Nil {
		return ErrWordUserIDEmpty
	}

	if strings.TrimSpace(w.SourceText) == "" {
		return ErrWordSourceTextEmpty
	}

	if strings.TrimSpace(w.TargetText) == "" {
		return ErrWordTargetTextEmpty
	}

	if w.Position < 0 {
		return ErrWordPositionNegative
	}

	return nil
}
