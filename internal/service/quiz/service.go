// Package quiz implements the test-session progression engine: it creates
// shuffled question sequences over a range of a user's word list, walks the
// user through them one question at a time, grades answers, and produces the
// final score summary.
package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
)

// QuizService drives test sessions from start to finish.
//
// Every operation re-reads the persisted session before deciding the next
// transition; the service keeps no per-session state in memory. Concurrent
// calls on the same session are serialized by the store's version check, so
// a caller that loses a race receives store.ErrConcurrentModification and
// should retry the single operation.
type QuizService interface {
	// StartSession creates a new test session for the user over the word
	// range [start, end] (inclusive, zero-based positions into the user's
	// ordered word list). The question order is shuffled once at creation
	// and frozen into the session record.
	//
	// Returns ErrInvalidDirection, ErrNoWords, a *RangeOutOfBoundsError
	// (wrapping ErrRangeOutOfBounds and carrying the maximum valid end),
	// ErrInvalidRange, or ErrEmptyRange on invalid input.
	StartSession(
		ctx context.Context,
		userID uuid.UUID,
		direction domain.Direction,
		start, end int,
	) (*StartResult, error)

	// GetQuestion returns the current question of the session without
	// advancing it. Both the "current question" and "next question"
	// operations resolve here: neither moves the cursor, only SubmitAnswer
	// does. An exhausted session is lazily flipped to finished (persisted)
	// and reported as a finished marker, not an error.
	//
	// Returns ErrSessionNotFound for an unknown or not-owned session, or
	// ErrWordNotFound when a frozen order entry no longer resolves.
	GetQuestion(ctx context.Context, userID, sessionID uuid.UUID) (*QuestionView, error)

	// SubmitAnswer grades the provided answer against the current question
	// and advances the cursor. Grading is case-insensitive, surrounding-
	// whitespace-trimmed exact equality. All resulting counter, mistake,
	// cursor and finished changes are persisted in one atomic update.
	//
	// Returns ErrSessionFinished when the session is already in its
	// terminal state (an expected condition, not a fault), plus the
	// not-found errors of GetQuestion.
	SubmitAnswer(ctx context.Context, userID, sessionID uuid.UUID, answer string) (*AnswerResult, error)

	// FinishSession finalizes the session (idempotently) and returns its
	// score summary. A session finished early simply reports the answers
	// given so far; repeated calls return the same summary and perform no
	// further writes.
	FinishSession(ctx context.Context, userID, sessionID uuid.UUID) (*Summary, error)
}

// StartResult describes a freshly created session.
type StartResult struct {
	SessionID      uuid.UUID        `json:"session_id"`
	TotalWords     int              `json:"total_words"`
	TotalQuestions int              `json:"total_questions"`
	Direction      domain.Direction `json:"direction"`
	Start          int              `json:"start"`
	End            int              `json:"end"`
}

// QuestionView is the current question of an active session, or the finished
// marker once the session is exhausted.
type QuestionView struct {
	Finished  bool             `json:"finished"`
	SessionID uuid.UUID        `json:"session_id,omitempty"`
	Direction domain.Direction `json:"direction,omitempty"`
	Question  string           `json:"question,omitempty"`
	Progress  int              `json:"progress,omitempty"`
	Total     int              `json:"total,omitempty"`
}

// AnswerResult is the per-answer feedback returned by SubmitAnswer.
type AnswerResult struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
	Finished bool   `json:"finished"`
	Progress int    `json:"progress"`
	Total    int    `json:"total"`
}

// Summary is the final score report of a finished session.
type Summary struct {
	SessionID      uuid.UUID        `json:"session_id"`
	TotalQuestions int              `json:"total_questions"`
	Correct        int              `json:"correct"`
	Wrong          int              `json:"wrong"`
	Percentage     float64          `json:"percentage"`
	Mistakes       []domain.Mistake `json:"mistakes"`
}

// Common error types for QuizService
var (
	// ErrInvalidDirection indicates an unsupported quiz direction.
	ErrInvalidDirection = errors.New("direction must be source_to_target or target_to_source")

	// ErrNoWords indicates the user has no words to quiz over.
	ErrNoWords = errors.New("no words available for this user")

	// ErrRangeOutOfBounds indicates the requested range end exceeds the
	// user's word list. Returned wrapped in a *RangeOutOfBoundsError that
	// names the maximum valid end.
	ErrRangeOutOfBounds = errors.New("range end exceeds word list")

	// ErrInvalidRange indicates start > end or a negative bound.
	ErrInvalidRange = errors.New("range start must be non-negative and <= end")

	// ErrEmptyRange indicates an in-bounds range that resolved to no words.
	ErrEmptyRange = errors.New("selected range is empty")

	// ErrSessionNotFound indicates the session does not exist or is not
	// owned by the requesting user.
	ErrSessionNotFound = errors.New("test session not found")

	// ErrWordNotFound indicates a word referenced by the session's frozen
	// order no longer resolves. This is a data-consistency fault (the word
	// was deleted out from under the session), not a user error.
	ErrWordNotFound = errors.New("word referenced by session not found")

	// ErrSessionFinished indicates an answer was submitted to a session
	// already in its terminal state. Expected, not logged as an error.
	ErrSessionFinished = errors.New("test session already finished")
)

// RangeOutOfBoundsError reports a range end past the user's word list,
// carrying the maximum valid end so the caller can correct the request.
type RangeOutOfBoundsError struct {
	MaxEnd int
}

// Error implements the error interface for RangeOutOfBoundsError.
func (e *RangeOutOfBoundsError) Error() string {
	return fmt.Sprintf("range end must be <= %d", e.MaxEnd)
}

// Unwrap lets errors.Is(err, ErrRangeOutOfBounds) match.
func (e *RangeOutOfBoundsError) Unwrap() error {
	return ErrRangeOutOfBounds
}
