package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction determines which side of a word pair is shown as the prompt
// and which side is expected as the answer.
type Direction string

// Possible quiz directions
const (
	DirectionSourceToTarget Direction = "source_to_target"
	DirectionTargetToSource Direction = "target_to_source"
)

// IsValid reports whether the direction is one of the supported values.
func (d Direction) IsValid() bool {
	return d == DirectionSourceToTarget || d == DirectionTargetToSource
}

// TestSession-specific validation errors
var (
	ErrSessionIDEmpty        = errors.New("session ID cannot be empty")
	ErrSessionUserIDEmpty    = errors.New("session user ID cannot be empty")
	ErrSessionDirection      = errors.New("session direction must be source_to_target or target_to_source")
	ErrSessionRangeInvalid   = errors.New("session range start must be <= end and non-negative")
	ErrSessionOrderMismatch  = errors.New("session order length must equal total questions")
	ErrSessionOrderDuplicate = errors.New("session order cannot contain duplicate word IDs")
	ErrSessionCursorRange    = errors.New("session cursor must be between 0 and total questions")
	ErrSessionCountMismatch  = errors.New("session correct and wrong counts must sum to the cursor")
	ErrSessionMistakeCount   = errors.New("session mistake count must equal the wrong count")
	ErrSessionNotFinished    = errors.New("session must be finished when the cursor reaches the end")
)

// Mistake records one incorrect answer: the prompt that was shown, the
// expected answer, and what the user actually submitted.
type Mistake struct {
	Prompt   string `json:"prompt"`
	Expected string `json:"expected"`
	Provided string `json:"provided"`
}

// TestSession is one quiz run over a slice of a user's word list.
//
// Order is the shuffled sequence of word IDs frozen at creation time; it is
// never recomputed, so the question sequence is stable across retries and
// polling. CurrentIndex points at the next unanswered question and only
// ApplyAnswer moves it. Finished is monotonic: once true it never reverts.
// Version backs the store's optimistic-concurrency check.
type TestSession struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	Direction      Direction   `json:"direction"`
	StartIndex     int         `json:"start_index"`
	EndIndex       int         `json:"end_index"`
	TotalQuestions int         `json:"total_questions"`
	Order          []uuid.UUID `json:"order"`
	CurrentIndex   int         `json:"current_index"`
	CorrectCount   int         `json:"correct_count"`
	WrongCount     int         `json:"wrong_count"`
	Mistakes       []Mistake   `json:"mistakes"`
	Finished       bool        `json:"finished"`
	Version        int         `json:"version"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewTestSession creates a new session for the given user over the given
// shuffled word order. The cursor starts at zero with no answers recorded.
// Returns an error if validation fails.
func NewTestSession(
	userID uuid.UUID,
	direction Direction,
	startIndex, endIndex int,
	order []uuid.UUID,
) (*TestSession, error) {
	now := time.Now().UTC()
	session := &TestSession{
		ID:             uuid.New(),
		UserID:         userID,
		Direction:      direction,
		StartIndex:     startIndex,
		EndIndex:       endIndex,
		TotalQuestions: len(order),
		Order:          order,
		CurrentIndex:   0,
		CorrectCount:   0,
		WrongCount:     0,
		Mistakes:       []Mistake{},
		Finished:       false,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks the session's structural invariants. It is called before
// every persist so a partially applied transition can never reach the store.
func (s *TestSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if s.UserID == uuid.Nil {
		return ErrSessionUserIDEmpty
	}

	if !s.Direction.IsValid() {
		return ErrSessionDirection
	}

	if s.StartIndex < 0 || s.StartIndex > s.EndIndex {
		return ErrSessionRangeInvalid
	}

	if len(s.Order) != s.TotalQuestions {
		return ErrSessionOrderMismatch
	}

	seen := make(map[uuid.UUID]struct{}, len(s.Order))
	for _, id := range s.Order {
		if _, dup := seen[id]; dup {
			return ErrSessionOrderDuplicate
		}
		seen[id] = struct{}{}
	}

	if s.CurrentIndex < 0 || s.CurrentIndex > s.TotalQuestions {
		return ErrSessionCursorRange
	}

	if s.CorrectCount+s.WrongCount != s.CurrentIndex {
		return ErrSessionCountMismatch
	}

	if len(s.Mistakes) != s.WrongCount {
		return ErrSessionMistakeCount
	}

	if s.CurrentIndex == s.TotalQuestions && !s.Finished {
		return ErrSessionNotFinished
	}

	return nil
}

// IsExhausted reports whether the cursor has reached the end of the order.
// An exhausted session must be finished; callers observing an exhausted but
// unfinished record normalize it with MarkFinished before proceeding.
func (s *TestSession) IsExhausted() bool {
	return s.CurrentIndex >= s.TotalQuestions
}

// CurrentWordID returns the word ID of the next unanswered question.
// Returns false if the session is exhausted.
func (s *TestSession) CurrentWordID() (uuid.UUID, bool) {
	if s.IsExhausted() {
		return uuid.Nil, false
	}
	return s.Order[s.CurrentIndex], true
}

// PromptAndExpected resolves which side of the word is shown and which is
// expected for this session's direction.
func (s *TestSession) PromptAndExpected(word *Word) (prompt, expected string) {
	if s.Direction == DirectionSourceToTarget {
		return word.SourceText, word.TargetText
	}
	return word.TargetText, word.SourceText
}

// NormalizeAnswer prepares an answer for grading: surrounding whitespace is
// trimmed and the text is lowercased. Grading is exact equality of the
// normalized forms, no partial credit.
func NormalizeAnswer(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// ApplyAnswer grades the provided answer against the current question's word
// and advances the cursor. On a wrong answer the mistake is appended with the
// provided text trimmed. When the cursor reaches the end the session flips to
// finished. Returns whether the answer was correct.
//
// The caller persists the resulting state in a single atomic update.
func (s *TestSession) ApplyAnswer(word *Word, provided string) bool {
	prompt, expected := s.PromptAndExpected(word)

	correct := NormalizeAnswer(provided) == NormalizeAnswer(expected)
	if correct {
		s.CorrectCount++
	} else {
		s.WrongCount++
		s.Mistakes = append(s.Mistakes, Mistake{
			Prompt:   prompt,
			Expected: expected,
			Provided: strings.TrimSpace(provided),
		})
	}

	s.CurrentIndex++
	if s.IsExhausted() {
		s.Finished = true
	}
	s.UpdatedAt = time.Now().UTC()

	return correct
}

// MarkFinished flips the session to its terminal state. The cursor and
// counters are left untouched, so a force-finished session simply reflects
// the answers given so far. Returns true if the call changed anything.
func (s *TestSession) MarkFinished() bool {
	if s.Finished {
		return false
	}
	s.Finished = true
	s.UpdatedAt = time.Now().UTC()
	return true
}

// Percentage returns the share of correct answers over the total question
// count, rounded to two decimal places. A zero-question session scores 0.0.
func (s *TestSession) Percentage() float64 {
	if s.TotalQuestions == 0 {
		return 0.0
	}
	return roundTwoDecimals(float64(s.CorrectCount) / float64(s.TotalQuestions) * 100)
}
