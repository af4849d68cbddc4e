package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/platform/logger"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

// Verify interface compliance at compile time
var _ QuizService = (*quizServiceImpl)(nil)

// quizServiceImpl implements the QuizService interface.
type quizServiceImpl struct {
	words    store.WordStore
	sessions store.TestSessionStore
	shuffle  func(n int, swap func(i, j int)) // injectable for deterministic tests
	logger   *slog.Logger
}

// NewQuizService creates a new QuizService implementation backed by the
// given word and session stores.
func NewQuizService(
	words store.WordStore,
	sessions store.TestSessionStore,
	logger *slog.Logger,
) QuizService {
	if words == nil {
		panic("words store cannot be nil")
	}
	if sessions == nil {
		panic("sessions store cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &quizServiceImpl{
		words:    words,
		sessions: sessions,
		shuffle:  rand.Shuffle,
		logger:   logger.With(slog.String("component", "quiz_service")),
	}
}

// StartSession implements QuizService.StartSession.
func (s *quizServiceImpl) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	direction domain.Direction,
	start, end int,
) (*StartResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !direction.IsValid() {
		log.Debug("invalid direction for new session",
			slog.String("user_id", userID.String()),
			slog.String("direction", string(direction)))
		return nil, ErrInvalidDirection
	}

	words, err := s.words.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list words for new session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	totalWords := len(words)
	if totalWords == 0 {
		log.Debug("no words available for new session", slog.String("user_id", userID.String()))
		return nil, ErrNoWords
	}

	if end >= totalWords {
		log.Debug("range end out of bounds for new session",
			slog.String("user_id", userID.String()),
			slog.Int("end", end),
			slog.Int("max_end", totalWords-1))
		return nil, &RangeOutOfBoundsError{MaxEnd: totalWords - 1}
	}

	if start < 0 || end < 0 || start > end {
		log.Debug("invalid range for new session",
			slog.String("user_id", userID.String()),
			slog.Int("start", start),
			slog.Int("end", end))
		return nil, ErrInvalidRange
	}

	order := make([]uuid.UUID, 0, end-start+1)
	for _, word := range words[start : end+1] {
		order = append(order, word.ID)
	}
	if len(order) == 0 {
		return nil, ErrEmptyRange
	}

	// The shuffle happens exactly once; the resulting order is frozen into
	// the session record so the question sequence survives retries and polling.
	s.shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	session, err := domain.NewTestSession(userID, direction, start, end, order)
	if err != nil {
		return nil, fmt.Errorf("failed to build session: %w", err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error("failed to persist new session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("test session started",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("direction", string(direction)),
		slog.Int("total_questions", session.TotalQuestions))

	return &StartResult{
		SessionID:      session.ID,
		TotalWords:     totalWords,
		TotalQuestions: session.TotalQuestions,
		Direction:      direction,
		Start:          start,
		End:            end,
	}, nil
}

// GetQuestion implements QuizService.GetQuestion.
func (s *quizServiceImpl) GetQuestion(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*QuestionView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.getSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	finished, err := s.normalizeFinished(ctx, session)
	if err != nil {
		return nil, err
	}
	if finished {
		return &QuestionView{Finished: true}, nil
	}

	word, err := s.resolveCurrentWord(ctx, session)
	if err != nil {
		return nil, err
	}

	prompt, _ := session.PromptAndExpected(word)

	log.Debug("serving question",
		slog.String("session_id", session.ID.String()),
		slog.Int("progress", session.CurrentIndex+1),
		slog.Int("total", session.TotalQuestions))

	return &QuestionView{
		Finished:  false,
		SessionID: session.ID,
		Direction: session.Direction,
		Question:  prompt,
		Progress:  session.CurrentIndex + 1,
		Total:     session.TotalQuestions,
	}, nil
}

// SubmitAnswer implements QuizService.SubmitAnswer.
func (s *quizServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answer string,
) (*AnswerResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.getSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	finished, err := s.normalizeFinished(ctx, session)
	if err != nil {
		return nil, err
	}
	if finished {
		log.Debug("answer submitted to finished session",
			slog.String("session_id", session.ID.String()))
		return nil, ErrSessionFinished
	}

	word, err := s.resolveCurrentWord(ctx, session)
	if err != nil {
		return nil, err
	}

	_, expected := session.PromptAndExpected(word)
	correct := session.ApplyAnswer(word, answer)

	if err := s.sessions.Update(ctx, session); err != nil {
		if errors.Is(err, store.ErrConcurrentModification) {
			// Another call advanced the session first; the caller should
			// re-read and retry against the new state.
			return nil, err
		}
		log.Error("failed to persist answer",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return nil, fmt.Errorf("failed to persist answer: %w", err)
	}

	progress := session.CurrentIndex + 1
	if progress > session.TotalQuestions {
		progress = session.TotalQuestions
	}

	log.Debug("answer graded",
		slog.String("session_id", session.ID.String()),
		slog.Bool("correct", correct),
		slog.Int("current_index", session.CurrentIndex),
		slog.Bool("finished", session.Finished))

	return &AnswerResult{
		Correct:  correct,
		Expected: expected,
		Finished: session.Finished,
		Progress: progress,
		Total:    session.TotalQuestions,
	}, nil
}

// FinishSession implements QuizService.FinishSession.
func (s *quizServiceImpl) FinishSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*Summary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.getSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.MarkFinished() {
		if err := s.sessions.Update(ctx, session); err != nil {
			if errors.Is(err, store.ErrConcurrentModification) {
				return nil, err
			}
			log.Error("failed to persist session finish",
				slog.String("error", err.Error()),
				slog.String("session_id", session.ID.String()))
			return nil, fmt.Errorf("failed to finish session: %w", err)
		}
		log.Info("test session finished",
			slog.String("session_id", session.ID.String()),
			slog.Int("correct", session.CorrectCount),
			slog.Int("wrong", session.WrongCount))
	}

	return &Summary{
		SessionID:      session.ID,
		TotalQuestions: session.TotalQuestions,
		Correct:        session.CorrectCount,
		Wrong:          session.WrongCount,
		Percentage:     session.Percentage(),
		Mistakes:       session.Mistakes,
	}, nil
}

// getSession loads the session by its composite (owner, id) key, mapping the
// store's not-found to the service-level sentinel.
func (s *quizServiceImpl) getSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*domain.TestSession, error) {
	session, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// normalizeFinished is the shared guard-and-normalize step run at the start
// of every operation: a session observed with its cursor past the end is
// flipped to finished and that transition persisted before the operation's
// own logic proceeds. This keeps the terminal state consistent no matter
// which operation observes it first.
func (s *quizServiceImpl) normalizeFinished(
	ctx context.Context,
	session *domain.TestSession,
) (bool, error) {
	if session.Finished {
		return true, nil
	}
	if !session.IsExhausted() {
		return false, nil
	}

	session.MarkFinished()
	if err := s.sessions.Update(ctx, session); err != nil {
		if errors.Is(err, store.ErrConcurrentModification) {
			return false, err
		}
		return false, fmt.Errorf("failed to persist finished state: %w", err)
	}
	return true, nil
}

// resolveCurrentWord looks up the word behind the session's current order
// entry. A missing word here means the frozen order references a word that
// was deleted externally: a data-consistency fault logged at error level,
// unlike an ordinary not-found.
func (s *quizServiceImpl) resolveCurrentWord(
	ctx context.Context,
	session *domain.TestSession,
) (*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	wordID, ok := session.CurrentWordID()
	if !ok {
		return nil, ErrSessionFinished
	}

	word, err := s.words.GetByID(ctx, session.UserID, wordID)
	if err != nil {
		if errors.Is(err, store.ErrWordNotFound) {
			log.Error("session order references missing word",
				slog.String("session_id", session.ID.String()),
				slog.String("word_id", wordID.String()),
				slog.String("user_id", session.UserID.String()))
			return nil, ErrWordNotFound
		}
		return nil, fmt.Errorf("failed to resolve word: %w", err)
	}
	return word, nil
}
