package quiz_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/mocks"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/quiz"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedWords builds an ordered word list for one user plus a lookup from
// prompt text to the expected answer, so tests can answer correctly without
// knowing the shuffled order.
func seedWords(userID uuid.UUID, pairs [][2]string) ([]*domain.Word, map[string]string) {
	words := make([]*domain.Word, 0, len(pairs))
	expectedByPrompt := make(map[string]string, len(pairs))
	for i, pair := range pairs {
		words = append(words, &domain.Word{
			ID:         uuid.New(),
			UserID:     userID,
			SourceText: pair[0],
			TargetText: pair[1],
			Position:   i,
		})
		expectedByPrompt[pair[0]] = pair[1]
	}
	return words, expectedByPrompt
}

func newTestService(words []*domain.Word) (quiz.QuizService, *mocks.MockTestSessionStore) {
	wordStore := &mocks.MockWordStore{Words: words}
	sessionStore := &mocks.MockTestSessionStore{}
	return quiz.NewQuizService(wordStore, sessionStore, testLogger()), sessionStore
}

func TestStartSessionValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()
	words, _ := seedWords(userID, [][2]string{
		{"apple", "olma"}, {"house", "uy"}, {"water", "suv"},
		{"book", "kitob"}, {"road", "yo'l"},
	})

	t.Run("invalid direction", func(t *testing.T) {
		service, _ := newTestService(words)
		_, err := service.StartSession(ctx, userID, domain.Direction("sideways"), 0, 4)
		assert.ErrorIs(t, err, quiz.ErrInvalidDirection)
	})

	t.Run("no words", func(t *testing.T) {
		service, _ := newTestService(nil)
		_, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 0, 4)
		assert.ErrorIs(t, err, quiz.ErrNoWords)
	})

	t.Run("end out of bounds names the maximum", func(t *testing.T) {
		service, _ := newTestService(words)
		_, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 0, 5)
		require.ErrorIs(t, err, quiz.ErrRangeOutOfBounds)

		var rangeErr *quiz.RangeOutOfBoundsError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, 4, rangeErr.MaxEnd)
	})

	t.Run("inverted range", func(t *testing.T) {
		service, _ := newTestService(words)
		_, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 3, 1)
		assert.ErrorIs(t, err, quiz.ErrInvalidRange)
	})

	t.Run("negative start", func(t *testing.T) {
		service, _ := newTestService(words)
		_, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, -1, 2)
		assert.ErrorIs(t, err, quiz.ErrInvalidRange)
	})
}

func TestStartSessionFreezesShuffledOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()
	words, _ := seedWords(userID, [][2]string{
		{"apple", "olma"}, {"house", "uy"}, {"water", "suv"},
		{"book", "kitob"}, {"road", "yo'l"},
	})
	service, sessionStore := newTestService(words)

	result, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 5, result.TotalWords)

	// The stored order must be a permutation of exactly the ranged words.
	session, err := sessionStore.Get(ctx, userID, result.SessionID)
	require.NoError(t, err)
	require.Len(t, session.Order, 3)

	want := map[uuid.UUID]bool{words[1].ID: true, words[2].ID: true, words[3].ID: true}
	seen := map[uuid.UUID]bool{}
	for _, id := range session.Order {
		assert.True(t, want[id], "order contains word outside the range")
		assert.False(t, seen[id], "order contains a duplicate")
		seen[id] = true
	}

	// Reading the question twice serves the same word: the order is frozen
	// and reads never advance the cursor.
	first, err := service.GetQuestion(ctx, userID, result.SessionID)
	require.NoError(t, err)
	second, err := service.GetQuestion(ctx, userID, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.Question, second.Question)
	assert.Equal(t, 1, first.Progress)
	assert.Equal(t, 1, second.Progress)
}

func TestFullRunAllCorrect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()
	words, expectedByPrompt := seedWords(userID, [][2]string{
		{"apple", "olma"}, {"house", "uy"}, {"water", "suv"},
		{"book", "kitob"}, {"road", "yo'l"},
	})
	service, _ := newTestService(words)

	result, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 0, 4)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		view, err := service.GetQuestion(ctx, userID, result.SessionID)
		require.NoError(t, err)
		require.False(t, view.Finished)
		assert.Equal(t, i+1, view.Progress)

		answer, err := service.SubmitAnswer(ctx, userID, result.SessionID, expectedByPrompt[view.Question])
		require.NoError(t, err)
		assert.True(t, answer.Correct)
	}

	// The session flipped to finished on the last answer; the question
	// endpoint now serves the terminal marker.
	view, err := service.GetQuestion(ctx, userID, result.SessionID)
	require.NoError(t, err)
	assert.True(t, view.Finished)

	summary, err := service.FinishSession(ctx, userID, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Correct)
	assert.Equal(t, 0, summary.Wrong)
	assert.Equal(t, 100.0, summary.Percentage)
	assert.Empty(t, summary.Mistakes)
}

func TestSubmitAnswerGrading(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()
	words, _ := seedWords(userID, [][2]string{{"apple", "olma"}})
	service, _ := newTestService(words)

	t.Run("case and whitespace are ignored", func(t *testing.T) {
		result, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 0, 0)
		require.NoError(t, err)

		answer, err := service.SubmitAnswer(ctx, userID, result.SessionID, "  OLMA ")
		require.NoError(t, err)
		assert.True(t, answer.Correct)
		assert.True(t, answer.Finished)
		assert.Equal(t, 1, answer.Progress)
	})

	t.Run("wrong answer records the mistake", func(t *testing.T) {
		result, err := service.StartSession(ctx, userID, domain.DirectionTargetToSource, 0, 0)
		require.NoError(t, err)

		answer, err := service.SubmitAnswer(ctx, userID, result.SessionID, " anor ")
		require.NoError(t, err)
		assert.False(t, answer.Correct)
		assert.Equal(t, "apple", answer.Expected)

		summary, err := service.FinishSession(ctx, userID, result.SessionID)
		require.NoError(t, err)
		require.Len(t, summary.Mistakes, 1)
		assert.Equal(t, domain.Mistake{
			Prompt:   "olma",
			Expected: "apple",
			Provided: "anor",
		}, summary.Mistakes[0])
		assert.Equal(t, 0.0, summary.Percentage)
	})

	t.Run("answer after finish is rejected with the terminal sentinel", func(t *testing.T) {
		result, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 0, 0)
		require.NoError(t, err)

		_, err = service.SubmitAnswer(ctx, userID, result.SessionID, "olma")
		require.NoError(t, err)

		_, err = service.SubmitAnswer(ctx, userID, result.SessionID, "olma")
		assert.ErrorIs(t, err, quiz.ErrSessionFinished)
	})
}

func TestFinishSessionIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()
	words, _ := seedWords(userID, [][2]string{
		{"apple", "olma"}, {"house", "uy"}, {"water", "suv"},
	})
	service, sessionStore := newTestService(words)

	result, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 0, 2)
	require.NoError(t, err)

	// Force-finish mid-run: the summary reflects only the answers given.
	first, err := service.FinishSession(ctx, userID, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Correct)
	assert.Equal(t, 3, first.TotalQuestions)
	writesAfterFirst := sessionStore.UpdateCount

	second, err := service.FinishSession(ctx, userID, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, writesAfterFirst, sessionStore.UpdateCount,
		"second finish must not write")
}

func TestSessionOwnershipScoping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()
	otherUser := uuid.New()
	words, _ := seedWords(userID, [][2]string{{"apple", "olma"}})
	service, _ := newTestService(words)

	result, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 0, 0)
	require.NoError(t, err)

	// Another user addressing the session sees plain not-found.
	_, err = service.GetQuestion(ctx, otherUser, result.SessionID)
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)
	_, err = service.SubmitAnswer(ctx, otherUser, result.SessionID, "olma")
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)
	_, err = service.FinishSession(ctx, otherUser, result.SessionID)
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)
}

func TestSubmitAnswerConflictPassthrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()
	words, _ := seedWords(userID, [][2]string{{"apple", "olma"}})

	wordStore := &mocks.MockWordStore{Words: words}
	sessionStore := &mocks.MockTestSessionStore{}
	service := quiz.NewQuizService(wordStore, sessionStore, testLogger())

	result, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 0, 0)
	require.NoError(t, err)

	// A lost optimistic-concurrency race surfaces unchanged so the API
	// layer can map it to a conflict status.
	sessionStore.UpdateFn = func(ctx context.Context, session *domain.TestSession) error {
		return store.ErrConcurrentModification
	}
	_, err = service.SubmitAnswer(ctx, userID, result.SessionID, "olma")
	assert.ErrorIs(t, err, store.ErrConcurrentModification)
}

func TestSubmitAnswerVanishedWord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()
	words, _ := seedWords(userID, [][2]string{{"apple", "olma"}})

	wordStore := &mocks.MockWordStore{Words: words}
	sessionStore := &mocks.MockTestSessionStore{}
	service := quiz.NewQuizService(wordStore, sessionStore, testLogger())

	result, err := service.StartSession(ctx, userID, domain.DirectionSourceToTarget, 0, 0)
	require.NoError(t, err)

	// The word behind the frozen order entry was deleted externally.
	wordStore.GetByIDFn = func(ctx context.Context, userID, id uuid.UUID) (*domain.Word, error) {
		return nil, store.ErrWordNotFound
	}
	_, err = service.SubmitAnswer(ctx, userID, result.SessionID, "olma")
	assert.ErrorIs(t, err, quiz.ErrWordNotFound)
}

func TestGetQuestionStoreFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	sessionStore := &mocks.MockTestSessionStore{
		GetFn: func(ctx context.Context, userID, id uuid.UUID) (*domain.TestSession, error) {
			return nil, errors.New("connection reset")
		},
	}
	service := quiz.NewQuizService(&mocks.MockWordStore{}, sessionStore, testLogger())

	_, err := service.GetQuestion(ctx, userID, uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, quiz.ErrSessionNotFound)
}
