package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/quiz"
)

// MockQuizService implements quiz.QuizService for testing
type MockQuizService struct {
	// Custom behavior functions
	StartSessionFn  func(ctx context.Context, userID uuid.UUID, direction domain.Direction, start, end int) (*quiz.StartResult, error)
	GetQuestionFn   func(ctx context.Context, userID, sessionID uuid.UUID) (*quiz.QuestionView, error)
	SubmitAnswerFn  func(ctx context.Context, userID, sessionID uuid.UUID, answer string) (*quiz.AnswerResult, error)
	FinishSessionFn func(ctx context.Context, userID, sessionID uuid.UUID) (*quiz.Summary, error)

	// Default response values
	StartResult  *quiz.StartResult
	QuestionView *quiz.QuestionView
	AnswerResult *quiz.AnswerResult
	Summary      *quiz.Summary
	Err          error

	// Call tracking for verification
	StartSessionCalls struct {
		mu         sync.Mutex
		Count      int
		UserIDs    []uuid.UUID
		Directions []domain.Direction
		Starts     []int
		Ends       []int
	}

	SubmitAnswerCalls struct {
		mu         sync.Mutex
		Count      int
		UserIDs    []uuid.UUID
		SessionIDs []uuid.UUID
		Answers    []string
	}

	GetQuestionCalls struct {
		mu         sync.Mutex
		Count      int
		SessionIDs []uuid.UUID
	}

	FinishSessionCalls struct {
		mu         sync.Mutex
		Count      int
		SessionIDs []uuid.UUID
	}
}

// StartSession implements the quiz.QuizService interface
func (m *MockQuizService) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	direction domain.Direction,
	start, end int,
) (*quiz.StartResult, error) {
	m.StartSessionCalls.mu.Lock()
	m.StartSessionCalls.Count++
	m.StartSessionCalls.UserIDs = append(m.StartSessionCalls.UserIDs, userID)
	m.StartSessionCalls.Directions = append(m.StartSessionCalls.Directions, direction)
	m.StartSessionCalls.Starts = append(m.StartSessionCalls.Starts, start)
	m.StartSessionCalls.Ends = append(m.StartSessionCalls.Ends, end)
	m.StartSessionCalls.mu.Unlock()

	if m.StartSessionFn != nil {
		return m.StartSessionFn(ctx, userID, direction, start, end)
	}

	return m.StartResult, m.Err
}

// GetQuestion implements the quiz.QuizService interface
func (m *MockQuizService) GetQuestion(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*quiz.QuestionView, error) {
	m.GetQuestionCalls.mu.Lock()
	m.GetQuestionCalls.Count++
	m.GetQuestionCalls.SessionIDs = append(m.GetQuestionCalls.SessionIDs, sessionID)
	m.GetQuestionCalls.mu.Unlock()

	if m.GetQuestionFn != nil {
		return m.GetQuestionFn(ctx, userID, sessionID)
	}

	return m.QuestionView, m.Err
}

// SubmitAnswer implements the quiz.QuizService interface
func (m *MockQuizService) SubmitAnswer(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answer string,
) (*quiz.AnswerResult, error) {
	m.SubmitAnswerCalls.mu.Lock()
	m.SubmitAnswerCalls.Count++
	m.SubmitAnswerCalls.UserIDs = append(m.SubmitAnswerCalls.UserIDs, userID)
	m.SubmitAnswerCalls.SessionIDs = append(m.SubmitAnswerCalls.SessionIDs, sessionID)
	m.SubmitAnswerCalls.Answers = append(m.SubmitAnswerCalls.Answers, answer)
	m.SubmitAnswerCalls.mu.Unlock()

	if m.SubmitAnswerFn != nil {
		return m.SubmitAnswerFn(ctx, userID, sessionID, answer)
	}

	return m.AnswerResult, m.Err
}

// FinishSession implements the quiz.QuizService interface
func (m *MockQuizService) FinishSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*quiz.Summary, error) {
	m.FinishSessionCalls.mu.Lock()
	m.FinishSessionCalls.Count++
	m.FinishSessionCalls.SessionIDs = append(m.FinishSessionCalls.SessionIDs, sessionID)
	m.FinishSessionCalls.mu.Unlock()

	if m.FinishSessionFn != nil {
		return m.FinishSessionFn(ctx, userID, sessionID)
	}

	return m.Summary, m.Err
}

// Compile-time check that MockQuizService implements quiz.QuizService
var _ quiz.QuizService = (*MockQuizService)(nil)
