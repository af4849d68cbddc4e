package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamshodbekdevops/dicttrainer/internal/api"
	"github.com/shamshodbekdevops/dicttrainer/internal/api/shared"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/mocks"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/quiz"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest builds a request carrying the authenticated user ID, the way
// the auth middleware leaves it in the context.
func authedRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(dest))
}

func TestStartTest(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		sessionID := uuid.New()
		service := &mocks.MockQuizService{
			StartResult: &quiz.StartResult{
				SessionID:      sessionID,
				TotalWords:     10,
				TotalQuestions: 3,
				Direction:      domain.DirectionSourceToTarget,
				Start:          0,
				End:            2,
			},
		}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/start",
			`{"direction":"source_to_target","start":0,"end":2}`, userID)
		rr := httptest.NewRecorder()
		handler.StartTest(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var result quiz.StartResult
		decodeBody(t, rr, &result)
		assert.Equal(t, sessionID, result.SessionID)
		assert.Equal(t, 3, result.TotalQuestions)

		// A zero start must survive decoding and reach the service.
		require.Equal(t, 1, service.StartSessionCalls.Count)
		assert.Equal(t, 0, service.StartSessionCalls.Starts[0])
		assert.Equal(t, 2, service.StartSessionCalls.Ends[0])
		assert.Equal(t, domain.DirectionSourceToTarget, service.StartSessionCalls.Directions[0])
	})

	t.Run("missing direction", func(t *testing.T) {
		service := &mocks.MockQuizService{}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/start", `{"start":0,"end":2}`, userID)
		rr := httptest.NewRecorder()
		handler.StartTest(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, 0, service.StartSessionCalls.Count)
	})

	t.Run("unsupported direction value", func(t *testing.T) {
		handler := api.NewQuizHandler(&mocks.MockQuizService{}, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/start",
			`{"direction":"sideways","start":0,"end":2}`, userID)
		rr := httptest.NewRecorder()
		handler.StartTest(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing start", func(t *testing.T) {
		handler := api.NewQuizHandler(&mocks.MockQuizService{}, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/start",
			`{"direction":"source_to_target","end":2}`, userID)
		rr := httptest.NewRecorder()
		handler.StartTest(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("range out of bounds names the maximum", func(t *testing.T) {
		service := &mocks.MockQuizService{Err: &quiz.RangeOutOfBoundsError{MaxEnd: 4}}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/start",
			`{"direction":"source_to_target","start":0,"end":9}`, userID)
		rr := httptest.NewRecorder()
		handler.StartTest(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var errResp shared.ErrorResponse
		decodeBody(t, rr, &errResp)
		assert.Equal(t, "range end must be <= 4", errResp.Error)
	})

	t.Run("missing user", func(t *testing.T) {
		handler := api.NewQuizHandler(&mocks.MockQuizService{}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/test/start",
			strings.NewReader(`{"direction":"source_to_target","start":0,"end":2}`))
		rr := httptest.NewRecorder()
		handler.StartTest(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGetQuestion(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("success", func(t *testing.T) {
		service := &mocks.MockQuizService{
			QuestionView: &quiz.QuestionView{
				SessionID: sessionID,
				Direction: domain.DirectionSourceToTarget,
				Question:  "apple",
				Progress:  1,
				Total:     3,
			},
		}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodGet, "/api/test/question?session_id="+sessionID.String(), "", userID)
		rr := httptest.NewRecorder()
		handler.GetQuestion(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var view quiz.QuestionView
		decodeBody(t, rr, &view)
		assert.Equal(t, "apple", view.Question)
		assert.False(t, view.Finished)
		assert.Equal(t, 1, view.Progress)
	})

	t.Run("finished marker", func(t *testing.T) {
		service := &mocks.MockQuizService{QuestionView: &quiz.QuestionView{Finished: true}}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodGet, "/api/test/question?session_id="+sessionID.String(), "", userID)
		rr := httptest.NewRecorder()
		handler.GetQuestion(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var view quiz.QuestionView
		decodeBody(t, rr, &view)
		assert.True(t, view.Finished)
		assert.Empty(t, view.Question)
	})

	t.Run("malformed session id", func(t *testing.T) {
		handler := api.NewQuizHandler(&mocks.MockQuizService{}, testLogger())

		req := authedRequest(http.MethodGet, "/api/test/question?session_id=not-a-uuid", "", userID)
		rr := httptest.NewRecorder()
		handler.GetQuestion(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		service := &mocks.MockQuizService{Err: quiz.ErrSessionNotFound}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodGet, "/api/test/question?session_id="+sessionID.String(), "", userID)
		rr := httptest.NewRecorder()
		handler.GetQuestion(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestNextQuestion(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	sessionID := uuid.New()

	service := &mocks.MockQuizService{
		QuestionView: &quiz.QuestionView{SessionID: sessionID, Question: "house", Progress: 2, Total: 3},
	}
	handler := api.NewQuizHandler(service, testLogger())

	req := authedRequest(http.MethodPost, "/api/test/next",
		`{"session_id":"`+sessionID.String()+`"}`, userID)
	rr := httptest.NewRecorder()
	handler.NextQuestion(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var view quiz.QuestionView
	decodeBody(t, rr, &view)
	assert.Equal(t, "house", view.Question)
	assert.Equal(t, 1, service.GetQuestionCalls.Count)
}

func TestSubmitAnswer(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("success", func(t *testing.T) {
		service := &mocks.MockQuizService{
			AnswerResult: &quiz.AnswerResult{Correct: true, Expected: "olma", Progress: 1, Total: 3},
		}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/answer",
			`{"session_id":"`+sessionID.String()+`","answer":"olma"}`, userID)
		rr := httptest.NewRecorder()
		handler.SubmitAnswer(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var result quiz.AnswerResult
		decodeBody(t, rr, &result)
		assert.True(t, result.Correct)
		assert.Equal(t, "olma", result.Expected)

		require.Equal(t, 1, service.SubmitAnswerCalls.Count)
		assert.Equal(t, "olma", service.SubmitAnswerCalls.Answers[0])
	})

	t.Run("blank answer is forwarded for grading", func(t *testing.T) {
		service := &mocks.MockQuizService{
			AnswerResult: &quiz.AnswerResult{Correct: false, Expected: "olma", Progress: 1, Total: 3},
		}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/answer",
			`{"session_id":"`+sessionID.String()+`","answer":""}`, userID)
		rr := httptest.NewRecorder()
		handler.SubmitAnswer(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, 1, service.SubmitAnswerCalls.Count)
		assert.Equal(t, "", service.SubmitAnswerCalls.Answers[0])
	})

	t.Run("finished session carries the terminal marker", func(t *testing.T) {
		service := &mocks.MockQuizService{Err: quiz.ErrSessionFinished}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/answer",
			`{"session_id":"`+sessionID.String()+`","answer":"olma"}`, userID)
		rr := httptest.NewRecorder()
		handler.SubmitAnswer(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var errResp shared.ErrorResponse
		decodeBody(t, rr, &errResp)
		require.NotNil(t, errResp.Finished)
		assert.True(t, *errResp.Finished)
	})

	t.Run("lost race maps to conflict", func(t *testing.T) {
		service := &mocks.MockQuizService{Err: store.ErrConcurrentModification}
		handler := api.NewQuizHandler(service, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/answer",
			`{"session_id":"`+sessionID.String()+`","answer":"olma"}`, userID)
		rr := httptest.NewRecorder()
		handler.SubmitAnswer(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing session id", func(t *testing.T) {
		handler := api.NewQuizHandler(&mocks.MockQuizService{}, testLogger())

		req := authedRequest(http.MethodPost, "/api/test/answer", `{"answer":"olma"}`, userID)
		rr := httptest.NewRecorder()
		handler.SubmitAnswer(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFinishTest(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	sessionID := uuid.New()

	service := &mocks.MockQuizService{
		Summary: &quiz.Summary{
			SessionID:      sessionID,
			TotalQuestions: 5,
			Correct:        4,
			Wrong:          1,
			Percentage:     80.0,
			Mistakes: []domain.Mistake{
				{Prompt: "house", Expected: "uy", Provided: "hovli"},
			},
		},
	}
	handler := api.NewQuizHandler(service, testLogger())

	req := authedRequest(http.MethodPost, "/api/test/finish",
		`{"session_id":"`+sessionID.String()+`"}`, userID)
	rr := httptest.NewRecorder()
	handler.FinishTest(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var summary quiz.Summary
	decodeBody(t, rr, &summary)
	assert.Equal(t, 80.0, summary.Percentage)
	require.Len(t, summary.Mistakes, 1)
	assert.Equal(t, "hovli", summary.Mistakes[0].Provided)
}
