// Package api provides HTTP handlers for the API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/api/shared"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/platform/logger"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/quiz"
)

// QuizHandler handles test-session HTTP requests.
type QuizHandler struct {
	quizService quiz.QuizService
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService quiz.QuizService, logger *slog.Logger) *QuizHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for QuizHandler")
	}

	return &QuizHandler{
		quizService: quizService,
		validate:    validator.New(),
		logger:      logger.With(slog.String("component", "quiz_handler")),
	}
}

// StartTestRequest represents the request body for starting a test session.
// Start and End are pointers so a zero position survives the required check.
type StartTestRequest struct {
	Direction string `json:"direction" validate:"required,oneof=source_to_target target_to_source"`
	Start     *int   `json:"start"     validate:"required,min=0"`
	End       *int   `json:"end"       validate:"required,min=0"`
}

// SessionRequest represents a request body addressing an existing session.
type SessionRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

// AnswerRequest represents the request body for submitting an answer.
// The answer itself may be blank; a blank answer is simply graded wrong.
type AnswerRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Answer    string `json:"answer"`
}

// StartTest handles POST /test/start requests.
// It creates a new shuffled session over the requested word range.
func (h *QuizHandler) StartTest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req StartTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.quizService.StartSession(
		r.Context(),
		userID,
		domain.Direction(req.Direction),
		*req.Start,
		*req.End,
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("test session started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", result.SessionID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, result)
}

// GetQuestion handles GET /test/question requests.
// It returns the current question, or the finished marker once the session
// is exhausted. It never advances the session.
func (h *QuizHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return
	}

	h.respondWithQuestion(w, r, userID, sessionID)
}

// NextQuestion handles POST /test/next requests.
// Identical contract to GetQuestion: serving the "next" prompt does not
// advance the cursor either; only SubmitAnswer does.
func (h *QuizHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	sessionID, ok := h.decodeSessionRequest(w, r)
	if !ok {
		return
	}

	h.respondWithQuestion(w, r, userID, sessionID)
}

// SubmitAnswer handles POST /test/answer requests.
// It grades the answer against the current question and advances the session.
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	sessionID := uuid.MustParse(req.SessionID)

	result, err := h.quizService.SubmitAnswer(r.Context(), userID, sessionID, req.Answer)

	// Answering a finished session is a normal terminal condition: the 400
	// response carries finished:true so clients can move on to the summary.
	if errors.Is(err, quiz.ErrSessionFinished) {
		finished := true
		shared.RespondWithJSON(w, r, http.StatusBadRequest, shared.ErrorResponse{
			Error:    GetSafeErrorMessage(err),
			TraceID:  shared.GetTraceID(r.Context()),
			Finished: &finished,
		})
		return
	}

	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("answer submitted",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
		slog.Bool("correct", result.Correct))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// FinishTest handles POST /test/finish requests.
// It finalizes the session (idempotently) and returns the score summary.
func (h *QuizHandler) FinishTest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	sessionID, ok := h.decodeSessionRequest(w, r)
	if !ok {
		return
	}

	summary, err := h.quizService.FinishSession(r.Context(), userID, sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("test session summary served",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
		slog.Float64("percentage", summary.Percentage))
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// respondWithQuestion serves the shared question/finished-marker contract of
// GetQuestion and NextQuestion.
func (h *QuizHandler) respondWithQuestion(
	w http.ResponseWriter,
	r *http.Request,
	userID, sessionID uuid.UUID,
) {
	view, err := h.quizService.GetQuestion(r.Context(), userID, sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// decodeSessionRequest decodes and validates a body carrying a session ID.
// On failure it writes the error response and returns false.
func (h *QuizHandler) decodeSessionRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return uuid.Nil, false
	}
	if err := h.validate.Struct(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return uuid.Nil, false
	}
	return uuid.MustParse(req.SessionID), true
}

// userIDFromContext extracts the authenticated user ID set by the auth middleware.
func userIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
