package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/api/shared"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/platform/logger"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

// WordHandler handles word CRUD HTTP requests. The store layer is thin enough
// that no intermediate service sits between it and the handlers.
type WordHandler struct {
	wordStore store.WordStore
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewWordHandler creates a new WordHandler.
func NewWordHandler(wordStore store.WordStore, logger *slog.Logger) *WordHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for WordHandler")
	}

	return &WordHandler{
		wordStore: wordStore,
		validate:  validator.New(),
		logger:    logger.With(slog.String("component", "word_handler")),
	}
}

// CreateWordRequest represents the request body for creating a word pair.
type CreateWordRequest struct {
	SourceText string `json:"source_text" validate:"required"`
	TargetText string `json:"target_text" validate:"required"`
}

// ListWordsResponse wraps the ordered word list.
type ListWordsResponse struct {
	Words []*domain.Word `json:"words"`
	Count int            `json:"count"`
}

// CreateWord handles POST /words requests. The word's position is assigned by
// the store, appending to the end of the user's list.
func (h *WordHandler) CreateWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	// NewWord only fails on field validation; the message names the field.
	word, err := domain.NewWord(userID, req.SourceText, req.TargetText, 0)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.wordStore.Create(r.Context(), word); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("word created",
		slog.String("user_id", userID.String()),
		slog.String("word_id", word.ID.String()),
		slog.Int("position", word.Position))
	shared.RespondWithJSON(w, r, http.StatusCreated, word)
}

// ListWords handles GET /words requests, returning the user's words in
// position order.
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	words, err := h.wordStore.ListByUser(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if words == nil {
		words = []*domain.Word{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListWordsResponse{
		Words: words,
		Count: len(words),
	})
}

// DeleteWord handles DELETE /words/{id} requests. Deleting a word leaves a
// hole in the position sequence; ranges are index-based so this is harmless.
func (h *WordHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	wordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid word ID")
		return
	}

	if err := h.wordStore.Delete(r.Context(), userID, wordID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("word deleted",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()))
	w.WriteHeader(http.StatusNoContent)
}
