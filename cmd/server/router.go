package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shamshodbekdevops/dicttrainer/internal/api"
	apiMiddleware "github.com/shamshodbekdevops/dicttrainer/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	quizHandler := api.NewQuizHandler(app.quizService, app.logger)
	wordHandler := api.NewWordHandler(app.wordStore, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Word list endpoints
			r.Post("/words", wordHandler.CreateWord)
			r.Get("/words", wordHandler.ListWords)
			r.Delete("/words/{id}", wordHandler.DeleteWord)

			// Test session endpoints
			r.Post("/test/start", quizHandler.StartTest)
			r.Get("/test/question", quizHandler.GetQuestion)
			r.Post("/test/next", quizHandler.NextQuestion)
			r.Post("/test/answer", quizHandler.SubmitAnswer)
			r.Post("/test/finish", quizHandler.FinishTest)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
