// Package main implements the entry point for the dicttrainer API server,
// which stores users' vocabulary word pairs and runs randomized translation
// test sessions over them.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shamshodbekdevops/dicttrainer/internal/config"
	"github.com/shamshodbekdevops/dicttrainer/internal/platform/logger"
	"github.com/shamshodbekdevops/dicttrainer/internal/platform/postgres"
	"github.com/shamshodbekdevops/dicttrainer/internal/platform/sqlite"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/auth"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/quiz"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

const shutdownTimeout = 10 * time.Second

// application holds the initialized dependencies of the server.
type application struct {
	config       *config.Config
	logger       *slog.Logger
	db           *sql.DB
	wordStore    store.WordStore
	sessionStore store.TestSessionStore
	quizService  quiz.QuizService
	jwtService   auth.JWTService
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run initializes the application and serves HTTP until a shutdown signal
// arrives.
func run() error {
	app, err := initializeApp()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.db.Close(); closeErr != nil {
			app.logger.Error("failed to close database", slog.Any("error", closeErr))
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:      app.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening",
			slog.Int("port", app.config.Server.Port),
			slog.String("driver", app.config.Database.Driver))
		if serveErr := server.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	app.logger.Info("server stopped")
	return nil
}

// initializeApp loads configuration and sets up application components.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver))

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db, cfg.Database.Driver, appLogger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app := &application{
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	switch cfg.Database.Driver {
	case "postgres":
		app.wordStore = postgres.NewPostgresWordStore(db, appLogger)
		app.sessionStore = postgres.NewPostgresTestSessionStore(db, appLogger)
	case "sqlite":
		app.wordStore = sqlite.NewSQLiteWordStore(db, appLogger)
		app.sessionStore = sqlite.NewSQLiteTestSessionStore(db, appLogger)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	app.quizService = quiz.NewQuizService(app.wordStore, app.sessionStore, appLogger)

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	return app, nil
}

// openDatabase opens a connection pool for the configured driver and
// verifies connectivity.
func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.URL)
	case "postgres":
		db, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
