package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/platform/logger"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

// SQLiteTestSessionStore implements the store.TestSessionStore interface
// using an embedded sqlite database. The frozen question order and the
// mistake list are stored as JSON text.
type SQLiteTestSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteTestSessionStore creates a new sqlite implementation of the TestSessionStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteTestSessionStore(db store.DBTX, logger *slog.Logger) *SQLiteTestSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteTestSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "test_session_store")),
	}
}

// Ensure SQLiteTestSessionStore implements store.TestSessionStore interface
var _ store.TestSessionStore = (*SQLiteTestSessionStore)(nil)

// Create implements store.TestSessionStore.Create
func (s *SQLiteTestSessionStore) Create(ctx context.Context, session *domain.TestSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	orderJSON, err := json.Marshal(session.Order)
	if err != nil {
		return fmt.Errorf("failed to encode session order: %w", err)
	}
	mistakesJSON, err := marshalMistakes(session.Mistakes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO test_sessions (
			id, user_id, direction, start_index, end_index, total_questions,
			word_order, current_index, correct_count, wrong_count, mistakes,
			finished, version, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		string(session.Direction),
		session.StartIndex,
		session.EndIndex,
		session.TotalQuestions,
		orderJSON,
		session.CurrentIndex,
		session.CorrectCount,
		session.WrongCount,
		mistakesJSON,
		session.Finished,
		session.Version,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create test session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()))
		return err
	}

	log.Info("test session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.Int("total_questions", session.TotalQuestions))
	return nil
}

// Get implements store.TestSessionStore.Get
func (s *SQLiteTestSessionStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.TestSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, direction, start_index, end_index, total_questions,
		       word_order, current_index, correct_count, wrong_count, mistakes,
		       finished, version, created_at, updated_at
		FROM test_sessions
		WHERE id = ? AND user_id = ?
	`

	var (
		session      domain.TestSession
		direction    string
		orderJSON    []byte
		mistakesJSON []byte
	)

	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&session.ID,
		&session.UserID,
		&direction,
		&session.StartIndex,
		&session.EndIndex,
		&session.TotalQuestions,
		&orderJSON,
		&session.CurrentIndex,
		&session.CorrectCount,
		&session.WrongCount,
		&mistakesJSON,
		&session.Finished,
		&session.Version,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("test session not found",
				slog.String("session_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrSessionNotFound
		}
		return nil, err
	}

	session.Direction = domain.Direction(direction)
	if err := json.Unmarshal(orderJSON, &session.Order); err != nil {
		return nil, fmt.Errorf("failed to decode session order: %w", err)
	}
	if err := json.Unmarshal(mistakesJSON, &session.Mistakes); err != nil {
		return nil, fmt.Errorf("failed to decode session mistakes: %w", err)
	}
	if session.Order == nil {
		session.Order = []uuid.UUID{}
	}
	if session.Mistakes == nil {
		session.Mistakes = []domain.Mistake{}
	}

	return &session, nil
}

// Update implements store.TestSessionStore.Update
// Same contract as the postgres backend: a full-record write guarded by the
// version column, with a follow-up existence check to tell a lost race apart
// from a vanished session.
func (s *SQLiteTestSessionStore) Update(ctx context.Context, session *domain.TestSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during update",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	mistakesJSON, err := marshalMistakes(session.Mistakes)
	if err != nil {
		return err
	}

	query := `
		UPDATE test_sessions
		SET current_index = ?,
		    correct_count = ?,
		    wrong_count = ?,
		    mistakes = ?,
		    finished = ?,
		    version = version + 1,
		    updated_at = ?
		WHERE id = ? AND user_id = ? AND version = ?
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		session.CurrentIndex,
		session.CorrectCount,
		session.WrongCount,
		mistakesJSON,
		session.Finished,
		session.UpdatedAt,
		session.ID,
		session.UserID,
		session.Version,
	)
	if err != nil {
		log.Error("failed to update test session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var exists bool
		checkQuery := `SELECT EXISTS (SELECT 1 FROM test_sessions WHERE id = ? AND user_id = ?)`
		if checkErr := s.db.QueryRowContext(ctx, checkQuery, session.ID, session.UserID).Scan(&exists); checkErr != nil {
			return checkErr
		}
		if exists {
			log.Warn("test session update lost optimistic-concurrency race",
				slog.String("session_id", session.ID.String()),
				slog.Int("expected_version", session.Version))
			return store.ErrConcurrentModification
		}
		return store.ErrSessionNotFound
	}

	session.Version++

	log.Debug("test session updated",
		slog.String("session_id", session.ID.String()),
		slog.Int("current_index", session.CurrentIndex),
		slog.Bool("finished", session.Finished))
	return nil
}

func marshalMistakes(mistakes []domain.Mistake) ([]byte, error) {
	if mistakes == nil {
		mistakes = []domain.Mistake{}
	}
	mistakesJSON, err := json.Marshal(mistakes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session mistakes: %w", err)
	}
	return mistakesJSON, nil
}
