package postgres

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

// PostgresTestSessionStore implements the store.TestSessionStore interface
// using a PostgreSQL database as the storage backend. The frozen question
// order and the mistake list are stored as jsonb columns.
type PostgresTestSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTestSessionStore creates a new PostgreSQL implementation of the TestSessionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTestSessionStore(db store.DBTX, logger *slog.Logger) *PostgresTestSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTestSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "test_session_store")),
	}
}

// Ensure PostgresTestSessionStore implements store.TestSessionStore interface
var _ store.TestSessionStore = (*PostgresTestSessionStore)(nil)

// Create implements store.TestSessionStore.Create
// It saves a new test session to the database, handling domain validation.
func (s *PostgresTestSessionStore) Create(ctx context.Context, session *domain.TestSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	orderJSON, mistakesJSON, err := marshalSessionJSON(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO test_sessions (
			id, user_id, direction, start_index, end_index, total_questions,
			word_order, current_index, correct_count, wrong_count, mistakes,
			finished, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
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
		return MapError(err)
	}

	log.Info("test session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.Int("total_questions", session.TotalQuestions))
	return nil
}

// Get implements store.TestSessionStore.Get
// It retrieves one of the user's sessions by the composite key (owner, id).
// Returns store.ErrSessionNotFound if no such session is owned by the user.
func (s *PostgresTestSessionStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.TestSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, direction, start_index, end_index, total_questions,
		       word_order, current_index, correct_count, wrong_count, mistakes,
		       finished, version, created_at, updated_at
		FROM test_sessions
		WHERE id = $1 AND user_id = $2
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
		log.Error("failed to get test session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	session.Direction = domain.Direction(direction)
	if err := unmarshalSessionJSON(&session, orderJSON, mistakesJSON); err != nil {
		log.Error("failed to decode test session JSON columns",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, err
	}

	return &session, nil
}

// Update implements store.TestSessionStore.Update
// It persists the full session record in one atomic write guarded by the
// version column. Zero rows affected means either a lost race or a missing
// session; a follow-up owner-scoped existence check tells the two apart.
func (s *PostgresTestSessionStore) Update(ctx context.Context, session *domain.TestSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during update",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	// The frozen order never changes after creation, so only the mutable
	// columns are written here.
	mistakesJSON, err := marshalMistakes(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE test_sessions
		SET current_index = $1,
		    correct_count = $2,
		    wrong_count = $3,
		    mistakes = $4,
		    finished = $5,
		    version = version + 1,
		    updated_at = $6
		WHERE id = $7 AND user_id = $8 AND version = $9
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
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}

	if rowsAffected == 0 {
		// Distinguish a lost version race from a vanished session.
		var exists bool
		checkQuery := `SELECT EXISTS (SELECT 1 FROM test_sessions WHERE id = $1 AND user_id = $2)`
		if checkErr := s.db.QueryRowContext(ctx, checkQuery, session.ID, session.UserID).Scan(&exists); checkErr != nil {
			return MapError(checkErr)
		}
		if exists {
			log.Warn("test session update lost optimistic-concurrency race",
				slog.String("session_id", session.ID.String()),
				slog.Int("expected_version", session.Version))
			return store.ErrConcurrentModification
		}
		log.Debug("test session not found for update",
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()))
		return store.ErrSessionNotFound
	}

	session.Version++

	log.Debug("test session updated",
		slog.String("session_id", session.ID.String()),
		slog.Int("current_index", session.CurrentIndex),
		slog.Bool("finished", session.Finished))
	return nil
}

// marshalSessionJSON encodes the session's order and mistakes columns.
func marshalSessionJSON(session *domain.TestSession) (orderJSON, mistakesJSON []byte, err error) {
	orderJSON, err = json.Marshal(session.Order)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode session order: %w", err)
	}

	mistakesJSON, err = marshalMistakes(session)
	if err != nil {
		return nil, nil, err
	}

	return orderJSON, mistakesJSON, nil
}

// marshalMistakes encodes the mistakes column, normalizing nil to an empty list.
func marshalMistakes(session *domain.TestSession) ([]byte, error) {
	mistakes := session.Mistakes
	if mistakes == nil {
		mistakes = []domain.Mistake{}
	}
	mistakesJSON, err := json.Marshal(mistakes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session mistakes: %w", err)
	}
	return mistakesJSON, nil
}

// unmarshalSessionJSON decodes the session's order and mistakes columns.
func unmarshalSessionJSON(session *domain.TestSession, orderJSON, mistakesJSON []byte) error {
	if err := json.Unmarshal(orderJSON, &session.Order); err != nil {
		return fmt.Errorf("failed to decode session order: %w", err)
	}
	if err := json.Unmarshal(mistakesJSON, &session.Mistakes); err != nil {
		return fmt.Errorf("failed to decode session mistakes: %w", err)
	}
	if session.Order == nil {
		session.Order = []uuid.UUID{}
	}
	if session.Mistakes == nil {
		session.Mistakes = []domain.Mistake{}
	}
	return nil
}
