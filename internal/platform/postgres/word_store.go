package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/platform/logger"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

// PostgresWordStore implements the store.WordStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWordStore creates a new PostgreSQL implementation of the WordStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWordStore(db store.DBTX, logger *slog.Logger) *PostgresWordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWordStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_store")),
	}
}

// Ensure PostgresWordStore implements store.WordStore interface
var _ store.WordStore = (*PostgresWordStore)(nil)

// Create implements store.WordStore.Create
// It saves a new word to the database, assigning the next free position in
// the owner's list inside the insert itself so concurrent inserts cannot
// produce gaps below the new row.
func (s *PostgresWordStore) Create(ctx context.Context, word *domain.Word) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := word.Validate(); err != nil {
		log.Warn("word validation failed during create",
			slog.String("error", err.Error()),
			slog.String("word_id", word.ID.String()))
		return err
	}

	query := `
		INSERT INTO words (id, user_id, source_text, target_text, position, created_at)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM words WHERE user_id = $2),
			$5)
		RETURNING position
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		word.ID,
		word.UserID,
		word.SourceText,
		word.TargetText,
		word.CreatedAt,
	).Scan(&word.Position)

	if err != nil {
		log.Error("failed to create word",
			slog.String("error", err.Error()),
			slog.String("word_id", word.ID.String()),
			slog.String("user_id", word.UserID.String()))
		return MapError(err)
	}

	log.Debug("word created successfully",
		slog.String("word_id", word.ID.String()),
		slog.String("user_id", word.UserID.String()),
		slog.Int("position", word.Position))
	return nil
}

// ListByUser implements store.WordStore.ListByUser
// It retrieves all of a user's words ordered by ascending position.
func (s *PostgresWordStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, source_text, target_text, position, created_at
		FROM words
		WHERE user_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list words",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	words := []*domain.Word{}
	for rows.Next() {
		var word domain.Word
		if err := rows.Scan(
			&word.ID,
			&word.UserID,
			&word.SourceText,
			&word.TargetText,
			&word.Position,
			&word.CreatedAt,
		); err != nil {
			log.Error("failed to scan word row",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, MapError(err)
		}
		words = append(words, &word)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return words, nil
}

// GetByID implements store.WordStore.GetByID
// It retrieves one of the user's words by its unique ID. The owner filter is
// part of the query, so another user's word reads as not found.
func (s *PostgresWordStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, source_text, target_text, position, created_at
		FROM words
		WHERE id = $1 AND user_id = $2
	`

	var word domain.Word
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&word.ID,
		&word.UserID,
		&word.SourceText,
		&word.TargetText,
		&word.Position,
		&word.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("word not found",
				slog.String("word_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrWordNotFound
		}
		log.Error("failed to get word by ID",
			slog.String("error", err.Error()),
			slog.String("word_id", id.String()))
		return nil, MapError(err)
	}

	return &word, nil
}

// Delete implements store.WordStore.Delete
// It removes one of the user's words. Remaining positions are untouched.
func (s *PostgresWordStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM words WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete word",
			slog.String("error", err.Error()),
			slog.String("word_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		log.Debug("word not found for delete",
			slog.String("word_id", id.String()),
			slog.String("user_id", userID.String()))
		return store.ErrWordNotFound
	}

	log.Info("word deleted",
		slog.String("word_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}
