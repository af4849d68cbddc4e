package sqlite

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

// SQLiteWordStore implements the store.WordStore interface using an embedded
// sqlite database. Query semantics match the postgres backend; only the
// placeholder style differs.
type SQLiteWordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteWordStore creates a new sqlite implementation of the WordStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteWordStore(db store.DBTX, logger *slog.Logger) *SQLiteWordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteWordStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_store")),
	}
}

// Ensure SQLiteWordStore implements store.WordStore interface
var _ store.WordStore = (*SQLiteWordStore)(nil)

// Create implements store.WordStore.Create
func (s *SQLiteWordStore) Create(ctx context.Context, word *domain.Word) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := word.Validate(); err != nil {
		log.Warn("word validation failed during create",
			slog.String("error", err.Error()),
			slog.String("word_id", word.ID.String()))
		return err
	}

	query := `
		INSERT INTO words (id, user_id, source_text, target_text, position, created_at)
		VALUES (?, ?, ?, ?,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM words WHERE user_id = ?),
			?)
		RETURNING position
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		word.ID,
		word.UserID,
		word.SourceText,
		word.TargetText,
		word.UserID,
		word.CreatedAt,
	).Scan(&word.Position)

	if err != nil {
		log.Error("failed to create word",
			slog.String("error", err.Error()),
			slog.String("word_id", word.ID.String()),
			slog.String("user_id", word.UserID.String()))
		return err
	}

	log.Debug("word created successfully",
		slog.String("word_id", word.ID.String()),
		slog.String("user_id", word.UserID.String()),
		slog.Int("position", word.Position))
	return nil
}

// ListByUser implements store.WordStore.ListByUser
func (s *SQLiteWordStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, source_text, target_text, position, created_at
		FROM words
		WHERE user_id = ?
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list words",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
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
			return nil, err
		}
		words = append(words, &word)
	}

	return words, rows.Err()
}

// GetByID implements store.WordStore.GetByID
func (s *SQLiteWordStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, source_text, target_text, position, created_at
		FROM words
		WHERE id = ? AND user_id = ?
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
		return nil, err
	}

	return &word, nil
}

// Delete implements store.WordStore.Delete
func (s *SQLiteWordStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM words WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		log.Error("failed to delete word",
			slog.String("error", err.Error()),
			slog.String("word_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrWordNotFound
	}

	log.Info("word deleted",
		slog.String("word_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}
