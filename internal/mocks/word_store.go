package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

// MockWordStore implements store.WordStore for testing
type MockWordStore struct {
	// Custom behavior functions
	CreateFn     func(ctx context.Context, word *domain.Word) error
	ListByUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error)
	GetByIDFn    func(ctx context.Context, userID, id uuid.UUID) (*domain.Word, error)
	DeleteFn     func(ctx context.Context, userID, id uuid.UUID) error

	// Default response values
	Words []*domain.Word
	Word  *domain.Word
	Err   error
}

// Create implements the store.WordStore interface
func (m *MockWordStore) Create(ctx context.Context, word *domain.Word) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, word)
	}
	return m.Err
}

// ListByUser implements the store.WordStore interface
func (m *MockWordStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return m.Words, m.Err
}

// GetByID implements the store.WordStore interface
func (m *MockWordStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Word, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Word != nil {
		return m.Word, nil
	}
	// Fall back to the configured list so one mock covers both lookups.
	for _, w := range m.Words {
		if w.ID == id && w.UserID == userID {
			return w, nil
		}
	}
	return nil, store.ErrWordNotFound
}

// Delete implements the store.WordStore interface
func (m *MockWordStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	return m.Err
}

// Compile-time check that MockWordStore implements store.WordStore
var _ store.WordStore = (*MockWordStore)(nil)
