package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shamshodbekdevops/dicttrainer/internal/domain"
	"github.com/shamshodbekdevops/dicttrainer/internal/store"
)

// MockTestSessionStore implements store.TestSessionStore for testing.
// With no overrides set it behaves as an in-memory store keyed by
// (user, session), including the optimistic version check on Update.
type MockTestSessionStore struct {
	// Custom behavior functions
	CreateFn func(ctx context.Context, session *domain.TestSession) error
	GetFn    func(ctx context.Context, userID, id uuid.UUID) (*domain.TestSession, error)
	UpdateFn func(ctx context.Context, session *domain.TestSession) error

	// Err forces all non-overridden methods to fail.
	Err error

	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.TestSession

	// Call tracking for verification
	CreateCount int
	UpdateCount int
}

// Create implements the store.TestSessionStore interface
func (m *MockTestSessionStore) Create(ctx context.Context, session *domain.TestSession) error {
	m.mu.Lock()
	m.CreateCount++
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, session)
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[uuid.UUID]*domain.TestSession)
	}
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

// Get implements the store.TestSessionStore interface
func (m *MockTestSessionStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.TestSession, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok || session.UserID != userID {
		return nil, store.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

// Update implements the store.TestSessionStore interface
func (m *MockTestSessionStore) Update(ctx context.Context, session *domain.TestSession) error {
	m.mu.Lock()
	m.UpdateCount++
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, session)
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[session.ID]
	if !ok || stored.UserID != session.UserID {
		return store.ErrSessionNotFound
	}
	if stored.Version != session.Version {
		return store.ErrConcurrentModification
	}
	session.Version++
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

// Compile-time check that MockTestSessionStore implements store.TestSessionStore
var _ store.TestSessionStore = (*MockTestSessionStore)(nil)
