// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, the mocks here
// implement the store and service interfaces with overridable function fields
// plus default response values, keeping test setup consistent across packages.
//
// Usage:
//
//	mockService := &mocks.MockQuizService{
//		StartSessionFn: func(ctx context.Context, userID uuid.UUID, direction domain.Direction, start, end int) (*quiz.StartResult, error) {
//			return &quiz.StartResult{}, nil
//		},
//	}
//
// When adding a new mock, name the file after the interface being mocked and
// give each method a *Fn override field.
package mocks
