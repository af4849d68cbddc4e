package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamshodbekdevops/dicttrainer/internal/api/middleware"
	"github.com/shamshodbekdevops/dicttrainer/internal/mocks"
	"github.com/shamshodbekdevops/dicttrainer/internal/service/auth"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	okHandler := func(t *testing.T, gotUserID *uuid.UUID) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := middleware.GetUserID(r)
			require.True(t, ok)
			*gotUserID = id
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("valid token reaches the handler with the user ID", func(t *testing.T) {
		jwtService := &mocks.MockJWTService{
			ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				assert.Equal(t, "good-token", tokenString)
				return &auth.Claims{UserID: userID}, nil
			},
		}
		var gotUserID uuid.UUID
		mw := middleware.NewAuthMiddleware(jwtService)

		req := httptest.NewRequest(http.MethodGet, "/api/words", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		mw.Authenticate(okHandler(t, &gotUserID)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, userID, gotUserID)
	})

	t.Run("missing header", func(t *testing.T) {
		mw := middleware.NewAuthMiddleware(&mocks.MockJWTService{})

		req := httptest.NewRequest(http.MethodGet, "/api/words", nil)
		rr := httptest.NewRecorder()
		mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		mw := middleware.NewAuthMiddleware(&mocks.MockJWTService{})

		req := httptest.NewRequest(http.MethodGet, "/api/words", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := httptest.NewRecorder()
		mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		mw := middleware.NewAuthMiddleware(&mocks.MockJWTService{Err: auth.ErrExpiredToken})

		req := httptest.NewRequest(http.MethodGet, "/api/words", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		rr := httptest.NewRecorder()
		mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Token expired")
	})

	t.Run("invalid token", func(t *testing.T) {
		mw := middleware.NewAuthMiddleware(&mocks.MockJWTService{Err: auth.ErrInvalidToken})

		req := httptest.NewRequest(http.MethodGet, "/api/words", nil)
		req.Header.Set("Authorization", "Bearer forged-token")
		rr := httptest.NewRecorder()
		mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid token")
	})
}
