package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive Load through real environment variables, so they cannot
// run in parallel with each other.

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DICTTRAINER_DATABASE_URL", "postgres://localhost:5432/dicttrainer")
	t.Setenv("DICTTRAINER_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, "postgres://localhost:5432/dicttrainer", cfg.Database.URL)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DICTTRAINER_SERVER_PORT", "9090")
	t.Setenv("DICTTRAINER_SERVER_LOG_LEVEL", "debug")
	t.Setenv("DICTTRAINER_DATABASE_DRIVER", "sqlite")
	t.Setenv("DICTTRAINER_DATABASE_URL", "/tmp/dicttrainer.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/dicttrainer.db", cfg.Database.URL)
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("DICTTRAINER_DATABASE_URL", "postgres://localhost:5432/dicttrainer")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	setRequiredEnv(t)

	t.Run("short secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DICTTRAINER_AUTH_JWT_SECRET", "short")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DICTTRAINER_DATABASE_DRIVER", "oracle")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown log level", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DICTTRAINER_SERVER_LOG_LEVEL", "verbose")
		_, err := Load()
		assert.Error(t, err)
	})
}
