package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/streampulse")
	t.Setenv("TOKEN_SECRET", validSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.PublishRequestTTL)
	assert.Equal(t, 200*time.Millisecond, cfg.LikeMinInterval)
	assert.Equal(t, 500, cfg.MaxClientsPerStream)
	assert.Empty(t, cfg.RedisURL, "redis is optional")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PUBLISH_REQUEST_TTL", "45s")
	t.Setenv("LIKE_MIN_INTERVAL", "500ms")
	t.Setenv("MAX_CLIENTS_PER_STREAM", "100")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.PublishRequestTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.LikeMinInterval)
	assert.Equal(t, 100, cfg.MaxClientsPerStream)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TOKEN_SECRET", validSecret)

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_TokenSecretValidation(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/streampulse")
		t.Setenv("TOKEN_SECRET", "")

		_, err := Load()
		assert.ErrorContains(t, err, "TOKEN_SECRET")
	})

	t.Run("too short", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/streampulse")
		t.Setenv("TOKEN_SECRET", "short")

		_, err := Load()
		assert.ErrorContains(t, err, "at least 32 characters")
	})
}

func TestLoad_InvalidDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PUBLISH_REQUEST_TTL", "not-a-duration")

	_, err := Load()
	assert.ErrorContains(t, err, "PUBLISH_REQUEST_TTL")
}

func TestLoad_NonPositiveTTLRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PUBLISH_REQUEST_TTL", "-1s")

	_, err := Load()
	assert.ErrorContains(t, err, "must be positive")
}

func TestLoad_MaxClientsValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_CLIENTS_PER_STREAM", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "at least 1")
}
