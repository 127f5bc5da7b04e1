package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "PRESENCE_POLL_INTERVAL", "LOBBY_COUNTDOWN", "ALLOWED_ORIGINS", "METADATA_BASE_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 15*time.Minute, cfg.LobbyCountdown)
	assert.Equal(t, 10<<20, cfg.ImageMaxBytes)
	assert.Contains(t, cfg.DatabaseURL, "postgres://")
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PRESENCE_POLL_INTERVAL", "10s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("METADATA_BASE_URL", "https://meta.example/v1/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DatabaseURL)
	assert.Equal(t, "https://meta.example/v1", cfg.MetadataBaseURL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PRESENCE_POLL_INTERVAL", "soon")
	t.Setenv("REDIS_DB", "one")
	t.Setenv("METADATA_BASE_URL", "ftp://meta")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRESENCE_POLL_INTERVAL")
	assert.Contains(t, err.Error(), "REDIS_DB")
	assert.Contains(t, err.Error(), "METADATA_BASE_URL")
}

func TestLoadAuthKeyPaths(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("AUTH_PRIVATE_KEY_PATH", "/keys/session.key")
	t.Setenv("AUTH_PUBLIC_KEY_PATH", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be set together")

	t.Setenv("AUTH_PUBLIC_KEY_PATH", "/keys/session.pub")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasAuthKeys())
}

func TestLoadProductionRequiresAuthKeys(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_PRIVATE_KEY_PATH", "")
	t.Setenv("AUTH_PUBLIC_KEY_PATH", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required in production")
}
