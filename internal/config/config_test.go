package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("AUTH_BOOTSTRAP_AGENT_EMAIL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("SESSION_BACKEND", "REDIS")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("REDIS_DB", "0")
	t.Setenv("SESSION_BACKEND", "cookie")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("AUTH_BOOTSTRAP_AGENT_EMAIL", "root@example.com")
	t.Setenv("AUTH_BOOTSTRAP_AGENT_PASSWORD", "")
	_, err = Load()
	assert.Error(t, err)
}
