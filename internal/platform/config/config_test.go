package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.Postgres.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.DirectoryFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PUNCHCARD_ADDR", ":9090")
	t.Setenv("PUNCHCARD_REQUEST_TIMEOUT", "5s")
	t.Setenv("PUNCHCARD_DIRECTORY_FILE", "/etc/punchcard/sites.json")
	t.Setenv("PUNCHCARD_POSTGRES_MAX_OPEN_CONNS", "25")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "/etc/punchcard/sites.json", cfg.DirectoryFile)
	assert.Equal(t, 25, cfg.Postgres.MaxOpenConns)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PUNCHCARD_REQUEST_TIMEOUT", "soon")
	t.Setenv("PUNCHCARD_POSTGRES_MAX_OPEN_CONNS", "many")

	cfg := FromEnv()

	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns)
}
