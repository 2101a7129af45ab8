package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "DRAFT_EVENTS", cfg.NATS.Stream)
	assert.Equal(t, "draft_outbox_events", cfg.Outbox.Channel)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	yaml := `
log_level: debug
server:
  port: 9000
redis:
  addr: localhost:6379
  ttl: 1h
engine:
  autopick_timeout: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("GATEWAY_PORT", "")
	t.Setenv("RANKING_SERVICE_URL", "http://ranking:8000")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.AutopickTimeout)
	assert.Equal(t, "http://ranking:8000", cfg.Ranking.URL)
	assert.Equal(t, 8081, cfg.Gateway.Port)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o600))

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestListenerConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Outbox.Channel = "custom"

	lc := cfg.listenerConfig()
	assert.Equal(t, "custom", lc.NotifyChannel)
	assert.Equal(t, cfg.Database.DSN(), lc.DatabaseURL)
	assert.Equal(t, cfg.Outbox.BatchSize, lc.BatchSize)
}
