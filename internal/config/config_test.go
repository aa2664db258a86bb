package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/flume/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flume.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
log_level: debug
history_cap: 10
store:
  backend: redis
  redis:
    address: localhost:6379
    db: 2
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10, cfg.HistoryCap)
	assert.Equal(t, config.StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Address)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `listen: ":9090"`)
	t.Setenv("FLUME_LISTEN", ":7070")
	t.Setenv("FLUME_STORE_BACKEND", "memory")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Listen)
	assert.Equal(t, config.StoreMemory, cfg.Store.Backend)
}

func TestValidation(t *testing.T) {
	t.Run("UnknownBackend", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "store:\n  backend: cassandra\n"))
		assert.ErrorContains(t, err, "unknown store backend")
	})

	t.Run("RedisWithoutAddress", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "store:\n  backend: redis\n"))
		assert.ErrorContains(t, err, "store.redis.address is required")
	})
}
