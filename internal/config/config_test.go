package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTP.Address)
	assert.Equal(t, ":9090", cfg.Server.GRPC.Address)
	assert.Equal(t, 100, cfg.Server.GRPC.MaxConcurrentStreams)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.True(t, cfg.Game.DiscoveryPotionReward)
	assert.True(t, cfg.Game.AutoStartArena)
	assert.False(t, cfg.Game.RequireGlyphsForArena)
	assert.Zero(t, cfg.Game.Seed)
	assert.Equal(t, 256, cfg.Game.JournalSize)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  http:
    address: "127.0.0.1:8181"
  shutdown_timeout: 3s
logging:
  level: debug
  format: json
store:
  driver: sqlite
  path: /tmp/ultma-test.db
game:
  seed: 42
  auto_start_arena: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("ULTMA_GAME_REQUIRE_GLYPHS_FOR_ARENA", "true")
	t.Setenv("ULTMA_SERVER_GRPC_ADDRESS", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8181", cfg.Server.HTTP.Address)
	assert.Equal(t, ":9999", cfg.Server.GRPC.Address)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, int64(42), cfg.Game.Seed)
	assert.False(t, cfg.Game.AutoStartArena)
	assert.True(t, cfg.Game.RequireGlyphsForArena)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("ULTMA_STORE_DRIVER", "postgres")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.dsn")

	t.Setenv("ULTMA_STORE_DRIVER", "cassandra")
	_, err = Load("")
	require.Error(t, err)

	t.Setenv("ULTMA_STORE_DRIVER", "memory")
	t.Setenv("ULTMA_LOGGING_LEVEL", "verbose")
	_, err = Load("")
	require.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
