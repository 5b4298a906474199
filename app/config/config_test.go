package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Addr, cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Posts.PerPage)
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, 336*time.Hour, cfg.GetSessionTTL())
	assert.Equal(t, 72*time.Hour, cfg.GetResetTokenTTL())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yatube.yaml")
	content := `
server:
  addr: ":9000"
  shutdown_timeout: "3s"
posts:
  per_page: 5
auth:
  session_ttl: "bogus"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, 5, cfg.Posts.PerPage)
	assert.Equal(t, "data/badger", cfg.Database.Path)
	assert.Equal(t, 14*24*time.Hour, cfg.GetSessionTTL())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNonPositivePerPageFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yatube.yaml")
	require.NoError(t, os.WriteFile(path, []byte("posts:\n  per_page: 0\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Posts.PerPage)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("YATUBE_ADDR", ":7000")
	t.Setenv("YATUBE_DB_PATH", "/tmp/yatube-db")
	t.Setenv("YATUBE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/yatube-db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "yatube.yaml")
	cfg := DefaultConfig()
	cfg.Posts.PerPage = 3
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Posts.PerPage)
}
