package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_New_defaults(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	t.Chdir(t.TempDir())

	cfg, err := New(Path("missing.yaml"))
	require.NoError(err)

	assert.Equal(8123, cfg.Server.Port)
	assert.Equal(StoreMemory, cfg.Session.Store)
	assert.Equal("/metrics", cfg.Metrics.Path)
	assert.NotEmpty(cfg.API.BaseURL)
}

func Test_New_yamlOverlay(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "config.yaml")
	require.NoError(os.WriteFile(file, []byte(`
server:
  port: 9000
api:
  base_url: http://backend.local
  timeout: 2s
session:
  store: redis
  redis:
    addr: redis:6379
`), 0o600))

	cfg, err := New(Path(file))
	require.NoError(err)

	assert.Equal(9000, cfg.Server.Port)
	assert.Equal("localhost", cfg.Server.Host)
	assert.Equal("http://backend.local", cfg.API.BaseURL)
	assert.Equal(2*time.Second, cfg.API.Timeout)
	assert.Equal(StoreRedis, cfg.Session.Store)
	assert.Equal("redis:6379", cfg.Session.Redis.Addr)
	assert.Equal("scs:session:", cfg.Session.Redis.Prefix)
}

func Test_New_envOverrides(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	t.Chdir(t.TempDir())
	t.Setenv(envBaseURL, "")
	t.Setenv(envPort, "8200")

	cfg, err := New("")
	require.NoError(err)

	assert.Equal(8200, cfg.Server.Port)
	assert.Empty(cfg.API.BaseURL)
}

func Test_New_invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("port", func(t *testing.T) {
		t.Setenv(envPort, "not-a-port")
		_, err := New("")
		assert.ErrorIs(t, err, errInvalidPort)
	})

	t.Run("store", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(file, []byte("session:\n  store: disk\n"), 0o600))

		_, err := New(Path(file))
		assert.ErrorIs(t, err, errUnknownStore)
	})
}
