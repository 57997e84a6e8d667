package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001", cfg.APIURL)
	assert.False(t, cfg.DemoMode)
	assert.False(t, cfg.Offline)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8090", cfg.ListenAddr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etldash.yaml")
	data := `api_url: http://tests.internal:9000
demo_mode: true
timeout: 3s
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://tests.internal:9000", cfg.APIURL)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etldash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://from-file\n"), 0644))

	t.Setenv("ETLDASH_API_URL", "http://from-env")
	t.Setenv("ETLDASH_OFFLINE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env", cfg.APIURL)
	assert.True(t, cfg.Offline)
	assert.True(t, cfg.DemoMode, "offline implies demo mode")
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etldash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [unterminated\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("ETLDASH_LOG_LEVEL", "chatty")
	_, err := Load("")
	require.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("ETLDASH_CONFIG", "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", DefaultPath())
}
