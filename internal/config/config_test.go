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
	t.Setenv("PSEUDOTRACE_ADDR", "")
	t.Setenv("PSEUDOTRACE_MAX_STEPS", "")
	t.Setenv("NO_COLOR", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PSEUDOTRACE_ADDR", "")
	t.Setenv("PSEUDOTRACE_MAX_STEPS", "")
	t.Setenv("NO_COLOR", "")

	path := filepath.Join(t.TempDir(), "pseudotrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_steps: 500
logging:
  level: debug
server:
  addr: "127.0.0.1:9000"
  max_sessions: 4
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.MaxSteps)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.Server.MaxSessions)
	// unset keys keep their defaults
	assert.Equal(t, int64(1<<20), cfg.Server.ReadLimit)
	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("max_steps: [1"), 0644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "failed to parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("server:\n  max_sessions: 0\n"), 0644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "server.max_sessions")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("address and step limit", func(t *testing.T) {
		t.Setenv("PSEUDOTRACE_ADDR", ":9999")
		t.Setenv("PSEUDOTRACE_MAX_STEPS", "42")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, ":9999", cfg.Server.Addr)
		assert.Equal(t, 42, cfg.MaxSteps)
	})

	t.Run("malformed step limit is ignored", func(t *testing.T) {
		t.Setenv("PSEUDOTRACE_MAX_STEPS", "lots")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 10000, cfg.MaxSteps)
	})

	t.Run("NO_COLOR disables colour", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.NoColor)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("PSEUDOTRACE_ADDR", "")
	t.Setenv("PSEUDOTRACE_MAX_STEPS", "")
	t.Setenv("NO_COLOR", "")

	path := filepath.Join(t.TempDir(), "nested", "pseudotrace.yaml")

	cfg := DefaultConfig()
	cfg.MaxSteps = 77
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
