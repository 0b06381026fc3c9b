package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "avwizard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", data)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(data, "avwizard", "av_ai_ops.db"), cfg.Store.Path)
	assert.Equal(t, 5000, cfg.Store.BusyTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Zero(t, cfg.Seed.RandomSeed)
	assert.True(t, cfg.Seed.SingleFlight)
	assert.Equal(t, 2*time.Second, cfg.Launch.Heartbeat)
	assert.True(t, cfg.Launch.PersistLogs)
	assert.Equal(t, 10*time.Second, cfg.Launch.Duration)
}

func TestLoad_DefaultStorePathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", home)

	p, err := DefaultStorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", "avwizard", "av_ai_ops.db"), p)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), map[string]any{"store.path": "x.db"})
	require.NoError(t, err)
	assert.Equal(t, "x.db", cfg.Store.Path)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
store:
  path: /tmp/from-file.db
log:
  level: info
  format: json
seed:
  random_seed: 42
  single_flight: false
launch:
  heartbeat: 500ms
`)
	t.Setenv("AVWIZARD_LOG_LEVEL", "debug")
	t.Setenv("AVWIZARD_STORE_BUSY_TIMEOUT", "750")
	t.Setenv("AVWIZARD_LAUNCH_PERSIST_LOGS", "false")

	cfg, err := Load(path, map[string]any{"store.path": "/tmp/from-flag.db"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-flag.db", cfg.Store.Path, "flag beats file")
	assert.Equal(t, 750, cfg.Store.BusyTimeout, "env beats default")
	assert.Equal(t, "debug", cfg.Log.Level, "env beats file")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, uint64(42), cfg.Seed.RandomSeed)
	assert.False(t, cfg.Seed.SingleFlight)
	assert.Equal(t, 500*time.Millisecond, cfg.Launch.Heartbeat)
	assert.False(t, cfg.Launch.PersistLogs)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"zero heartbeat", "launch:\n  heartbeat: 0s\n", "launch.heartbeat"},
		{"negative duration", "launch:\n  duration: -1s\n", "launch.duration"},
		{"negative busy timeout", "store:\n  busy_timeout: -1\n", "store.busy_timeout"},
		{"malformed", "store: [\n", "load config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml), map[string]any{"store.path": "x.db"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DirectoryRejected(t *testing.T) {
	_, err := Load(t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "store.path", envKey("AVWIZARD_STORE_PATH"))
	assert.Equal(t, "store.busy_timeout", envKey("AVWIZARD_STORE_BUSY_TIMEOUT"))
	assert.Equal(t, "launch.persist_logs", envKey("AVWIZARD_LAUNCH_PERSIST_LOGS"))
	assert.Equal(t, "debug", envKey("AVWIZARD_DEBUG"))
}
