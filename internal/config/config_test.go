package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	m := NewManager()
	require.NoError(t, m.LoadFrom(path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, 50, cfg.Commands.MaxStackSize)
	assert.Equal(t, 200, cfg.Refresh.LowWindowMs)
	assert.Equal(t, 100, cfg.Refresh.NormalWindowMs)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, m.ParseError())
}

func TestLoadReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[commands]
maxStackSize = 10

[refresh]
lowWindowMs = 500
normalWindowMs = 250

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m := NewManager()
	require.NoError(t, m.LoadFrom(path))

	cfg := m.Get()
	assert.Equal(t, 10, cfg.Commands.MaxStackSize)
	assert.Equal(t, 500, cfg.Refresh.LowWindowMs)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadBadTomlFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))

	m := NewManager()
	require.NoError(t, m.LoadFrom(path))
	assert.Error(t, m.ParseError())
	assert.Equal(t, 50, m.Get().Commands.MaxStackSize)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	m := NewManager()
	require.NoError(t, m.LoadFrom(path))

	m.SetMaxStackSize(7)
	m.SetLogLevel("warn")

	reload := NewManager()
	require.NoError(t, reload.LoadFrom(path))
	assert.Equal(t, 7, reload.Get().Commands.MaxStackSize)
	assert.Equal(t, "warn", reload.Get().Logging.Level)
}

func TestRefreshWindowDurations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(200), cfg.Refresh.LowWindow().Milliseconds())
	assert.Equal(t, int64(100), cfg.Refresh.NormalWindow().Milliseconds())
}
