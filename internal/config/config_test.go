package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "recon.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "auto", cfg.Ledger.Encoding)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, 30, cfg.Registry.TimeoutSecs)
	assert.InDelta(t, 5.0, cfg.Registry.RatePerSec, 0.001)
	assert.Equal(t, 2, cfg.Registry.MaxRetries)
	assert.False(t, cfg.Match.RequireFieldPresence)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://recon@localhost/recon
match:
  require_field_presence: true
ledger:
  encoding: windows-1251
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://recon@localhost/recon", cfg.Store.DatabaseURL)
	assert.True(t, cfg.Match.RequireFieldPresence)
	assert.Equal(t, "windows-1251", cfg.Ledger.Encoding)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("RECON_REGISTRY_TOKEN", "secret-token")
	t.Setenv("RECON_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Registry.Token)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
