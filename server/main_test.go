package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"mediabrowser/internal/config"
)

func parseConfig(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var (
		cfg  config.Config
		lerr error
	)
	app := newApp()
	app.Action = func(ctx *cli.Context) error {
		cfg, lerr = loadConfig(ctx)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"media-browser"}, args...)))
	return cfg, lerr
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(t)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 4000
media_root = "/from/file"
store = "sqlite"
`), 0o644))

	cfg, err := parseConfig(t, "--config", path, "--port", "5000", "--session-max-age", "1h", "--deny", "a", "--deny", "b")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port, "flag beats file")
	assert.Equal(t, "/from/file", cfg.MediaRoot, "file beats default")
	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, []string{"a", "b"}, cfg.Deny)
	assert.Equal(t, "data", cfg.DataDirectory)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("MEDIA_PORT", "7000")
	t.Setenv("MEDIA_STORE", "sqlite")

	cfg, err := parseConfig(t)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, config.StoreSQLite, cfg.Store)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := parseConfig(t, "--store", "postgres")
	assert.Error(t, err)

	_, err = parseConfig(t, "--credential-scheme", "rot13")
	assert.Error(t, err)
}
