package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "botshell.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
callTimeoutSeconds = 10
events = ["logUpdate", "statusChange"]

[worker]
path = "/opt/botwright/botwright-worker"
args = ["--headless"]

[logging]
level = "debug"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "/opt/botwright/botwright-worker", cfg.Worker.Path)
	require.Equal(t, []string{"--headless"}, cfg.Worker.Args)
	require.Equal(t, []string{"logUpdate", "statusChange"}, cfg.Events)
	require.Equal(t, 10*time.Second, cfg.CallTimeout())
	require.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultCallTimeout, cfg.CallTimeout())
	require.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestLoadFile_InvalidLevel(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "shout"
`)

	_, err := LoadFile(path)
	require.ErrorContains(t, err, "unknown logging level")
}

func TestLoadFile_NegativeTimeout(t *testing.T) {
	path := writeConfig(t, "callTimeoutSeconds = -1\n")

	_, err := LoadFile(path)
	require.ErrorContains(t, err, "callTimeoutSeconds")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestEffectiveCallTimeout(t *testing.T) {
	var opts *Options

	require.Equal(t, DefaultCallTimeout, opts.EffectiveCallTimeout())

	opts = &Options{}
	require.Equal(t, DefaultCallTimeout, opts.EffectiveCallTimeout())

	opts.CallTimeout = time.Second
	require.Equal(t, time.Second, opts.EffectiveCallTimeout())
}
