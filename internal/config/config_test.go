package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Defaults(t *testing.T) {
	t.Setenv("CONFIG", "")
	t.Setenv("PASSKEEPER_DATABASE", "")
	t.Setenv("PASSKEEPER_KEY_FILE", "")
	t.Setenv("PASSKEEPER_LOG_LEVEL", "")

	opts, err := ParseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DefaultDataDir, "userData.sqlite"), opts.DatabasePath)
	assert.Equal(t, filepath.Join(DefaultDataDir, "secret.key"), opts.KeyPath)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, time.Hour, opts.CleanInterval)
}

func TestParseArgs_FlagsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"key_path":"/from/file.key","log_level":"warn"}`), 0o600))

	t.Setenv("CONFIG", "")
	t.Setenv("PASSKEEPER_DATABASE", "")
	t.Setenv("PASSKEEPER_KEY_FILE", "")
	t.Setenv("PASSKEEPER_LOG_LEVEL", "debug")

	opts, err := ParseArgs([]string{"-d", "/from/flag.sqlite", "-c", cfg})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag.sqlite", opts.DatabasePath)
	assert.Equal(t, "/from/file.key", opts.KeyPath)
	assert.Equal(t, "debug", opts.LogLevel, "env wins over file")
}

func TestParseArgs_BadConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{not json`), 0o600))
	t.Setenv("CONFIG", cfg)

	_, err := ParseArgs(nil)
	assert.Error(t, err)
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	_, err := ParseArgs([]string{"-nope"})
	assert.Error(t, err)
}
