package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outlier.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Bind)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "compact", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "0.0.0.0:3000", cfg.ListenAddr())
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"
output = "/var/log/outlier.log"

[server]
port = 8080
bind = "127.0.0.1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Bind)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/var/log/outlier.log", cfg.Logging.Output)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Bind)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 4000
`)
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, `[server`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoggingApply(t *testing.T) {
	logger := logrus.New()

	err := LoggingConfig{Level: "debug", Format: "json", Output: "stderr"}.Apply(logger)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	err = LoggingConfig{Level: "verbose"}.Apply(logger)
	assert.Error(t, err)

	err = LoggingConfig{Level: "info", Format: "xml"}.Apply(logger)
	assert.Error(t, err)
}

func TestLoggingApplyFileOutput(t *testing.T) {
	logger := logrus.New()
	path := filepath.Join(t.TempDir(), "outlier.log")

	err := LoggingConfig{Level: "info", Format: "compact", Output: path}.Apply(logger)
	require.NoError(t, err)

	logger.Info("hello")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
