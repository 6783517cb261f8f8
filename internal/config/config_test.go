package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Storage.URI)
	assert.Equal(t, "directional_surveys", cfg.Storage.SurveyCollection)
	assert.Equal(t, 30*time.Second, cfg.Importer.Timeout)
	assert.Equal(t, "SURVEYS", cfg.Events.StreamName)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 9999
storage:
  database: testdb
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "testdb", cfg.Storage.Database)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched values keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadLocalOverridesBase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server:\n  port: 9000\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.yml"), []byte("server:\n  port: 9001\n"), 0o644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SURVEYD_PORT", "7070")
	t.Setenv("SURVEYD_MONGO_URI", "mongodb://db:27017")
	t.Setenv("SURVEYD_IMPORTER_URL", "http://imports:8000")
	t.Setenv("SURVEYD_LOG_LEVEL", "warn")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Storage.URI)
	assert.Equal(t, "http://imports:8000", cfg.Importer.URL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"empty storage uri", func(c *Config) { c.Storage.URI = "" }, "storage uri"},
		{"empty database", func(c *Config) { c.Storage.Database = "" }, "storage database"},
		{"empty collection", func(c *Config) { c.Storage.SurveyCollection = "" }, "storage collections"},
		{"empty importer url", func(c *Config) { c.Importer.URL = "" }, "importer url"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoggingApplyDefaults(t *testing.T) {
	c := LoggingConfig{Level: "debug"}
	c.ApplyDefaults()

	assert.Equal(t, "text", c.Format)
	assert.Equal(t, "logs", c.Dir)
	assert.Equal(t, 100, c.Rotation.MaxSize)
	// Sub-outputs inherit the top-level level unless overridden.
	assert.Equal(t, "debug", c.Console.Level)
	assert.Equal(t, "debug", c.File.Level)
}
