package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("extract", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}

func TestLoadFlags(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load("extract", []string{
		"--db", "/tmp/q.db",
		"--manifest", "filings.yaml",
		"--patterns", dir,
		"--workers=8",
		"--maxage=24h",
		"--loglevel", "debug",
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/q.db", cfg.DBPath)
	assert.Equal(t, "filings.yaml", cfg.Manifest)
	assert.Equal(t, dir, cfg.PatternsDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 24*time.Hour, cfg.MaxAge)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("STMT_DB", "/var/lib/statements.db")
	t.Setenv("STMT_PORT", "9090")

	cfg, err := Load("server", nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/statements.db", cfg.DBPath)
	assert.Equal(t, 9090, cfg.Port)

	cfg, err = Load("server", []string{"--port", "7070"})
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port, "flags win over the environment")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no database", func(c *Config) { c.DBPath = "" }, "database path"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"negative max age", func(c *Config) { c.MaxAge = -time.Second }, "maxage"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "port"},
		{"missing patterns", func(c *Config) { c.PatternsDir = "/nonexistent/patterns" }, "patterns directory"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("extract", []string{"--workers=0"})
	assert.ErrorContains(t, err, "invalid configuration")

	_, err = Load("extract", []string{"--nope"})
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	assert.Equal(t, log.WarnLevel, logger.Level)

	logger.Info().Msg("hidden")
	logger.Warn().Str("unit", "ACME FY2024 Q1").Msg("document skipped")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "document skipped")
}
