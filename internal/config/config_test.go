package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strikelog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Environment.LogLevel)
	assert.Equal(t, "journal.csv", cfg.Journal.Path)
	assert.Equal(t, "backups_journal", cfg.Journal.BackupDir)
	assert.Equal(t, 30, cfg.Journal.BackupRetention)
	assert.Equal(t, 5.0, cfg.Trading.AssignmentFee)
	assert.Equal(t, 9847, cfg.Dashboard.Port)
	assert.False(t, cfg.Dashboard.Enabled)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
environment:
  log_level: debug
journal:
  path: /data/journal.csv
  backup_dir: /data/backups
  backup_retention: 10
trading:
  assignment_fee: 0.0
  default_ticker: SPY
dashboard:
  enabled: true
  port: 8080
  auth_token: hunter2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Environment.LogLevel)
	assert.Equal(t, "/data/journal.csv", cfg.Journal.Path)
	assert.Equal(t, 10, cfg.Journal.BackupRetention)
	assert.Equal(t, "SPY", cfg.Trading.DefaultTicker)
	assert.True(t, cfg.Dashboard.Enabled)
	assert.Equal(t, 8080, cfg.Dashboard.Port)
	assert.Equal(t, "hunter2", cfg.Dashboard.AuthToken)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("STRIKELOG_DATA", "/var/lib/strikelog")
	path := writeConfig(t, `
journal:
  path: ${STRIKELOG_DATA}/journal.csv
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/strikelog/journal.csv", cfg.Journal.Path)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
journal:
  path: journal.csv
  retention_days: 5
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Environment.LogLevel = "verbose" }},
		{"empty journal path", func(c *Config) { c.Journal.Path = "" }},
		{"negative retention", func(c *Config) { c.Journal.BackupRetention = -1 }},
		{"negative fee", func(c *Config) { c.Trading.AssignmentFee = -1 }},
		{"port too large", func(c *Config) { c.Dashboard.Port = 70000 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.normalize()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
