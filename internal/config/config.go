// Package config provides configuration management for the journal engine.
package config

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

const (
	// defaultJournalPath is used when journal.path is unset
	defaultJournalPath = "journal.csv"
	// defaultBackupDir is used when journal.backup_dir is unset
	defaultBackupDir = "backups_journal"
	// defaultBackupRetention caps how many snapshot files are kept
	defaultBackupRetention = 30
	// defaultDashboardPort is used when dashboard.port is unset
	defaultDashboardPort = 9847
	// defaultAssignmentFee is the per-event assignment/exercise fee most
	// retail brokers charge, used when trading.assignment_fee is unset
	defaultAssignmentFee = 5.0
)

// Config represents the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Journal     JournalConfig     `yaml:"journal"`
	Trading     TradingConfig     `yaml:"trading"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// JournalConfig defines where the ledger file and its backups live.
type JournalConfig struct {
	Path            string `yaml:"path"`
	BackupDir       string `yaml:"backup_dir"`
	BackupRetention int    `yaml:"backup_retention"`
}

// TradingConfig defines journal-wide trading defaults.
type TradingConfig struct {
	// AssignmentFee is charged per assignment event, in dollars.
	AssignmentFee float64 `yaml:"assignment_fee"`
	// DefaultTicker pre-fills the ticker on open when the flag is omitted.
	DefaultTicker string `yaml:"default_ticker"`
}

// DashboardConfig defines the read-only HTTP dashboard settings.
type DashboardConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
	// AuthToken, when set, requires a matching bearer token on API routes.
	AuthToken string `yaml:"auth_token"`
}

// Load reads and parses the configuration file from the specified path.
// A missing file yields the defaults rather than an error, so the CLI works
// out of the box in a fresh directory.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "strikelog.yaml"
	}

	config := &Config{}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		dec := yaml.NewDecoder(strings.NewReader(expanded))
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	config.normalize()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate checks that all configuration values are valid and consistent.
func (c *Config) Validate() error {
	switch c.Environment.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be one of debug|info|warn|error")
	}

	if c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required")
	}
	if c.Journal.BackupRetention < 0 {
		return fmt.Errorf("journal.backup_retention must be >= 0")
	}

	if c.Trading.AssignmentFee < 0 {
		return fmt.Errorf("trading.assignment_fee must be >= 0")
	}

	if c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port must be in (0,65535]")
	}

	return nil
}

// normalize fills unset fields with their defaults.
func (c *Config) normalize() {
	if c.Environment.LogLevel == "" {
		c.Environment.LogLevel = "info"
	}
	if c.Journal.Path == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.BackupDir == "" {
		c.Journal.BackupDir = defaultBackupDir
	}
	if c.Journal.BackupRetention == 0 {
		c.Journal.BackupRetention = defaultBackupRetention
	}
	if c.Trading.AssignmentFee == 0 {
		c.Trading.AssignmentFee = defaultAssignmentFee
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = defaultDashboardPort
	}
}
