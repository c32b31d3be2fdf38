// Package config defines the configuration structures for cnsipo-attrs.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"regexp"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters and the names of the
// source and auxiliary tables.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	PatentTable     string        `mapstructure:"patent_table"`
	AuxTable        string        `mapstructure:"aux_table"`
}

// RefDataConfig locates the reference files. Empty selects the built-in copy;
// "none" disables the university or IPC table.
type RefDataConfig struct {
	LocationFile   string `mapstructure:"location_file"`
	UniversityFile string `mapstructure:"university_file"`
	IPCFile        string `mapstructure:"ipc_file"`
}

// BatchConfig controls the auxiliary-table filler.
type BatchConfig struct {
	Size        int  `mapstructure:"size"`
	Concurrency int  `mapstructure:"concurrency"`
	DryRun      bool `mapstructure:"dry_run"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "text"
	Output string `mapstructure:"output"`
}

// MetricsConfig holds Prometheus parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	RefData  RefDataConfig  `mapstructure:"refdata"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// ConnsPerYear is the number of pooled connections one year of a fill run
// holds at once.
const ConnsPerYear = 2

// tableName accepts plain or schema-qualified SQL identifiers.
var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers treat any error as fatal.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}
	if !tableName.MatchString(c.Database.PatentTable) {
		return fmt.Errorf("config: database.patent_table %q is not a valid table name", c.Database.PatentTable)
	}
	if !tableName.MatchString(c.Database.AuxTable) {
		return fmt.Errorf("config: database.aux_table %q is not a valid table name", c.Database.AuxTable)
	}

	// Batch
	if c.Batch.Size < 1 {
		return fmt.Errorf("config: batch.size must be ≥ 1, got %d", c.Batch.Size)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("config: batch.concurrency must be ≥ 1, got %d", c.Batch.Concurrency)
	}
	// Each year in flight holds a streaming connection and writes through a
	// second one.
	if !c.Batch.DryRun && c.Database.MaxConns < ConnsPerYear*c.Batch.Concurrency {
		return fmt.Errorf("config: database.max_conns %d must be at least %d× batch.concurrency %d",
			c.Database.MaxConns, ConnsPerYear, c.Batch.Concurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
