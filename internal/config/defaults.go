package config

import (
	"os/user"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost        = "localhost"
	DefaultDBPort        = 5432
	DefaultDBUser        = "postgres"
	DefaultDBName        = "cnsipo"
	DefaultDBMaxConns    = 8
	DefaultPatentTable   = "patent_detail"
	DefaultAuxTable      = "patent_aux"
	DefaultBatchSize     = 1000
	DefaultConcurrency   = 4
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogOutput     = "stderr"
	DefaultMetricsNS     = "cnsipo"
	DefaultMetricsSubsys = "attrs"
)

// ApplyDefaults fills every zero-value field in cfg with its default. Fields
// already set are left unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = defaultDBUser()
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.PatentTable == "" {
		cfg.Database.PatentTable = DefaultPatentTable
	}
	if cfg.Database.AuxTable == "" {
		cfg.Database.AuxTable = DefaultAuxTable
	}

	// ── Batch ─────────────────────────────────────────────────────────────────
	if cfg.Batch.Size == 0 {
		cfg.Batch.Size = DefaultBatchSize
	}
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = DefaultConcurrency
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNS
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsys
	}
}

// defaultDBUser is the invoking OS user, or DefaultDBUser when it cannot be
// determined.
func defaultDBUser() string {
	if u, err := currentUser(); err == nil && u.Username != "" {
		return u.Username
	}
	return DefaultDBUser
}

var currentUser = user.Current

//Personal.AI order the ending
