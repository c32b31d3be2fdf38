// Package config provides configuration loading, defaults, and validation for
// cnsipo-attrs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CNSIPO"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigParseError   = errors.New("config file cannot be parsed")
	ErrConfigValidation   = errors.New("config validation failed")
)

// keys lists every setting so that environment overrides work without a
// config file; viper only consults the environment for keys it knows about.
var keys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
	"database.host", "database.port", "database.user", "database.password", "database.db_name",
	"database.ssl_mode", "database.max_conns", "database.min_conns", "database.conn_max_lifetime",
	"database.patent_table", "database.aux_table",
	"refdata.location_file", "refdata.university_file", "refdata.ipc_file",
	"batch.size", "batch.concurrency", "batch.dry_run",
	"log.level", "log.format", "log.output",
	"metrics.enabled", "metrics.namespace", "metrics.subsystem",
}

// newViper builds a Viper instance with YAML file type, the CNSIPO_ env
// prefix and a key replacer so that "database.host" resolves to
// CNSIPO_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at configPath, merges CNSIPO_* environment
// overrides, applies defaults for unset fields, and validates the result.
// An empty configPath loads from the environment only.
func Load(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config: %w: %q: %v", ErrConfigFileNotFound, configPath, err)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: %w: %q: %v", ErrConfigParseError, configPath, err)
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CNSIPO_* environment variables.
//
//	CNSIPO_<SECTION>_<FIELD>   e.g.  CNSIPO_DATABASE_HOST, CNSIPO_BATCH_SIZE
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on any error. Intended for main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
