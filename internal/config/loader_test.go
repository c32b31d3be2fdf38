package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
  mode: debug
database:
  host: db.internal
  port: 5433
  user: sipo
  password: secret
  db_name: cnsipo
  patent_table: patent_detail
  aux_table: patent_aux
refdata:
  location_file: /etc/cnsipo/LocList.xml
  university_file: none
batch:
  size: 500
  concurrency: 2
log:
  level: debug
  format: text
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "/etc/cnsipo/LocList.xml", cfg.RefData.LocationFile)
	assert.Equal(t, "none", cfg.RefData.UniversityFile)
	assert.Equal(t, 500, cfg.Batch.Size)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, DefaultMetricsNS, cfg.Metrics.Namespace)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "invalid_yaml: ["))
	assert.ErrorIs(t, err, ErrConfigParseError)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "batch:\n  size: -1\n"))
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CNSIPO_DATABASE_HOST", "db-host")
	t.Setenv("CNSIPO_BATCH_SIZE", "250")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "db-host", cfg.Database.Host)
	assert.Equal(t, 250, cfg.Batch.Size)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CNSIPO_DATABASE_AUX_TABLE", "aux_2024")
	t.Setenv("CNSIPO_BATCH_DRY_RUN", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "aux_2024", cfg.Database.AuxTable)
	assert.True(t, cfg.Batch.DryRun)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

//Personal.AI order the ending
