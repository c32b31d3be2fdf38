package config

import (
	"errors"
	"os/user"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, DefaultPatentTable, cfg.Database.PatentTable)
	assert.Equal(t, DefaultAuxTable, cfg.Database.AuxTable)
	assert.Equal(t, DefaultBatchSize, cfg.Batch.Size)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Empty(t, cfg.RefData.LocationFile)
	assert.False(t, cfg.Batch.DryRun)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Batch.Size = 50
	cfg.Database.AuxTable = "aux"
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Batch.Size)
	assert.Equal(t, "aux", cfg.Database.AuxTable)
}

func TestApplyDefaults_DatabaseUser(t *testing.T) {
	orig := currentUser
	t.Cleanup(func() { currentUser = orig })

	currentUser = func() (*user.User, error) { return &user.User{Username: "analyst"}, nil }
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, "analyst", cfg.Database.User)

	currentUser = func() (*user.User, error) { return nil, errors.New("no passwd entry") }
	cfg = &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, DefaultDBUser, cfg.Database.User)

	cfg = &Config{}
	cfg.Database.User = "etl"
	ApplyDefaults(cfg)
	assert.Equal(t, "etl", cfg.Database.User)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

//Personal.AI order the ending
