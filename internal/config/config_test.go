package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.PostgresAddress)
	assert.Equal(t, "5433", cfg.PostgresPort)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, 4, cfg.OperatorWorkers)
	assert.True(t, cfg.RecurringEnabled)
	assert.Equal(t, time.Hour, cfg.RecurringInterval)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	content := "http_port: \"9090\"\nstorage_backend: memory\nrecurring_interval: 15m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("POSTGRES_DB", "ledger")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9191", cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, 15*time.Minute, cfg.RecurringInterval)
	assert.Equal(t, "ledger", cfg.PostgresDB)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := &Config{
		HTTPPort:             "http",
		StorageBackend:       "sqlite",
		OperatorWorkers:      0,
		RecurringEnabled:     true,
		RecurringConcurrency: 1,
		AMQPURL:              "http://broker",
		AMQPExchange:         "ledger",
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
	assert.Contains(t, err.Error(), "invalid storage backend")
	assert.Contains(t, err.Error(), "invalid operator workers")
	assert.Contains(t, err.Error(), "invalid recurring interval")
	assert.Contains(t, err.Error(), "invalid AMQP URL scheme")
}
