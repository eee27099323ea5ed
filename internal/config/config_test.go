package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range bindings {
		t.Setenv(env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "accounts_data.json", cfg.DataFile)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "atm:accounts", cfg.RedisKey)
	assert.Equal(t, "atm.transactions", cfg.KafkaTopic)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "admin123", cfg.AdminPassword)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.PublishingEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PIN_HASH_COST", "4")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.PublishingEnabled())
	assert.Equal(t, 4, cfg.PINHashCost)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("postgres needs a url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_BACKEND", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("postgres with url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_BACKEND", "postgres")
		t.Setenv("DATABASE_URL", "postgres://atm@localhost/atm?sslmode=disable")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	})

	t.Run("unknown backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_BACKEND", "mongo")
		_, err := Load()
		assert.ErrorContains(t, err, "mongo")
	})
}
