package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/atm-ledger-system/internal/config"
)

func testConfig(backend string) config.Config {
	return config.Config{
		StorageBackend: backend,
		AdminUsername:  "admin",
		AdminPassword:  "admin123",
		PINHashCost:    4,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

func TestRun_FileBackend(t *testing.T) {
	cfg := testConfig(config.BackendFile)
	cfg.DataFile = filepath.Join(t.TempDir(), "accounts_data.json")
	log, _ := test.NewNullLogger()

	var out bytes.Buffer
	err := run(context.Background(), cfg, log, strings.NewReader("1\n1001\n1234\n1\n7\n3\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Current Balance: ₹15000.00")

	_, err = os.Stat(cfg.DataFile)
	assert.NoError(t, err, "seeded ledger is written")
}

func TestRun_StorageErrorIsReturned(t *testing.T) {
	cfg := testConfig(config.BackendRedis)
	cfg.RedisAddr = "127.0.0.1:1"
	log, _ := test.NewNullLogger()

	err := run(context.Background(), cfg, log, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "open redis storage")
}

func TestAdminGate_PrefersConfiguredHash(t *testing.T) {
	cfg := testConfig(config.BackendMemory)
	cfg.AdminPasswordHash = "$2a$04$notarealhashnotarealhashnotarealhashnotarealhashnot"

	gate, err := adminGate(cfg, nil)
	require.NoError(t, err)
	assert.False(t, gate.Check("admin", "admin123"), "the plain password is ignored when a hash is set")
}
