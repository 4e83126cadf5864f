package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sproutfund/protocol-core/internal/config"
)

func TestLoadNodeConfig_FromEnv(t *testing.T) {
	t.Setenv("SPROUTFUND_PROTOCOL_OWNER_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("SPROUTFUND_PROTOCOL_TREASURY_ADDRESS", "0x2222222222222222222222222222222222222222")
	t.Setenv("SPROUTFUND_DATABASE_HOST", "localhost")
	t.Setenv("SPROUTFUND_DATABASE_USER", "protocol")
	t.Setenv("SPROUTFUND_DATABASE_DBNAME", "protocol_journal")
	t.Setenv("SPROUTFUND_NATS_URL", "nats://localhost:4222")
	t.Setenv("SPROUTFUND_DEBUG", "true")

	cfg, err := config.LoadNodeConfig("", t.TempDir())
	assert.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.Protocol.OwnerAddress)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", cfg.Protocol.TreasuryAddress)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}

func TestLoadNodeConfig_Defaults(t *testing.T) {
	t.Setenv("SPROUTFUND_PROTOCOL_OWNER_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("SPROUTFUND_PROTOCOL_TREASURY_ADDRESS", "0x2222222222222222222222222222222222222222")

	cfg, err := config.LoadNodeConfig("", t.TempDir())
	assert.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10, cfg.NATS.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
	assert.Equal(t, "PROTOCOL_EVENTS", cfg.NATS.StreamName)
	assert.Equal(t, "protocol-node", cfg.NATS.ConnectionName)
	assert.Equal(t, uint64(100), cfg.Protocol.FeeShareBps)
	assert.Equal(t, uint64(30), cfg.Protocol.GracePeriodDays)
}

func TestLoadNodeConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `debug: false
protocol:
  owner_address: "0x1111111111111111111111111111111111111111"
  treasury_address: "0x2222222222222222222222222222222222222222"
  vault_address: "0x3333333333333333333333333333333333333333"
  factory_address: "0x4444444444444444444444444444444444444444"
  fee_share_bps: 250
  grace_period_days: 14
database:
  host: "db.internal"
  port: 5433
ethereum:
  rpc_url: "https://rpc.example.org"
`
	assert.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	cfg, err := config.LoadNodeConfig(configFile, dir)
	assert.NoError(t, err)

	assert.Equal(t, uint64(250), cfg.Protocol.FeeShareBps)
	assert.Equal(t, uint64(14), cfg.Protocol.GracePeriodDays)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "https://rpc.example.org", cfg.Ethereum.RPCURL)
}

func TestLoadNodeConfig_RequiredFields(t *testing.T) {
	t.Run("owner address missing", func(t *testing.T) {
		t.Setenv("SPROUTFUND_PROTOCOL_OWNER_ADDRESS", "")
		t.Setenv("SPROUTFUND_PROTOCOL_TREASURY_ADDRESS", "0x2222222222222222222222222222222222222222")

		_, err := config.LoadNodeConfig("", t.TempDir())
		assert.ErrorContains(t, err, "protocol.owner_address is required")
	})

	t.Run("treasury address missing", func(t *testing.T) {
		t.Setenv("SPROUTFUND_PROTOCOL_OWNER_ADDRESS", "0x1111111111111111111111111111111111111111")
		t.Setenv("SPROUTFUND_PROTOCOL_TREASURY_ADDRESS", "")

		_, err := config.LoadNodeConfig("", t.TempDir())
		assert.ErrorContains(t, err, "protocol.treasury_address is required")
	})
}

func TestDatabaseDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "protocol",
		Password: "secret",
		DBName:   "protocol_journal",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=protocol password=secret dbname=protocol_journal sslmode=disable", cfg.DSN())
}
