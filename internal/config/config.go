package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration for the operation journal
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// NATSConfig holds NATS JetStream configuration for the event relay sink
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// ProtocolConfig holds the protocol bootstrap parameters
type ProtocolConfig struct {
	// OwnerAddress is the platform owner; always an admin and irremovable
	OwnerAddress string `mapstructure:"owner_address"`
	// TreasuryAddress receives the platform's share of generated yield
	TreasuryAddress string `mapstructure:"treasury_address"`
	// VaultAddress is the identity of the yield vault at the token boundary
	VaultAddress string `mapstructure:"vault_address"`
	// FactoryAddress is the identity of the campaign factory
	FactoryAddress string `mapstructure:"factory_address"`
	// FeeShareBps is the platform fee share in basis points (capped at 500)
	FeeShareBps uint64 `mapstructure:"fee_share_bps"`
	// GracePeriodDays gates admin recovery actions after a campaign ends
	GracePeriodDays uint64 `mapstructure:"grace_period_days"`
	// TokenListPath optionally seeds the token registry at boot
	TokenListPath string `mapstructure:"token_list_path"`
}

// EthereumConfig holds the RPC endpoints for the token and pool boundary
type EthereumConfig struct {
	RPCURL             string `mapstructure:"rpc_url"`
	LendingPoolAddress string `mapstructure:"lending_pool_address"`
}

// NodeConfig holds configuration for the protocol node
type NodeConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Protocol   ProtocolConfig `mapstructure:"protocol"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
}

// LoadNodeConfig loads configuration for the protocol node
func LoadNodeConfig(configFile string, envPath string) (*NodeConfig, error) {
	v := configureViper("protocol-node", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "PROTOCOL_EVENTS")
	v.SetDefault("nats.connection_name", "protocol-node")
	v.SetDefault("protocol.fee_share_bps", 100)
	v.SetDefault("protocol.grace_period_days", 30)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config NodeConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Protocol.OwnerAddress == "" {
		return nil, errors.New("protocol.owner_address is required")
	}
	if config.Protocol.TreasuryAddress == "" {
		return nil, errors.New("protocol.treasury_address is required")
	}

	return &config, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("SPROUTFUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// This is required for viper to map env vars to config struct fields when no config file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Protocol
		"protocol.owner_address",
		"protocol.treasury_address",
		"protocol.vault_address",
		"protocol.factory_address",
		"protocol.fee_share_bps",
		"protocol.grace_period_days",
		"protocol.token_list_path",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.lending_pool_address",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
