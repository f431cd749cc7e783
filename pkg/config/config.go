package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Journal drivers.
const (
	JournalMemory   = "memory"
	JournalPostgres = "postgres"
)

// EnvDatabasePassword overrides database.password when set.
const EnvDatabasePassword = "ERC20_DATABASE_PASSWORD"

// Config represents the ledger service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Token    TokenConfig    `yaml:"token"`
	EthRPC   EthRPCConfig   `yaml:"eth_rpc"`
	Journal  JournalConfig  `yaml:"journal"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Auth     AuthConfig     `yaml:"auth"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host           string        `yaml:"host" default:"0.0.0.0"`
	Port           int           `yaml:"port" default:"8081" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" default:"15s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"30s" validate:"gt=0"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// TokenConfig contains the immutable token metadata and the genesis holder.
// TotalSupply is expressed in base units.
type TokenConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Symbol      string `yaml:"symbol" validate:"required"`
	Decimals    uint8  `yaml:"decimals" default:"18" validate:"lte=77"`
	TotalSupply string `yaml:"total_supply" validate:"required,numeric"`
	Creator     string `yaml:"creator" validate:"required,eth_addr"`
	Address     string `yaml:"address" validate:"required,eth_addr"`
}

// EthRPCConfig contains Ethereum JSON-RPC facade settings
type EthRPCConfig struct {
	Enabled          bool   `yaml:"enabled" default:"true"`
	ChainID          uint64 `yaml:"chain_id" default:"31337" validate:"gt=0"`
	GasPriceWei      string `yaml:"gas_price_wei" default:"1000000000" validate:"numeric"`
	GasLimit         uint64 `yaml:"gas_limit" default:"100000"`
	NativeBalanceWei string `yaml:"native_balance_wei" default:"0" validate:"numeric"`
}

// JournalConfig selects where transactions and logs are recorded
type JournalConfig struct {
	Driver string `yaml:"driver" default:"memory" validate:"oneof=memory postgres"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"erc20_ledger"`
	SSLMode  string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable require verify-ca verify-full"`
	// The journal serializes block allocation, so a small pool suffices.
	MaxOpenConns    int           `yaml:"max_open_conns" default:"10" validate:"min=1"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"30m"`
	DialTimeout     time.Duration `yaml:"dial_timeout" default:"5s"`
}

// MetricsConfig contains Prometheus settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics" validate:"startswith=/"`
}

// AuthConfig enables bearer JWT authentication for REST mutations in
// addition to EIP-191 body signatures. Empty JWKSURL disables it.
type AuthConfig struct {
	JWKSURL      string `yaml:"jwks_url" validate:"omitempty,url"`
	Issuer       string `yaml:"issuer"`
	AddressClaim string `yaml:"address_claim" default:"evm_address"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" default:"30s"`
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load without the file access.
func Parse(data []byte) (*Config, error) {
	cfg := new(Config)
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if pw, ok := os.LookupEnv(EnvDatabasePassword); ok {
		cfg.Database.Password = pw
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks struct constraints plus the cross-section rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Journal.Driver == JournalPostgres {
		if c.Database.Host == "" {
			return errors.New("database.host is required for the postgres journal")
		}
		if c.Database.Database == "" {
			return errors.New("database.database is required for the postgres journal")
		}
	}
	return nil
}
