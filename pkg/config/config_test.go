package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
token:
  name: GBC Token
  symbol: GBC
  total_supply: "10000000000000000000"
  creator: "0x1000000000000000000000000000000000000001"
  address: "0x00000000000000000000000000000000000000aa"
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, uint8(18), cfg.Token.Decimals)
	assert.True(t, cfg.EthRPC.Enabled)
	assert.Equal(t, uint64(31337), cfg.EthRPC.ChainID)
	assert.Equal(t, JournalMemory, cfg.Journal.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 30*time.Second, cfg.Shutdown.Timeout)
}

func TestParse_ExplicitValuesWin(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `
server:
  port: 9000
eth_rpc:
  enabled: false
  chain_id: 5
logging:
  format: console
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.EthRPC.Enabled)
	assert.Equal(t, uint64(5), cfg.EthRPC.ChainID)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing token", `server: {port: 8080}`},
		{"bad creator", `
token:
  name: N
  symbol: S
  total_supply: "1"
  creator: "not-an-address"
  address: "0x00000000000000000000000000000000000000aa"
`},
		{"bad driver", minimalYAML + "journal:\n  driver: sqlite\n"},
		{"bad level", minimalYAML + "logging:\n  level: loud\n"},
		{"non numeric supply", `
token:
  name: N
  symbol: S
  total_supply: "ten"
  creator: "0x1000000000000000000000000000000000000001"
  address: "0x00000000000000000000000000000000000000aa"
`},
		{"postgres without host", minimalYAML + "journal:\n  driver: postgres\ndatabase:\n  host: \"\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoad_EnvOverridesPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML+"database:\n  password: from-file\n"), 0o600))

	t.Setenv(EnvDatabasePassword, "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger(LoggingConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.log")
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)

	logger.Debug("dropped")
	logger.Info("transfer applied")
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"transfer applied"`)
	assert.Contains(t, string(raw), `"service":"erc20d"`)
	assert.NotContains(t, string(raw), "dropped")
}
