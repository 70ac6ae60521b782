package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.ProvisionCommand = []string{"npx", "hardhat", "run", "deploy.js"}
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, uint64(12000), cfg.CapMultiplierBps)
	assert.Equal(t, uint32(8), cfg.SettlementDecimals)
	assert.Equal(t, 60, cfg.ProvisionTimeoutSeconds)

	// DataDir should end with .fundsplit (the full path depends on the
	// home directory).
	assert.Equal(t, ".fundsplit", filepath.Base(cfg.DataDir))
	assert.Equal(t, "deployments.db", filepath.Base(cfg.RecordStorePath()))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "fundsplit.yaml")

	original := validConfig()
	original.Network = "regtest"
	original.CapMultiplierBps = 15000
	original.RPC.URL = "http://localhost:18332"

	require.NoError(t, SaveConfig(path, original))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadConfig_NotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fundsplit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: testnet\n"), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "info", cfg.LogLevel)             // default preserved
	assert.Equal(t, uint64(12000), cfg.CapMultiplierBps) // default preserved
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, ValidateConfig(validConfig()))

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad network", func(c *Config) { c.Network = "devnet" }, ErrInvalidNetwork},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"multiplier below 100%", func(c *Config) { c.CapMultiplierBps = 9999 }, ErrInvalidMultiplier},
		{"multiplier above 300%", func(c *Config) { c.CapMultiplierBps = 30001 }, ErrInvalidMultiplier},
		{"decimals too large", func(c *Config) { c.SettlementDecimals = 19 }, ErrInvalidDecimals},
		{"no provision command", func(c *Config) { c.ProvisionCommand = nil }, ErrNoProvisionCommand},
		{"zero timeout", func(c *Config) { c.ProvisionTimeoutSeconds = 0 }, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, ValidateConfig(cfg), tt.wantErr)
		})
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "DEBUG"
	assert.NoError(t, ValidateConfig(cfg))
}
