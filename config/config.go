// Package config holds the typed, validate-once configuration for the
// revenue-splitting service: cap policy, provisioning command, settlement
// node connection, and ambient settings. Values applied to a ledger at
// deployment are immutable on that ledger regardless of later config edits.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fundsplit/libfundsplit-go/transfer"
)

// Config is the full service configuration.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	Network  string `yaml:"network"`
	LogLevel string `yaml:"log_level"`

	// CapMultiplierBps scales the funding target into the repayment cap,
	// in basis points: 12000 = 120%.
	CapMultiplierBps uint64 `yaml:"cap_multiplier_bps"`

	// SettlementDecimals is the settlement currency precision.
	SettlementDecimals uint32 `yaml:"settlement_decimals"`

	// ProvisionCommand is the argv used to deploy a ledger.
	ProvisionCommand []string `yaml:"provision_command"`

	// ProvisionTimeoutSeconds bounds one provisioning attempt.
	ProvisionTimeoutSeconds int `yaml:"provision_timeout_seconds"`

	RPC transfer.RPCConfig `yaml:"rpc"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:                 filepath.Join(home, ".fundsplit"),
		Network:                 "mainnet",
		LogLevel:                "info",
		CapMultiplierBps:        12000,
		SettlementDecimals:      8,
		ProvisionTimeoutSeconds: 60,
	}
}

// ProvisionTimeout returns the provisioning timeout as a duration.
func (c Config) ProvisionTimeout() time.Duration {
	return time.Duration(c.ProvisionTimeoutSeconds) * time.Second
}

// RecordStorePath returns the deployment record database path under DataDir.
func (c Config) RecordStorePath() string {
	return filepath.Join(c.DataDir, "deployments.db")
}

// LoadConfig reads a YAML configuration file. Fields absent from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration as YAML, creating the parent directory
// if needed.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
