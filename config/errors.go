package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidMultiplier indicates the cap multiplier is out of range.
	ErrInvalidMultiplier = errors.New("config: cap multiplier must be between 10000 (100%) and 30000 (300%)")

	// ErrInvalidDecimals indicates an unsupported settlement precision.
	ErrInvalidDecimals = errors.New("config: settlement decimals must be at most 18")

	// ErrNoProvisionCommand indicates no provisioning command is configured.
	ErrNoProvisionCommand = errors.New("config: provision command must not be empty")

	// ErrInvalidTimeout indicates a non-positive provisioning timeout.
	ErrInvalidTimeout = errors.New("config: provision timeout must be positive")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")
)
