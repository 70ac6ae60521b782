package transfer

import "fmt"

// RPCConfig holds the connection parameters for a settlement node's JSON-RPC
// interface.
type RPCConfig struct {
	URL      string `json:"url" yaml:"url"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Network  string `json:"network" yaml:"network"`
}

// NetworkPresets contains default RPC configurations for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18332", User: "fundsplit", Password: "fundsplit"},
	"testnet": {URL: "http://localhost:18332", User: "fundsplit", Password: "fundsplit"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing
// priority:
//  1. Explicit overrides (highest priority)
//  2. Environment variables (FUNDSPLIT_RPC_URL, FUNDSPLIT_RPC_USER, FUNDSPLIT_RPC_PASS)
//  3. Network presets (lowest priority, regtest/testnet only)
//
// For mainnet, explicit configuration is required -- there is no preset.
func ResolveConfig(overrides *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	// Layer 1: start with preset defaults if available.
	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	// Layer 2: environment variables override preset defaults.
	if env != nil {
		if v, ok := env["FUNDSPLIT_RPC_URL"]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env["FUNDSPLIT_RPC_USER"]; ok && v != "" {
			result.User = v
		}
		if v, ok := env["FUNDSPLIT_RPC_PASS"]; ok && v != "" {
			result.Password = v
		}
	}

	// Layer 3: explicit overrides have highest priority.
	if overrides != nil {
		if overrides.URL != "" {
			result.URL = overrides.URL
		}
		if overrides.User != "" {
			result.User = overrides.User
		}
		if overrides.Password != "" {
			result.Password = overrides.Password
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("transfer: %s requires explicit RPC configuration (set --rpc-url, FUNDSPLIT_RPC_URL, or config file)", network)
	}

	return &result, nil
}
