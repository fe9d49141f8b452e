// Package config handles loading, parsing, and validating gateway
// configuration. Defaults come first, then an optional YAML file, then
// environment variables. The backend RPC API key has one extra fallback:
// the OS keyring (see secret.go).
package config

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by Load.
const (
	EnvRPCEndpoint = "SOLANA_RPC_ENDPOINT"
	EnvRPCAPIKey   = "SOLANA_RPC_API_KEY"
	EnvPortFloor   = "ASSETGATE_PORT"
	EnvLogLevel    = "ASSETGATE_LOG_LEVEL"
)

// DefaultRPCEndpoint is the public endpoint used when none is configured.
const DefaultRPCEndpoint = "https://api.mainnet-beta.solana.com"

// DefaultPortFloor is the first port the allocator probes.
const DefaultPortFloor = 3001

// ServerConfig contains settings for the gateway's HTTP surface.
type ServerConfig struct {
	// Name is the human-readable server name reported in logs.
	Name string `yaml:"name"`
	// PortFloor is the first candidate port; the allocator scans upward
	// from here until it finds a free one.
	PortFloor int `yaml:"port_floor"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// RPCConfig contains settings for the backend DAS query endpoint.
type RPCConfig struct {
	// Endpoint is the JSON-RPC URL of the DAS-capable node.
	Endpoint string `yaml:"endpoint"`
	// APIKey, when set, is appended to requests as an api-key query
	// parameter. Optional; public endpoints work without one.
	APIKey string `yaml:"api_key,omitempty"`
}

// Config is the root configuration for the gateway process.
type Config struct {
	Server ServerConfig `yaml:"server"`
	RPC    RPCConfig    `yaml:"rpc"`
}

// DefaultConfig returns a configuration populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "assetgate",
			PortFloor: DefaultPortFloor,
			LogLevel:  "info",
		},
		RPC: RPCConfig{
			Endpoint: DefaultRPCEndpoint,
		},
	}
}

// LoadFromFile reads a YAML config file over the defaults. A missing file
// is not an error; defaults apply.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with values from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvRPCEndpoint); v != "" {
		c.RPC.Endpoint = v
	}
	if v := os.Getenv(EnvRPCAPIKey); v != "" {
		c.RPC.APIKey = v
	}
	if v := os.Getenv(EnvPortFloor); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p <= 65535 {
			c.Server.PortFloor = p
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Server.LogLevel = v
	}
}

// Load builds the effective configuration: defaults, then the YAML file
// at path (if any), then environment overrides, then the keyring
// fallback for the RPC API key.
func Load(path string) (*Config, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if cfg.RPC.APIKey == "" {
		if key, err := apiKeyFromKeyring(); err == nil && key != "" {
			cfg.RPC.APIKey = key
		}
	}
	return cfg, nil
}

// Validate checks the configuration for values the process cannot start
// with.
func (c *Config) Validate() error {
	if c.RPC.Endpoint == "" {
		return errors.New("rpc endpoint must not be empty")
	}
	if c.Server.PortFloor <= 0 || c.Server.PortFloor > 65535 {
		return errors.Newf("port floor %d outside valid range", c.Server.PortFloor)
	}
	return nil
}
