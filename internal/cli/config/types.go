// Package config provides configuration management for the evmcl CLI.
//
// Values are layered from defaults, an evmcl.yaml file, EVMCL_ environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"time"

	"github.com/CommonsSwarm/evmscripter/internal/interpreter"
	"github.com/CommonsSwarm/evmscripter/internal/ipfs"
)

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	ReadTimeout time.Duration `koanf:"read_timeout"`
}

// Config holds all CLI configuration options.
type Config struct {
	RPCURL       string        `koanf:"rpc_url"`
	From         string        `koanf:"from"`
	IPFSGateway  string        `koanf:"ipfs_gateway"`
	ENSRegistry  string        `koanf:"ens_registry"`
	Concurrency  int           `koanf:"concurrency"`
	OutputFormat string        `koanf:"output"`
	LogLevel     string        `koanf:"log_level"`
	LogFormat    string        `koanf:"log_format"`
	Verbose      bool          `koanf:"verbose"`
	Server       *ServerConfig `koanf:"server"`

	// ProjectRoot is the directory the config file was found in, or the
	// working directory.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultRPCURL      = "http://localhost:8545"
	DefaultFrom        = "0x0000000000000000000000000000000000000000"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultPort        = 8745
	DefaultReadTimeout = 10 * time.Second
	DefaultConcurrency = interpreter.DefaultConcurrency
	DefaultIPFSGateway = ipfs.DefaultGateway
)

// Config file names searched for, in order.
var configFileNames = []string{"evmcl.yaml", "evmcl.yml"}

// GetServerConfig returns the server config with defaults applied for any
// unset values.
func (c *Config) GetServerConfig() ServerConfig {
	s := ServerConfig{Port: DefaultPort, ReadTimeout: DefaultReadTimeout}
	if c.Server == nil {
		return s
	}
	if c.Server.Port != 0 {
		s.Port = c.Server.Port
	}
	if c.Server.ReadTimeout > 0 {
		s.ReadTimeout = c.Server.ReadTimeout
	}
	return s
}
