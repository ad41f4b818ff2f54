package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// OutputModes lists the accepted values of the output key.
var OutputModes = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.From) {
		return fmt.Errorf("invalid from address %q: expected a 0x-prefixed 20-byte hex address", c.From)
	}
	if c.ENSRegistry != "" && !common.IsHexAddress(c.ENSRegistry) {
		return fmt.Errorf("invalid ens_registry %q: expected a 0x-prefixed 20-byte hex address", c.ENSRegistry)
	}
	if !slices.Contains(OutputModes, c.OutputFormat) {
		return fmt.Errorf("invalid output %q: expected one of %s", c.OutputFormat, strings.Join(OutputModes, ", "))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: expected text or json", c.LogFormat)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency %d: must be at least 1", c.Concurrency)
	}
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}
	return nil
}

// FromAddress returns the account actions are prepared for.
func (c *Config) FromAddress() common.Address {
	return common.HexToAddress(c.From)
}

// ENSRegistryAddress returns the configured ENS registry override, or the
// zero address when none is set.
func (c *Config) ENSRegistryAddress() common.Address {
	if c.ENSRegistry == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.ENSRegistry)
}
