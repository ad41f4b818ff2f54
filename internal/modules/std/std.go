// Package std implements the standard module, loaded into every script. It
// owns unprefixed commands: module loading, variables, and arbitrary
// contract calls.
package std

import (
	"github.com/CommonsSwarm/evmscripter/internal/module"
)

// Name is the module name.
const Name = "std"

// Definition returns the std module definition.
func Definition() *module.Definition {
	return &module.Definition{
		Name:        Name,
		Description: "Built-in commands and helpers",
		Commands: map[string]module.Command{
			"load": {
				Args:  module.Range(1, 3),
				Usage: "load <module> [as <alias>]",
				Run:   load,
			},
			"set": {
				Args:  module.Exactly(2),
				Usage: "set $<name> <value> | set $<module>:<name> <value>",
				Run:   set,
			},
			"exec": {
				Args:    module.AtLeast(2),
				Options: []string{"value"},
				Usage:   "exec <target> <signature> [params...] [--value <amount>]",
				Run:     exec,
			},
			"raw": {
				Args:    module.Exactly(2),
				Options: []string{"value"},
				Usage:   "raw <target> <calldata> [--value <amount>]",
				Run:     raw,
			},
		},
		Helpers: map[string]module.Helper{
			"me":       {Args: module.Exactly(0), Usage: "@me()", Run: me},
			"chainId":  {Args: module.Exactly(0), Usage: "@chainId()", Run: chainID},
			"id":       {Args: module.Exactly(1), Usage: "@id(<text>)", Run: id},
			"namehash": {Args: module.Exactly(1), Usage: "@namehash(<name>)", Run: namehash},
			"get":      {Args: module.Exactly(2), Usage: "@get(<address>, <function>:(<returns>))", Run: get},
		},
	}
}
