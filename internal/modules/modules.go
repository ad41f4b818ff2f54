// Package modules assembles the registry of built-in modules.
package modules

import (
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/internal/modules/aragonos"
	"github.com/CommonsSwarm/evmscripter/internal/modules/giveth"
	"github.com/CommonsSwarm/evmscripter/internal/modules/std"
	"github.com/CommonsSwarm/evmscripter/internal/modules/superfluid"
)

// Default returns a registry holding every built-in module.
func Default() *module.Registry {
	return module.NewRegistry().MustRegister(
		std.Definition(),
		aragonos.Definition(),
		superfluid.Definition(),
		giveth.Definition(),
	)
}
