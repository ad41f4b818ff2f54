// Package aragonos implements commands for Aragon DAOs: connecting to a
// kernel, installing apps from APM repos and managing ACL permissions.
//
// All commands except connect require an enclosing connect block. The DAO
// state they share lives on the interpreter's DAO-context stack.
package aragonos

import (
	"context"
	"fmt"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/dao"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
)

// Name is the module name.
const Name = "aragonos"

// Module variables.
const (
	// ConfigENSResolver overrides the ENS registry used for repo and DAO
	// names: set $aragonos:ensResolver 0x...
	ConfigENSResolver = "ensResolver"
)

var (
	kernelACLFn      = abiutil.MustParseFunction("acl():(address)")
	newAppInstanceFn = abiutil.MustParseFunction("newAppInstance(bytes32,address,bytes,bool)")

	repoLatestFn    = abiutil.MustParseFunction("getLatest():(uint16[3],address,bytes)")
	repoByVersionFn = abiutil.MustParseFunction("getBySemanticVersion(uint16[3]):(uint16[3],address,bytes)")

	createPermissionFn        = abiutil.MustParseFunction("createPermission(address,address,bytes32,address)")
	grantPermissionFn         = abiutil.MustParseFunction("grantPermission(address,address,bytes32)")
	revokePermissionFn        = abiutil.MustParseFunction("revokePermission(address,address,bytes32)")
	removePermissionManagerFn = abiutil.MustParseFunction("removePermissionManager(address,bytes32)")
	getPermissionManagerFn    = abiutil.MustParseFunction("getPermissionManager(address,bytes32):(address)")
	hasPermissionFn           = abiutil.MustParseFunction("hasPermission(address,address,bytes32):(bool)")
)

// Definition returns the aragonos module definition.
func Definition() *module.Definition {
	return &module.Definition{
		Name:        Name,
		Alias:       "ar",
		Description: "Aragon DAO app installation and permissions",
		Commands: map[string]module.Command{
			"connect": {
				Args:  module.Exactly(2),
				Usage: "connect <dao> ( <commands> )",
				Run:   connect,
			},
			"install": {
				Args:    module.AtLeast(1),
				Options: []string{"version"},
				Usage:   "install <app>[.<registry>][:<label>] [initParams...] [--version <x.y.z>]",
				Run:     install,
			},
			"grant": {
				Args:  module.Range(3, 4),
				Usage: "grant <grantee> <app> <role> [manager]",
				Run:   grant,
			},
			"revoke": {
				Args:  module.Range(3, 4),
				Usage: "revoke <grantee> <app> <role> [removeManager]",
				Run:   revoke,
			},
		},
		Helpers: map[string]module.Helper{
			"aragonEns": {
				Args:  module.Exactly(1),
				Usage: "@aragonEns(<name>)",
				Run:   aragonEns,
			},
		},
	}
}

// currentDAO returns the innermost connected DAO or fails the command.
func currentDAO(m *module.Module, c *parser.CommandExpression, env module.Env) (*dao.Context, error) {
	dc, ok := env.DAOs().Current()
	if !ok {
		return nil, module.NewCommandError(m, c, `must be used within a "connect" command`)
	}
	return dc, nil
}

// ensRegistry picks the registry used for name resolution: the module
// variable, then the configured override, then the chain default.
func ensRegistry(ctx context.Context, m *module.Module, env module.Env) (common.Address, error) {
	if v, ok := m.ConfigValue(env, ConfigENSResolver); ok {
		addr, ok := abiutil.ToAddress(v)
		if !ok {
			return common.Address{}, fmt.Errorf("invalid %s %s. Expected an address", ConfigENSResolver, abiutil.Describe(v))
		}
		return addr, nil
	}
	if addr, ok := env.ENSRegistry(); ok {
		return addr, nil
	}

	chainID, err := env.Client().ChainID(ctx)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := chain.DefaultENSRegistry(chainID)
	if !ok {
		return common.Address{}, fmt.Errorf("no ENS registry known for chain %s. Set $%s:%s", chainID, Name, ConfigENSResolver)
	}
	return addr, nil
}

// resolveENS resolves name with the module's registry. The address is zero
// when the name has no record.
func resolveENS(ctx context.Context, m *module.Module, env module.Env, name string) (common.Address, error) {
	registry, err := ensRegistry(ctx, m, env)
	if err != nil {
		return common.Address{}, err
	}
	return env.Names().Resolve(ctx, name, registry)
}

// nodeText renders an argument as written, for error messages.
func nodeText(n parser.Node, v any) string {
	switch lit := n.(type) {
	case *parser.ProbableIdentifier:
		return lit.Value
	case *parser.AddressLiteral:
		return lit.Raw
	case *parser.NumberLiteral:
		return lit.Raw
	}
	return abiutil.Describe(v)
}
