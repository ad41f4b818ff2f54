// Package superfluid implements commands for Superfluid streams and super
// tokens.
package superfluid

import (
	"context"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
)

// Name is the module name.
const Name = "superfluid"

// ConfigForwarder overrides the CFAv1Forwarder address:
// set $superfluid:forwarder 0x...
const ConfigForwarder = "forwarder"

// DefaultForwarder is the CFAv1Forwarder deployed at the same address on
// every supported network.
var DefaultForwarder = common.HexToAddress("0xcfA132E353cB4E398080B9700609bb008eceB125")

var (
	setFlowrateFn = abiutil.MustParseFunction("setFlowrate(address,address,int96)")
	upgradeFn     = abiutil.MustParseFunction("upgrade(uint256)")
	downgradeFn   = abiutil.MustParseFunction("downgrade(uint256)")
)

// Definition returns the superfluid module definition.
func Definition() *module.Definition {
	return &module.Definition{
		Name:        Name,
		Alias:       "sf",
		Description: "Superfluid money streams and super token wrapping",
		Commands: map[string]module.Command{
			"flow": {
				Args:  module.Exactly(3),
				Usage: "flow <superToken> <receiver> <flowRate>",
				Run:   flow,
			},
			"upgrade": {
				Args:  module.Exactly(2),
				Usage: "upgrade <superToken> <amount>",
				Run:   wrap(upgradeFn),
			},
			"downgrade": {
				Args:  module.Exactly(2),
				Usage: "downgrade <superToken> <amount>",
				Run:   wrap(downgradeFn),
			},
		},
	}
}

// flow sets the flow rate (tokens per second) from the sender to receiver.
// A zero rate deletes the stream.
func flow(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	values, err := env.InterpretNodes(ctx, c.Args, module.Strict)
	if err != nil {
		return nil, err
	}
	owner := module.Owner(m, c)

	token, ok := abiutil.ToAddress(values[0])
	if !ok {
		return nil, module.NewInvalidAddressError(c.Args[0], owner, abiutil.Describe(values[0]))
	}
	receiver, ok := abiutil.ToAddress(values[1])
	if !ok {
		return nil, module.NewInvalidAddressError(c.Args[1], owner, abiutil.Describe(values[1]))
	}

	forwarder := DefaultForwarder
	if v, ok := m.ConfigValue(env, ConfigForwarder); ok {
		if forwarder, ok = abiutil.ToAddress(v); !ok {
			return nil, module.NewCommandError(m, c, "invalid %s %s. Expected an address", ConfigForwarder, abiutil.Describe(v))
		}
	}

	data, err := setFlowrateFn.Encode(token, receiver, values[2])
	if err != nil {
		return nil, module.NewCommandError(m, c, "invalid flow rate: %s", err.Error())
	}
	return []module.Action{{To: forwarder, Data: data}}, nil
}

// wrap returns a command calling fn(amount) on a super token.
func wrap(fn *abiutil.Function) module.CommandFunc {
	return func(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
		values, err := env.InterpretNodes(ctx, c.Args, module.Strict)
		if err != nil {
			return nil, err
		}
		token, ok := abiutil.ToAddress(values[0])
		if !ok {
			return nil, module.NewInvalidAddressError(c.Args[0], module.Owner(m, c), abiutil.Describe(values[0]))
		}
		data, err := fn.Encode(values[1])
		if err != nil {
			return nil, module.NewCommandError(m, c, "invalid amount: %s", err.Error())
		}
		return []module.Action{{To: token, Data: data}}, nil
	}
}
