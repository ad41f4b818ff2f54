// Package giveth implements donations to Giveth projects and GIVbacks
// distributions through the GIVbacks relayer.
package giveth

import (
	"context"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
)

// Name is the module name.
const Name = "giveth"

var transferFn = abiutil.MustParseFunction("transfer(address,uint256)")

// Definition returns the giveth module definition.
func Definition() *module.Definition {
	return &module.Definition{
		Name:        Name,
		Description: "Donations to Giveth projects and GIVbacks distributions",
		Commands: map[string]module.Command{
			"donate": {
				Args:    module.Exactly(2),
				Options: []string{"token"},
				Usage:   "donate <recipient> <amount> [--token <erc20>]",
				Run:     donate,
			},
			"initiate-givbacks": {
				Args:    module.Exactly(2),
				Options: []string{"batch-size", "data"},
				Usage:   "initiate-givbacks <recipients> <amounts> [--batch-size n] [--data <ref>]",
				Run:     initiateGivbacks,
			},
			"finalize-givbacks": {
				Args:    module.Exactly(2),
				Options: []string{"batch-size"},
				Usage:   "finalize-givbacks <recipients> <amounts> [--batch-size n]",
				Run:     finalizeGivbacks,
			},
		},
	}
}

// donate sends amount to recipient: an ERC20 transfer when --token is
// given, a native value transfer otherwise.
func donate(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	values, err := env.InterpretNodes(ctx, c.Args, module.Strict)
	if err != nil {
		return nil, err
	}
	owner := module.Owner(m, c)

	recipient, ok := abiutil.ToAddress(values[0])
	if !ok {
		return nil, module.NewInvalidAddressError(c.Args[0], owner, abiutil.Describe(values[0]))
	}
	amount, ok := abiutil.ToBigInt(values[1])
	if !ok || amount.Sign() <= 0 {
		return nil, module.NewCommandError(m, c, "invalid amount %s. Expected a positive number", abiutil.Describe(values[1]))
	}

	tokenValue, hasToken, err := module.Option(ctx, env, c, "token", module.Strict)
	if err != nil {
		return nil, err
	}
	if !hasToken {
		return []module.Action{{To: recipient, Data: []byte{}, Value: amount}}, nil
	}

	token, ok := abiutil.ToAddress(tokenValue)
	if !ok {
		return nil, module.NewInvalidAddressError(c.Opt("token").Value, owner, abiutil.Describe(tokenValue))
	}
	data, err := transferFn.Encode(recipient, amount)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}
	env.Logger().Debug("donation prepared", "recipient", recipient.Hex(), "token", token.Hex())
	return []module.Action{{To: token, Data: data}}, nil
}
