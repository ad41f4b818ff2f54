package std

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/bindings"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func load(_ context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	name, ok := c.Args[0].(*parser.ProbableIdentifier)
	if !ok {
		return nil, module.NewCommandError(m, c, "invalid module name. Expected an identifier")
	}

	alias := ""
	switch len(c.Args) {
	case 2:
		return nil, module.NewCommandError(m, c, "invalid syntax. Expected: load <module> [as <alias>]")
	case 3:
		as, ok := c.Args[1].(*parser.ProbableIdentifier)
		aliasNode, aliasOK := c.Args[2].(*parser.ProbableIdentifier)
		if !ok || as.Value != "as" || !aliasOK {
			return nil, module.NewCommandError(m, c, "invalid syntax. Expected: load <module> [as <alias>]")
		}
		alias = aliasNode.Value
	}

	if _, err := env.LoadModule(name.Value, alias); err != nil {
		return nil, module.NewCommandError(m, c, "%s", err.Error())
	}
	return nil, nil
}

func set(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	target, ok := c.Args[0].(*parser.ProbableIdentifier)
	if !ok || !strings.HasPrefix(target.Value, "$") || len(target.Value) == 1 {
		return nil, module.NewCommandError(m, c, "invalid variable. Expected $<name> or $<module>:<name>")
	}
	name := target.Value[1:]

	value, err := env.InterpretNode(ctx, c.Args[1], module.Strict)
	if err != nil {
		return nil, err
	}

	prefix, varName, isModuleVar := strings.Cut(name, ":")
	if !isModuleVar {
		env.Bindings().Set(bindings.Key{Namespace: bindings.User, Name: name}, value, false)
		return nil, nil
	}

	moduleName := prefix
	if v, ok := env.Bindings().Lookup(prefix, bindings.Alias); ok {
		moduleName, _ = v.(string)
	}
	if varName == "" {
		return nil, module.NewCommandError(m, c, "invalid module variable %s", target.Value)
	}
	env.Bindings().SetModuleVar(moduleName, varName, value)
	return nil, nil
}

func exec(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	sigValue, err := env.InterpretNode(ctx, c.Args[1], module.Literal)
	if err != nil {
		return nil, err
	}
	sig, ok := sigValue.(string)
	if !ok {
		return nil, module.NewCommandError(m, c, "invalid function signature %s", abiutil.Describe(sigValue))
	}
	fn, err := abiutil.ParseFunction(sig)
	if err != nil {
		return nil, module.NewCommandError(m, c, "%s", err.Error())
	}

	nodes := append([]parser.Node{c.Args[0]}, c.Args[2:]...)
	values, err := env.InterpretNodes(ctx, nodes, module.Strict)
	if err != nil {
		return nil, err
	}

	to, ok := abiutil.ToAddress(values[0])
	if !ok {
		return nil, module.NewInvalidAddressError(c.Args[0], module.Owner(m, c), abiutil.Describe(values[0]))
	}

	data, err := fn.Encode(values[1:]...)
	if err != nil {
		return nil, module.NewCommandError(m, c, "error when encoding calldata: %s", err.Error())
	}

	value, err := valueOption(ctx, m, c, env)
	if err != nil {
		return nil, err
	}
	return []module.Action{{To: to, Data: data, Value: value}}, nil
}

func raw(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	to, err := module.Address(ctx, env, module.Owner(m, c), c.Args[0])
	if err != nil {
		return nil, err
	}

	data, err := hexArgument(ctx, env, c.Args[1])
	if err != nil {
		var typed module.Error
		if errors.As(err, &typed) {
			return nil, err
		}
		return nil, module.NewCommandError(m, c, "invalid calldata: %s", err.Error())
	}

	value, err := valueOption(ctx, m, c, env)
	if err != nil {
		return nil, err
	}
	return []module.Action{{To: to, Data: data, Value: value}}, nil
}

// hexArgument reads raw bytes. Short hex words parse as numbers, so their
// source text is used to keep leading zeros. A bare 0x is empty calldata.
func hexArgument(ctx context.Context, env module.Env, n parser.Node) ([]byte, error) {
	switch lit := n.(type) {
	case *parser.ProbableIdentifier:
		if lit.Value == "0x" {
			return []byte{}, nil
		}
	case *parser.NumberLiteral:
		return hexutil.Decode(lit.Raw)
	case *parser.AddressLiteral:
		return lit.Value.Bytes(), nil
	case *parser.Bytes32Literal:
		return lit.Value.Bytes(), nil
	}

	v, err := env.InterpretNode(ctx, n, module.Strict)
	if err != nil {
		return nil, err
	}
	switch b := v.(type) {
	case string:
		return hexutil.Decode(b)
	case common.Hash:
		return b.Bytes(), nil
	case common.Address:
		return b.Bytes(), nil
	}
	return nil, hexutil.ErrMissingPrefix
}

// valueOption reads --value as an amount of wei.
func valueOption(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) (*big.Int, error) {
	v, ok, err := module.Option(ctx, env, c, "value", module.Strict)
	if err != nil || !ok {
		return nil, err
	}
	n, ok := abiutil.ToBigInt(v)
	if !ok || n.Sign() < 0 {
		return nil, module.NewCommandError(m, c, "invalid value %s. Expected a non-negative amount", abiutil.Describe(v))
	}
	return n, nil
}
