package std

import (
	"context"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
)

func me(_ context.Context, _ *module.Module, _ *parser.HelperFunctionExpression, env module.Env) (any, error) {
	return env.Client().Address(), nil
}

func chainID(ctx context.Context, _ *module.Module, _ *parser.HelperFunctionExpression, env module.Env) (any, error) {
	return env.Client().ChainID(ctx)
}

func id(ctx context.Context, _ *module.Module, h *parser.HelperFunctionExpression, env module.Env) (any, error) {
	text, err := stringArg(ctx, h, env, h.Args[0])
	if err != nil {
		return nil, err
	}
	return abiutil.ID(text), nil
}

func namehash(ctx context.Context, _ *module.Module, h *parser.HelperFunctionExpression, env module.Env) (any, error) {
	name, err := stringArg(ctx, h, env, h.Args[0])
	if err != nil {
		return nil, err
	}
	return abiutil.Namehash(name), nil
}

// get performs a read-only call: @get(<address>, "<fn>(<args>):(<returns>)").
func get(ctx context.Context, _ *module.Module, h *parser.HelperFunctionExpression, env module.Env) (any, error) {
	values, err := env.InterpretNodes(ctx, h.Args[:1], module.Strict)
	if err != nil {
		return nil, err
	}
	sig, err := stringArg(ctx, h, env, h.Args[1])
	if err != nil {
		return nil, err
	}

	target, ok := abiutil.ToAddress(values[0])
	if !ok {
		return nil, module.NewInvalidAddressError(h.Args[0], "@"+h.Name, abiutil.Describe(values[0]))
	}

	fn, err := abiutil.ParseFunction(sig)
	if err != nil {
		return nil, module.NewHelperError(h, "%s", err.Error())
	}
	if len(fn.Outputs) == 0 {
		return nil, module.NewHelperError(h, "missing return types in %s. Expected <function>:(<returns>)", sig)
	}

	v, err := chain.Call(ctx, env.Client(), target, fn)
	if err != nil {
		return nil, module.WrapHelperError(h, "", err)
	}
	return v, nil
}

// stringArg evaluates n as a literal-eligible string.
func stringArg(ctx context.Context, h *parser.HelperFunctionExpression, env module.Env, n parser.Node) (string, error) {
	v, err := env.InterpretNode(ctx, n, module.Literal)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", module.NewHelperError(h, "expected a string, but got %s", abiutil.Describe(v))
	}
	return s, nil
}
