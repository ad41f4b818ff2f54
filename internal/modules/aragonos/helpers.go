package aragonos

import (
	"context"
	"errors"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
)

// aragonEns resolves a name with the module's ENS registry. Unknown names
// yield the zero address.
func aragonEns(ctx context.Context, m *module.Module, h *parser.HelperFunctionExpression, env module.Env) (any, error) {
	v, err := env.InterpretNode(ctx, h.Args[0], module.Literal)
	if err != nil {
		return nil, err
	}
	name, ok := v.(string)
	if !ok {
		return nil, module.NewHelperError(h, "invalid name %s. Expected a string", abiutil.Describe(v))
	}

	addr, err := resolveENS(ctx, m, env, name)
	if errors.Is(err, chain.ErrNameNotFound) {
		return common.Address{}, nil
	}
	if err != nil {
		return nil, module.WrapHelperError(h, "", err)
	}
	return addr, nil
}
