package aragonos

import (
	"context"
	"errors"
	"strings"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/bindings"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/dao"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
)

// connect runs a block of commands against a DAO. The DAO context lives
// exactly as long as the block.
func connect(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	block, ok := c.Args[1].(*parser.BlockExpression)
	if !ok {
		return nil, module.NewCommandError(m, c, "invalid block. Expected a ( ... ) block of commands")
	}

	name, kernel, err := daoAddress(ctx, m, c, env)
	if err != nil {
		return nil, err
	}

	acl, err := chain.CallAddress(ctx, env.Client(), kernel, kernelACLFn)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "couldn't read the ACL of DAO "+name, err)
	}

	dc := dao.NewContext(name, kernel, acl)
	daos := env.DAOs()
	daos.Push(dc)
	env.Logger().Debug("dao context pushed", "dao", name, "kernel", kernel.Hex(), "depth", daos.Len())
	defer func() {
		daos.Pop()
		env.Logger().Debug("dao context popped", "dao", name, "depth", daos.Len())
	}()

	return env.InterpretBlock(ctx, block, func(b *bindings.Manager) {
		b.Set(bindings.Key{Namespace: bindings.Addr, Name: "kernel"}, kernel, false)
		b.Set(bindings.Key{Namespace: bindings.Addr, Name: "acl"}, acl, false)
	})
}

// daoAddress resolves the first connect argument: an address, an address
// binding, or an aragonid name.
func daoAddress(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) (string, common.Address, error) {
	v, err := env.InterpretNode(ctx, c.Args[0], module.Literal)
	if err != nil {
		return "", common.Address{}, err
	}
	if addr, ok := abiutil.ToAddress(v); ok {
		return nodeText(c.Args[0], v), addr, nil
	}

	name, ok := v.(string)
	if !ok || name == "" {
		return "", common.Address{}, module.NewInvalidAddressError(c.Args[0], module.Owner(m, c), abiutil.Describe(v))
	}
	if !strings.Contains(name, ".") {
		name += ".aragonid.eth"
	}

	addr, err := resolveENS(ctx, m, env, name)
	if errors.Is(err, chain.ErrNameNotFound) || (err == nil && addr == (common.Address{})) {
		return "", common.Address{}, module.NewCommandError(m, c, "ENS DAO name %s couldn't be resolved", name)
	}
	if err != nil {
		return "", common.Address{}, module.WrapCommandError(m, c, "", err)
	}
	return name, addr, nil
}
