package chain

import (
	"context"
	"math/big"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ensResolverFn = abiutil.MustParseFunction("resolver(bytes32):(address)")
	ensAddrFn     = abiutil.MustParseFunction("addr(bytes32):(address)")
)

// Aragon ENS registries by chain id.
var defaultRegistries = map[int64]common.Address{
	1:   common.HexToAddress("0x314159265dD8dbb310642f98f50C066173C1259b"),
	4:   common.HexToAddress("0x98Df287B6C145399Aaa709692c8D308357bC085D"),
	100: common.HexToAddress("0xaafca6b0c89521752e559650206d7c925fd0e530"),
}

// DefaultENSRegistry returns the Aragon ENS registry deployed on chainID.
func DefaultENSRegistry(chainID *big.Int) (common.Address, bool) {
	if chainID == nil || !chainID.IsInt64() {
		return common.Address{}, false
	}
	addr, ok := defaultRegistries[chainID.Int64()]
	return addr, ok
}

// ENSResolver resolves names by reading the registry and resolver contracts
// through a Client.
type ENSResolver struct {
	Client Client
}

// Resolve implements NameResolver.
func (r ENSResolver) Resolve(ctx context.Context, name string, registry common.Address) (common.Address, error) {
	node := abiutil.Namehash(name)

	resolver, err := CallAddress(ctx, r.Client, registry, ensResolverFn, node)
	if err != nil {
		return common.Address{}, err
	}
	if resolver == (common.Address{}) {
		return common.Address{}, ErrNameNotFound
	}

	addr, err := CallAddress(ctx, r.Client, resolver, ensAddrFn, node)
	if err != nil {
		return common.Address{}, err
	}
	if addr == (common.Address{}) {
		return common.Address{}, ErrNameNotFound
	}
	return addr, nil
}
