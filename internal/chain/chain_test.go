package chain_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	registry = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	resolver = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	target   = common.HexToAddress("0x00000000000000000000000000000000000000e3")
)

func TestENSResolver_Resolve(t *testing.T) {
	fake := testutil.NewFakeChain()
	node := abiutil.Namehash("voting.aragonpm.eth")

	fake.Handle(registry, "resolver(bytes32):(address)", func(args []any) ([]any, error) {
		assert.Equal(t, [32]byte(node), args[0])
		return []any{resolver}, nil
	})
	fake.Return(resolver, "addr(bytes32):(address)", target)

	addr, err := chain.ENSResolver{Client: fake}.Resolve(context.Background(), "voting.aragonpm.eth", registry)
	require.NoError(t, err)
	assert.Equal(t, target, addr)
	assert.Equal(t, 1, fake.CallCount("resolver(bytes32)"))
	assert.Equal(t, 1, fake.CallCount("addr(bytes32)"))
}

func TestENSResolver_NotFound(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *testutil.FakeChain)
	}{
		{"no resolver", func(f *testutil.FakeChain) {
			f.Return(registry, "resolver(bytes32):(address)", common.Address{})
		}},
		{"no address", func(f *testutil.FakeChain) {
			f.Return(registry, "resolver(bytes32):(address)", resolver)
			f.Return(resolver, "addr(bytes32):(address)", common.Address{})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeChain()
			tt.setup(fake)
			_, err := chain.ENSResolver{Client: fake}.Resolve(context.Background(), "nope.eth", registry)
			assert.ErrorIs(t, err, chain.ErrNameNotFound)
		})
	}
}

func TestENSResolver_CallError(t *testing.T) {
	fake := testutil.NewFakeChain()
	_, err := chain.ENSResolver{Client: fake}.Resolve(context.Background(), "x.eth", registry)
	require.Error(t, err)
	assert.ErrorIs(t, err, testutil.ErrReverted)
	assert.Contains(t, err.Error(), "resolver(bytes32)")
}

func TestCall(t *testing.T) {
	fake := testutil.NewFakeChain()
	fake.Handle(target, "balanceOf(address):(uint256)", func(args []any) ([]any, error) {
		assert.Equal(t, fake.From, args[0])
		return []any{big.NewInt(42)}, nil
	})

	fn := abiutil.MustParseFunction("balanceOf(address):(uint256)")
	v, err := chain.Call(context.Background(), fake, target, fn, fake.From)
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(42).Cmp(v.(*big.Int)))

	_, err = chain.CallAddress(context.Background(), fake, target, fn, fake.From)
	assert.ErrorContains(t, err, "expected an address")
}

func TestDefaultENSRegistry(t *testing.T) {
	addr, ok := chain.DefaultENSRegistry(big.NewInt(1))
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress("0x314159265dD8dbb310642f98f50C066173C1259b"), addr)

	addr, ok = chain.DefaultENSRegistry(big.NewInt(100))
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress("0xaafca6b0c89521752e559650206d7c925fd0e530"), addr)

	_, ok = chain.DefaultENSRegistry(big.NewInt(31337))
	assert.False(t, ok)
	_, ok = chain.DefaultENSRegistry(nil)
	assert.False(t, ok)
}
