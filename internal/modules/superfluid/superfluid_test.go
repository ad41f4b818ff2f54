package superfluid_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/interpreter"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/internal/modules/std"
	"github.com/CommonsSwarm/evmscripter/internal/modules/superfluid"
	"github.com/CommonsSwarm/evmscripter/internal/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	superToken = common.HexToAddress("0x1000000000000000000000000000000000000001")
	receiver   = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func interpret(t *testing.T, src string) ([]module.Action, error) {
	t.Helper()
	return interpreter.Interpret(context.Background(), src, interpreter.Config{
		Client:   testutil.NewFakeChain(),
		Registry: module.NewRegistry().MustRegister(std.Definition(), superfluid.Definition()),
		Logger:   testutil.NewTestLogger(t),
	})
}

func TestFlow(t *testing.T) {
	actions, err := interpret(t, "load superfluid as sf\nsf:flow "+superToken.Hex()+" "+receiver.Hex()+" 385802469135802")
	require.NoError(t, err)
	require.Len(t, actions, 1)

	assert.Equal(t, superfluid.DefaultForwarder, actions[0].To)
	fn := abiutil.MustParseFunction("setFlowrate(address,address,int96)")
	require.Equal(t, fn.ID, actions[0].Data[:4])
	args, err := fn.Inputs.Unpack(actions[0].Data[4:])
	require.NoError(t, err)
	assert.Equal(t, superToken, args[0])
	assert.Equal(t, receiver, args[1])
	assert.Equal(t, 0, big.NewInt(385802469135802).Cmp(args[2].(*big.Int)))
}

func TestFlow_ConfiguredForwarder(t *testing.T) {
	forwarder := common.HexToAddress("0x3000000000000000000000000000000000000003")
	src := "load superfluid as sf\nset $sf:forwarder " + forwarder.Hex() + "\nsf:flow " + superToken.Hex() + " " + receiver.Hex() + " 0"

	actions, err := interpret(t, src)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, forwarder, actions[0].To)
}

func TestFlow_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{
			name:    "invalid token",
			src:     "load superfluid\nsuperfluid:flow true " + receiver.Hex() + " 1",
			message: "invalid address. Expected an address, but got true",
		},
		{
			name:    "rate overflows int96",
			src:     "load superfluid\nsuperfluid:flow " + superToken.Hex() + " " + receiver.Hex() + " 1e30",
			message: "invalid flow rate",
		},
		{
			name:    "arguments",
			src:     "load superfluid\nsuperfluid:flow " + superToken.Hex(),
			message: "Expected 3 arguments, but got 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interpret(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestUpgradeDowngrade(t *testing.T) {
	actions, err := interpret(t, "load superfluid\nsuperfluid:upgrade "+superToken.Hex()+" 100e18\nsuperfluid:downgrade "+superToken.Hex()+" 5")
	require.NoError(t, err)
	require.Len(t, actions, 2)

	upgrade := abiutil.MustParseFunction("upgrade(uint256)")
	downgrade := abiutil.MustParseFunction("downgrade(uint256)")

	assert.Equal(t, superToken, actions[0].To)
	args, err := upgrade.Inputs.Unpack(actions[0].Data[4:])
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("100000000000000000000", 10)
	assert.Equal(t, 0, want.Cmp(args[0].(*big.Int)))

	assert.Equal(t, downgrade.ID, actions[1].Data[:4])
}
