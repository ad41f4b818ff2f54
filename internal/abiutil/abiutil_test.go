package abiutil_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFunction(t *testing.T) {
	tests := []struct {
		sig     string
		wantSig string
		inputs  int
		outputs int
	}{
		{"transfer(address,uint256)", "transfer(address,uint256)", 2, 0},
		{"balanceOf(address):(uint256)", "balanceOf(address)", 1, 1},
		{"name():(string)", "name()", 0, 1},
		{"deposit()", "deposit()", 0, 0},
		{"setFlowrate(address token, address receiver, int96 flowrate)", "setFlowrate(address,address,int96)", 3, 0},
		{"function approve(address,uint)", "approve(address,uint256)", 2, 0},
		{"getBySemanticVersion(uint16[3]):(uint16[3],address,bytes)", "getBySemanticVersion(uint16[3])", 1, 3},
		{"batch(uint[],bytes32[2])", "batch(uint256[],bytes32[2])", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			fn, err := abiutil.ParseFunction(tt.sig)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSig, fn.Sig)
			assert.Len(t, fn.Inputs, tt.inputs)
			assert.Len(t, fn.Outputs, tt.outputs)
		})
	}
}

func TestParseFunction_Errors(t *testing.T) {
	for _, sig := range []string{
		"transfer",
		"transfer(address",
		"transfer(address,foo)",
		"f():uint256",
		"f((address,uint256))",
		"f(address,)",
	} {
		t.Run(sig, func(t *testing.T) {
			_, err := abiutil.ParseFunction(sig)
			assert.Error(t, err)
		})
	}
}

func TestFunction_Encode(t *testing.T) {
	fn := abiutil.MustParseFunction("transfer(address,uint256)")
	to := common.HexToAddress("0x44fA8E6f47987339850636F88629646662444217")

	data, err := fn.Encode(to, big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t,
		"0xa9059cbb"+
			"00000000000000000000000044fa8e6f47987339850636f88629646662444217"+
			"00000000000000000000000000000000000000000000000000000000000003e8",
		hexutil.Encode(data))

	// Strings are accepted where they parse as the expected type.
	again, err := fn.Encode(to.Hex(), "1000")
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestFunction_EncodeErrors(t *testing.T) {
	fn := abiutil.MustParseFunction("f(address,uint8)")

	_, err := fn.Encode(common.Address{})
	assert.ErrorContains(t, err, "expects 2 parameters, got 1")

	_, err = fn.Encode("vault", big.NewInt(1))
	assert.ErrorContains(t, err, `cannot use "vault" as address`)

	_, err = fn.Encode(common.Address{}, big.NewInt(256))
	assert.ErrorContains(t, err, "overflows uint8")
}

func TestCoerce(t *testing.T) {
	mustType := func(s string) abi.Type {
		typ, err := abi.NewType(s, "", nil)
		require.NoError(t, err)
		return typ
	}

	v, err := abiutil.Coerce(mustType("uint16[3]"), []any{big.NewInt(1), big.NewInt(2), big.NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, [3]uint16{1, 2, 3}, v)

	v, err = abiutil.Coerce(mustType("int96"), big.NewInt(-5))
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(-5).Cmp(v.(*big.Int)))

	v, err = abiutil.Coerce(mustType("bytes32"), common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Equal(t, [32]byte(common.HexToHash("0x01")), v)

	v, err = abiutil.Coerce(mustType("bytes"), "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, v)

	v, err = abiutil.Coerce(mustType("bool"), "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = abiutil.Coerce(mustType("address[]"), []any{common.HexToAddress("0x01")})
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress("0x01")}, v)

	_, err = abiutil.Coerce(mustType("uint16[3]"), []any{big.NewInt(1)})
	assert.ErrorContains(t, err, "expects 3 elements")

	_, err = abiutil.Coerce(mustType("uint256"), big.NewInt(-1))
	assert.ErrorContains(t, err, "overflows")
}

func TestFunction_Decode(t *testing.T) {
	fn := abiutil.MustParseFunction("getLatest():(uint16[3],address,bytes)")
	code := common.HexToAddress("0x2000000000000000000000000000000000000002")

	data, err := fn.Outputs.Pack([3]uint16{1, 0, 2}, code, []byte("ipfs:Qm"))
	require.NoError(t, err)

	got, err := fn.Decode(data)
	require.NoError(t, err)
	values, ok := got.([]any)
	require.True(t, ok)
	require.Len(t, values, 3)

	assert.Equal(t, []any{big.NewInt(1), big.NewInt(0), big.NewInt(2)}, values[0])
	assert.Equal(t, code, values[1])
	assert.Equal(t, hexutil.Encode([]byte("ipfs:Qm")), values[2])
}

func TestFunction_DecodeSingle(t *testing.T) {
	fn := abiutil.MustParseFunction("name():(string)")
	data, err := fn.Outputs.Pack("Token")
	require.NoError(t, err)

	got, err := fn.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "Token", got)

	_, err = fn.Decode(nil)
	assert.Error(t, err)
}

func TestNamehash(t *testing.T) {
	assert.Equal(t, common.Hash{}, abiutil.Namehash(""))
	assert.Equal(t,
		common.HexToHash("0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"),
		abiutil.Namehash("eth"))
	assert.Equal(t,
		common.HexToHash("0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"),
		abiutil.Namehash("foo.eth"))
}

func TestID(t *testing.T) {
	assert.Equal(t,
		common.HexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
		abiutil.ID(""))
}

func TestConversions(t *testing.T) {
	addr, ok := abiutil.ToAddress("0x44fA8E6f47987339850636F88629646662444217")
	assert.True(t, ok)
	assert.Equal(t, common.HexToAddress("0x44fA8E6f47987339850636F88629646662444217"), addr)

	_, ok = abiutil.ToAddress("44fA8E6f47987339850636F88629646662444217")
	assert.False(t, ok, "bare hex is not an address")

	n, ok := abiutil.ToBigInt("0x10")
	assert.True(t, ok)
	assert.Equal(t, int64(16), n.Int64())

	_, ok = abiutil.ToBigInt("ten")
	assert.False(t, ok)

	h, ok := abiutil.ToHash("0x11" + strings.Repeat("00", 31))
	assert.True(t, ok)
	assert.Equal(t, byte(0x11), h[0])

	assert.Equal(t, `["a", 1]`, abiutil.Describe([]any{"a", big.NewInt(1)}))
}
