package testutil_test

import (
	"context"
	"testing"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/testutil"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeChain_CallCount(t *testing.T) {
	const latest = "getLatest():(uint16[3],address,bytes)"
	repo := common.HexToAddress("0xb000000000000000000000000000000000000001")
	code := common.HexToAddress("0xc000000000000000000000000000000000000001")

	fc := testutil.NewFakeChain()
	fc.Return(repo, latest, [3]uint16{1, 0, 0}, code, []byte("ipfs:Qm"))

	fn := abiutil.MustParseFunction(latest)
	data, err := fn.Encode()
	require.NoError(t, err)

	out, err := fc.CallContract(context.Background(), ethereum.CallMsg{To: &repo, Data: data}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = fc.NonceAt(context.Background(), repo, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, fc.CallCount(latest))
	assert.Equal(t, 1, fc.CallCount("getLatest()"))
	assert.Equal(t, 0, fc.CallCount("getBySemanticVersion(uint16[3]):(uint16[3],address,bytes)"))
	assert.Equal(t, 1, fc.CallCount("nonce"))
}
