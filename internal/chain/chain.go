// Package chain defines the blockchain collaborators the interpreter reads
// from and provides go-ethereum backed implementations.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the account and read-only call capability scripts are
// interpreted against.
type Client interface {
	// Address is the account actions are prepared for.
	Address() common.Address
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)
	NonceAt(ctx context.Context, account common.Address, block *big.Int) (uint64, error)
}

// ErrNameNotFound is returned when a name has no address record.
var ErrNameNotFound = errors.New("name not found")

// NameResolver resolves ENS-style names using the registry at registry.
type NameResolver interface {
	Resolve(ctx context.Context, name string, registry common.Address) (common.Address, error)
}

// Call performs a read-only call of fn on to and decodes its return value.
func Call(ctx context.Context, c Client, to common.Address, fn *abiutil.Function, args ...any) (any, error) {
	data, err := fn.Encode(args...)
	if err != nil {
		return nil, err
	}
	out, err := c.CallContract(ctx, ethereum.CallMsg{From: c.Address(), To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", fn.Sig, to.Hex(), err)
	}
	v, err := fn.Decode(out)
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", fn.Sig, err)
	}
	return v, nil
}

// CallAddress is Call for functions returning a single address.
func CallAddress(ctx context.Context, c Client, to common.Address, fn *abiutil.Function, args ...any) (common.Address, error) {
	v, err := Call(ctx, c, to, fn, args...)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s returned %s, expected an address", fn.Sig, abiutil.Describe(v))
	}
	return addr, nil
}

// RPCClient is a Client backed by a JSON-RPC endpoint.
type RPCClient struct {
	eth  *ethclient.Client
	from common.Address

	mu      sync.Mutex
	chainID *big.Int
}

// Dial connects to the JSON-RPC endpoint at url. from is the account
// actions are prepared for.
func Dial(ctx context.Context, url string, from common.Address) (*RPCClient, error) {
	eth, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &RPCClient{eth: eth, from: from}, nil
}

// Address implements Client.
func (c *RPCClient) Address() common.Address {
	return c.from
}

// ChainID implements Client. The result is cached after the first call.
func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chainID != nil {
		return c.chainID, nil
	}
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	c.chainID = id
	return id, nil
}

// CallContract implements Client.
func (c *RPCClient) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	return c.eth.CallContract(ctx, msg, block)
}

// NonceAt implements Client.
func (c *RPCClient) NonceAt(ctx context.Context, account common.Address, block *big.Int) (uint64, error) {
	return c.eth.NonceAt(ctx, account, block)
}

// Close closes the underlying connection.
func (c *RPCClient) Close() {
	c.eth.Close()
}
