package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ErrReverted is returned by FakeChain for calls without a handler.
var ErrReverted = errors.New("execution reverted")

// CallHandler answers a contract call. args are the decoded inputs; the
// returned values are packed against the function outputs.
type CallHandler func(args []any) ([]any, error)

// Call is a recorded FakeChain request.
type Call struct {
	To  common.Address
	Sig string // canonical function signature, or "nonce"
}

type handlerKey struct {
	to       common.Address
	selector [4]byte
}

type handler struct {
	fn *abiutil.Function
	h  CallHandler
}

// FakeChain is an in-memory chain.Client. Contract calls are dispatched on
// (address, selector) to registered handlers.
type FakeChain struct {
	From common.Address
	ID   *big.Int

	mu       sync.Mutex
	nonces   map[common.Address]uint64
	handlers map[handlerKey]handler
	calls    []Call
}

// NewFakeChain returns a fake client for chain id 100.
func NewFakeChain() *FakeChain {
	return &FakeChain{
		From:     common.HexToAddress("0x00000000000000000000000000000000000000f0"),
		ID:       big.NewInt(100),
		nonces:   make(map[common.Address]uint64),
		handlers: make(map[handlerKey]handler),
	}
}

// Handle registers h for calls of sig on to.
func (f *FakeChain) Handle(to common.Address, sig string, h CallHandler) {
	fn := abiutil.MustParseFunction(sig)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[handlerKey{to, [4]byte(fn.ID)}] = handler{fn: fn, h: h}
}

// Return registers a handler that always returns outs.
func (f *FakeChain) Return(to common.Address, sig string, outs ...any) {
	f.Handle(to, sig, func([]any) ([]any, error) { return outs, nil })
}

// SetNonce sets the nonce reported for account.
func (f *FakeChain) SetNonce(account common.Address, nonce uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nonces[account] = nonce
}

// Calls returns every request made so far.
func (f *FakeChain) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns the number of requests for sig. Function signatures
// match on their canonical form, so "getLatest():(uint16[3],address,bytes)"
// and "getLatest()" count the same calls.
func (f *FakeChain) CallCount(sig string) int {
	if fn, err := abiutil.ParseFunction(sig); err == nil {
		sig = fn.Sig
	}
	n := 0
	for _, c := range f.Calls() {
		if c.Sig == sig {
			n++
		}
	}
	return n
}

// Address implements chain.Client.
func (f *FakeChain) Address() common.Address {
	return f.From
}

// ChainID implements chain.Client.
func (f *FakeChain) ChainID(context.Context) (*big.Int, error) {
	return f.ID, nil
}

// NonceAt implements chain.Client.
func (f *FakeChain) NonceAt(_ context.Context, account common.Address, _ *big.Int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{To: account, Sig: "nonce"})
	return f.nonces[account], nil
}

// CallContract implements chain.Client.
func (f *FakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, ErrReverted
	}

	f.mu.Lock()
	h, ok := f.handlers[handlerKey{*msg.To, [4]byte(msg.Data[:4])}]
	sig := fmt.Sprintf("0x%x", msg.Data[:4])
	if ok {
		sig = h.fn.Sig
	}
	f.calls = append(f.calls, Call{To: *msg.To, Sig: sig})
	f.mu.Unlock()

	if !ok {
		return nil, ErrReverted
	}

	args, err := h.fn.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	outs, err := h.h(args)
	if err != nil {
		return nil, err
	}
	return h.fn.Outputs.Pack(outs...)
}

// FakeResolver is an in-memory chain.NameResolver.
type FakeResolver struct {
	mu      sync.Mutex
	names   map[string]common.Address
	lookups []string
	Err     error
}

// NewFakeResolver returns a resolver that knows the given names.
func NewFakeResolver(names map[string]common.Address) *FakeResolver {
	if names == nil {
		names = make(map[string]common.Address)
	}
	return &FakeResolver{names: names}
}

// Set registers a name.
func (r *FakeResolver) Set(name string, addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[name] = addr
}

// Resolve implements chain.NameResolver.
func (r *FakeResolver) Resolve(_ context.Context, name string, _ common.Address) (common.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, name)

	if r.Err != nil {
		return common.Address{}, r.Err
	}
	addr, ok := r.names[name]
	if !ok {
		return common.Address{}, chain.ErrNameNotFound
	}
	return addr, nil
}

// Lookups returns the names resolved so far.
func (r *FakeResolver) Lookups() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lookups...)
}
