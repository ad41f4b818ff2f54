package giveth

import (
	"context"
	"math/big"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ConfigRelayer is the module variable holding the GIVbacks relayer,
// set with "set $giveth:relayer <address>".
const ConfigRelayer = "relayer"

// DefaultBatchSize is the number of payments per relayer batch.
const DefaultBatchSize = 100

var (
	relayerNonceFn = abiutil.MustParseFunction("nonce():(uint256)")
	addBatchesFn   = abiutil.MustParseFunction("addBatches(bytes32[],bytes)")
	executeBatchFn = abiutil.MustParseFunction("executeBatch(uint256,address[],uint256[])")
	hashBatchFn    = abiutil.MustParseFunction("hashBatch(uint256,address[],uint256[])")
)

// batch is one relayer batch of payments.
type batch struct {
	recipients []any
	amounts    []any
}

// HashBatch returns the hash the relayer stores for a batch:
// keccak256(abi.encode(nonce, recipients, amounts)).
func HashBatch(nonce *big.Int, recipients []common.Address, amounts []*big.Int) (common.Hash, error) {
	var b batch
	for _, r := range recipients {
		b.recipients = append(b.recipients, r)
	}
	for _, a := range amounts {
		b.amounts = append(b.amounts, a)
	}
	return b.hash(nonce)
}

func (b batch) hash(nonce *big.Int) (common.Hash, error) {
	data, err := hashBatchFn.Encode(nonce, b.recipients, b.amounts)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(data[4:]), nil
}

// initiateGivbacks registers the hashes of the payment batches on the
// relayer. Batches are numbered from the relayer's current nonce.
func initiateGivbacks(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	relayer, err := relayerAddress(m, c, env)
	if err != nil {
		return nil, err
	}
	batches, err := readBatches(ctx, m, c, env)
	if err != nil {
		return nil, err
	}

	var ipfsData []byte
	if v, ok, err := module.Option(ctx, env, c, "data", module.Literal); err != nil {
		return nil, err
	} else if ok {
		s, isString := v.(string)
		if !isString {
			return nil, module.NewCommandError(m, c, "invalid --data option %s. Expected a content reference", abiutil.Describe(v))
		}
		ipfsData = []byte(s)
	}

	nonce, err := relayerNonce(ctx, m, c, env, relayer)
	if err != nil {
		return nil, err
	}

	hashes := make([]any, len(batches))
	for i, b := range batches {
		h, err := b.hash(new(big.Int).Add(nonce, big.NewInt(int64(i))))
		if err != nil {
			return nil, module.WrapCommandError(m, c, "error when hashing batch", err)
		}
		hashes[i] = h
	}

	data, err := addBatchesFn.Encode(hashes, ipfsData)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}
	env.Logger().Debug("givbacks batches prepared", "relayer", relayer.Hex(), "batches", len(batches), "nonce", nonce.String())
	return []module.Action{{To: relayer, Data: data}}, nil
}

// finalizeGivbacks executes the batches registered by the last
// initiate-givbacks for the same payments, one action per batch.
func finalizeGivbacks(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	relayer, err := relayerAddress(m, c, env)
	if err != nil {
		return nil, err
	}
	batches, err := readBatches(ctx, m, c, env)
	if err != nil {
		return nil, err
	}
	nonce, err := relayerNonce(ctx, m, c, env, relayer)
	if err != nil {
		return nil, err
	}

	first := new(big.Int).Sub(nonce, big.NewInt(int64(len(batches))))
	if first.Sign() < 0 {
		return nil, module.NewCommandError(m, c, "relayer nonce %s is lower than the number of batches (%d)", nonce, len(batches))
	}

	actions := make([]module.Action, 0, len(batches))
	for i, b := range batches {
		data, err := executeBatchFn.Encode(new(big.Int).Add(first, big.NewInt(int64(i))), b.recipients, b.amounts)
		if err != nil {
			return nil, module.WrapCommandError(m, c, "", err)
		}
		actions = append(actions, module.Action{To: relayer, Data: data})
	}
	return actions, nil
}

func relayerAddress(m *module.Module, c *parser.CommandExpression, env module.Env) (common.Address, error) {
	v, ok := m.ConfigValue(env, ConfigRelayer)
	if !ok {
		return common.Address{}, module.NewCommandError(m, c, "relayer not set. Set it with set $%s:%s <address>", Name, ConfigRelayer)
	}
	addr, ok := abiutil.ToAddress(v)
	if !ok {
		return common.Address{}, module.NewCommandError(m, c, "invalid %s %s. Expected an address", ConfigRelayer, abiutil.Describe(v))
	}
	return addr, nil
}

func relayerNonce(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env, relayer common.Address) (*big.Int, error) {
	v, err := chain.Call(ctx, env.Client(), relayer, relayerNonceFn)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}
	n, ok := abiutil.ToBigInt(v)
	if !ok {
		return nil, module.NewCommandError(m, c, "relayer returned an invalid nonce %s", abiutil.Describe(v))
	}
	return n, nil
}

// readBatches reads "<recipients> <amounts> [--batch-size n]" and splits
// the payments into batches.
func readBatches(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]batch, error) {
	values, err := env.InterpretNodes(ctx, c.Args, module.Strict)
	if err != nil {
		return nil, err
	}
	owner := module.Owner(m, c)

	recipients, ok := values[0].([]any)
	if !ok || len(recipients) == 0 {
		return nil, module.NewCommandError(m, c, "invalid recipients %s. Expected a non-empty list of addresses", abiutil.Describe(values[0]))
	}
	amounts, ok := values[1].([]any)
	if !ok || len(amounts) != len(recipients) {
		return nil, module.NewCommandError(m, c, "invalid amounts %s. Expected one amount per recipient", abiutil.Describe(values[1]))
	}

	var payments batch
	for i, r := range recipients {
		addr, ok := abiutil.ToAddress(r)
		if !ok {
			return nil, module.NewInvalidAddressError(c.Args[0], owner, abiutil.Describe(r))
		}
		amount, ok := abiutil.ToBigInt(amounts[i])
		if !ok || amount.Sign() <= 0 {
			return nil, module.NewCommandError(m, c, "invalid amount %s. Expected a positive number", abiutil.Describe(amounts[i]))
		}
		payments.recipients = append(payments.recipients, addr)
		payments.amounts = append(payments.amounts, amount)
	}

	size := DefaultBatchSize
	if v, ok, err := module.Option(ctx, env, c, "batch-size", module.Strict); err != nil {
		return nil, err
	} else if ok {
		n, isNumber := abiutil.ToBigInt(v)
		if !isNumber || n.Sign() <= 0 || !n.IsInt64() {
			return nil, module.NewCommandError(m, c, "invalid --batch-size option %s. Expected a positive number", abiutil.Describe(v))
		}
		size = int(n.Int64())
	}

	var batches []batch
	for start := 0; start < len(payments.recipients); start += size {
		end := min(start+size, len(payments.recipients))
		batches = append(batches, batch{
			recipients: payments.recipients[start:end],
			amounts:    payments.amounts[start:end],
		})
	}
	return batches, nil
}
