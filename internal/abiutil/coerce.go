package abiutil

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Coerce converts a script value into the Go value the ABI packer expects
// for t. Script values are *big.Int, string, bool, common.Address,
// common.Hash and []any.
func Coerce(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		return coerceInt(t, v)
	case abi.BoolTy:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			if b == "true" || b == "false" {
				return b == "true", nil
			}
		}
	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case abi.AddressTy:
		if addr, ok := ToAddress(v); ok {
			return addr, nil
		}
	case abi.FixedBytesTy:
		b, ok := Bytes(v)
		if !ok || len(b) > t.Size {
			break
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.BytesTy:
		if b, ok := Bytes(v); ok {
			return b, nil
		}
	case abi.SliceTy, abi.ArrayTy:
		return coerceList(t, v)
	default:
		return nil, fmt.Errorf("unsupported abi type %s", t.String())
	}
	return nil, fmt.Errorf("cannot use %s as %s", Describe(v), t.String())
}

func coerceInt(t abi.Type, v any) (any, error) {
	n, ok := ToBigInt(v)
	if !ok {
		return nil, fmt.Errorf("cannot use %s as %s", Describe(v), t.String())
	}
	signed := t.T == abi.IntTy
	if !fits(n, t.Size, signed) {
		return nil, fmt.Errorf("value %s overflows %s", n, t.String())
	}

	switch t.GetType().Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(n.Int64()).Convert(t.GetType()).Interface(), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.ValueOf(n.Uint64()).Convert(t.GetType()).Interface(), nil
	default:
		return new(big.Int).Set(n), nil
	}
}

func fits(n *big.Int, size int, signed bool) bool {
	if !signed {
		return n.Sign() >= 0 && n.BitLen() <= size
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(size-1))
	if n.Sign() >= 0 {
		return n.Cmp(limit) < 0
	}
	return new(big.Int).Neg(n).Cmp(limit) <= 0
}

func coerceList(t abi.Type, v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("cannot use %s as %s", Describe(v), t.String())
	}
	if t.T == abi.ArrayTy && len(items) != t.Size {
		return nil, fmt.Errorf("%s expects %d elements, got %d", t.String(), t.Size, len(items))
	}

	var out reflect.Value
	if t.T == abi.ArrayTy {
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}
	for i, item := range items {
		c, err := Coerce(*t.Elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(c))
	}
	return out.Interface(), nil
}

// ToAddress converts an address value or a hex address string.
func ToAddress(v any) (common.Address, bool) {
	switch a := v.(type) {
	case common.Address:
		return a, true
	case string:
		if common.IsHexAddress(a) && strings.HasPrefix(strings.ToLower(a), "0x") {
			return common.HexToAddress(a), true
		}
	}
	return common.Address{}, false
}

// ToBigInt converts a number value or a decimal/hex number string.
func ToBigInt(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case *big.Int:
		return n, n != nil
	case string:
		if h, ok := strings.CutPrefix(n, "0x"); ok {
			return new(big.Int).SetString(h, 16)
		}
		return new(big.Int).SetString(n, 10)
	}
	return nil, false
}

// ToHash converts a 32-byte value or hex string.
func ToHash(v any) (common.Hash, bool) {
	switch h := v.(type) {
	case common.Hash:
		return h, true
	case string:
		b, err := hexutil.Decode(h)
		if err == nil && len(b) == common.HashLength {
			return common.BytesToHash(b), true
		}
	}
	return common.Hash{}, false
}

// Bytes converts a byte value or a 0x-prefixed hex string.
func Bytes(v any) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case common.Hash:
		return b.Bytes(), true
	case common.Address:
		return b.Bytes(), true
	case string:
		if b == "0x" {
			return []byte{}, true
		}
		out, err := hexutil.Decode(b)
		return out, err == nil
	}
	return nil, false
}

// Normalize converts a value produced by the ABI unpacker into a script value.
func Normalize(v any) any {
	switch x := v.(type) {
	case *big.Int, string, bool, common.Address:
		return x
	case [32]byte:
		return common.Hash(x)
	case []byte:
		return hexutil.Encode(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint())
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		fallthrough
	case reflect.Slice:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// Describe renders a script value for error messages.
func Describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "nothing"
	case string:
		return fmt.Sprintf("%q", x)
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case *big.Int:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = Describe(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}
