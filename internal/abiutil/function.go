// Package abiutil bridges script values and the Ethereum ABI: it parses
// human-readable function signatures, coerces interpreted values into the Go
// types the ABI packer expects, and normalises decoded return values back
// into script values.
package abiutil

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	signaturePattern = regexp.MustCompile(`^([A-Za-z_$][A-Za-z0-9_$]*)\((.*)\)$`)
	bareIntPattern   = regexp.MustCompile(`^(u?int)(\[.*)?$`)
)

// Function is a parsed function fragment such as
// "balanceOf(address):(uint256)".
type Function struct {
	abi.Method
}

// ParseFunction parses "name(types...)" with an optional ":(returns...)"
// suffix. Parameter names after the type are allowed and ignored.
func ParseFunction(sig string) (*Function, error) {
	sig = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(sig), "function "))

	head, returns, err := splitReturns(sig)
	if err != nil {
		return nil, err
	}

	m := signaturePattern.FindStringSubmatch(head)
	if m == nil {
		return nil, fmt.Errorf("invalid function signature %q", sig)
	}

	inputs, err := parseArguments(m[2])
	if err != nil {
		return nil, fmt.Errorf("invalid function signature %q: %w", sig, err)
	}
	outputs, err := parseArguments(returns)
	if err != nil {
		return nil, fmt.Errorf("invalid return types in %q: %w", sig, err)
	}

	method := abi.NewMethod(m[1], m[1], abi.Function, "", false, false, inputs, outputs)
	return &Function{Method: method}, nil
}

// MustParseFunction is like ParseFunction but panics on error. It is meant
// for package-level signatures.
func MustParseFunction(sig string) *Function {
	fn, err := ParseFunction(sig)
	if err != nil {
		panic(err)
	}
	return fn
}

// splitReturns separates "f(a,b):(c)" into "f(a,b)" and "c".
func splitReturns(sig string) (string, string, error) {
	depth := 0
	for i := 0; i < len(sig); i++ {
		switch sig[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", "", fmt.Errorf("unbalanced parenthesis in %q", sig)
			}
		case ':':
			if depth != 0 {
				continue
			}
			rest := strings.TrimSpace(sig[i+1:])
			if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
				return "", "", fmt.Errorf("invalid return types in %q", sig)
			}
			return sig[:i], rest[1 : len(rest)-1], nil
		}
	}
	if depth != 0 {
		return "", "", fmt.Errorf("unbalanced parenthesis in %q", sig)
	}
	return sig, "", nil
}

// parseArguments parses a comma-separated type list.
func parseArguments(list string) (abi.Arguments, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return abi.Arguments{}, nil
	}

	var args abi.Arguments
	for i, part := range splitTopLevel(list) {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			return nil, fmt.Errorf("empty type at position %d", i)
		}
		if strings.HasPrefix(fields[0], "(") || strings.HasPrefix(fields[0], "tuple") {
			return nil, fmt.Errorf("tuple types are not supported")
		}

		typ, err := abi.NewType(canonicalType(fields[0]), "", nil)
		if err != nil {
			return nil, err
		}
		name := ""
		if len(fields) > 1 {
			name = fields[len(fields)-1]
		}
		args = append(args, abi.Argument{Name: name, Type: typ})
	}
	return args, nil
}

// canonicalType expands the uint/int shorthands, which the ABI parser
// rejects.
func canonicalType(t string) string {
	if m := bareIntPattern.FindStringSubmatch(t); m != nil {
		return m[1] + "256" + m[2]
	}
	return t
}

func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// Encode returns the calldata for calling the function with args.
func (f *Function) Encode(args ...any) ([]byte, error) {
	return EncodeMethod(f.Method, args)
}

// Decode unpacks return data into script values. A single return value is
// returned as is; several are returned as []any.
func (f *Function) Decode(data []byte) (any, error) {
	return DecodeReturn(f.Method, data)
}

// EncodeMethod packs args for m, coercing each value to its ABI type.
func EncodeMethod(m abi.Method, args []any) ([]byte, error) {
	if len(args) != len(m.Inputs) {
		return nil, fmt.Errorf("%s expects %d parameters, got %d", m.Sig, len(m.Inputs), len(args))
	}

	values := make([]any, len(args))
	for i, arg := range args {
		v, err := Coerce(m.Inputs[i].Type, arg)
		if err != nil {
			return nil, fmt.Errorf("parameter %d of %s: %w", i, m.Sig, err)
		}
		values[i] = v
	}

	packed, err := m.Inputs.Pack(values...)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, m.ID...), packed...), nil
}

// DecodeReturn unpacks data against m's outputs.
func DecodeReturn(m abi.Method, data []byte) (any, error) {
	if len(m.Outputs) == 0 {
		return nil, nil
	}
	values, err := m.Outputs.Unpack(data)
	if err != nil {
		return nil, err
	}
	if len(values) == 1 {
		return Normalize(values[0]), nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = Normalize(v)
	}
	return out, nil
}
