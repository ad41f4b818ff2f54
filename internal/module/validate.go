package module

import (
	"context"
	"fmt"
	"slices"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
)

// ArgsType is the comparison an ArgsSpec applies.
type ArgsType int

// ArgsType constants.
const (
	Equal   ArgsType = iota // exactly Min
	Greater                 // at least Min
	Between                 // Min..Max inclusive
)

// ArgsSpec declares how many arguments a command or helper accepts.
type ArgsSpec struct {
	Type ArgsType
	Min  int
	Max  int
}

// Exactly accepts n arguments.
func Exactly(n int) ArgsSpec { return ArgsSpec{Type: Equal, Min: n} }

// AtLeast accepts n or more arguments.
func AtLeast(n int) ArgsSpec { return ArgsSpec{Type: Greater, Min: n} }

// Range accepts min..max arguments.
func Range(min, max int) ArgsSpec { return ArgsSpec{Type: Between, Min: min, Max: max} }

// Allows reports whether n arguments satisfy the arity.
func (s ArgsSpec) Allows(n int) bool {
	switch s.Type {
	case Greater:
		return n >= s.Min
	case Between:
		return n >= s.Min && n <= s.Max
	default:
		return n == s.Min
	}
}

func (s ArgsSpec) String() string {
	switch s.Type {
	case Greater:
		return fmt.Sprintf("at least %d %s", s.Min, plural(s.Min))
	case Between:
		return fmt.Sprintf("between %d and %d arguments", s.Min, s.Max)
	default:
		return fmt.Sprintf("%d %s", s.Min, plural(s.Min))
	}
}

func plural(n int) string {
	if n == 1 {
		return "argument"
	}
	return "arguments"
}

// CheckCommand validates the argument count and options of c. It runs
// before any command logic.
func CheckCommand(m *Module, cmd Command, c *parser.CommandExpression) error {
	owner := commandOwner(m, c)
	if !cmd.Args.Allows(len(c.Args)) {
		return newArgsLengthError(c, owner, cmd.Args, len(c.Args))
	}
	for _, o := range c.Opts {
		if !slices.Contains(cmd.Options, o.Name) {
			return newUnknownOptionError(o, owner, cmd.Options)
		}
	}
	return nil
}

// CheckHelper validates the argument count of h.
func CheckHelper(helper Helper, h *parser.HelperFunctionExpression) error {
	if !helper.Args.Allows(len(h.Args)) {
		return newArgsLengthError(h, helperOwner(h), helper.Args, len(h.Args))
	}
	return nil
}

// Option interprets the value of option name on c. ok is false when the
// option is absent.
func Option(ctx context.Context, env Env, c *parser.CommandExpression, name string, opts EvalOptions) (v any, ok bool, err error) {
	o := c.Opt(name)
	if o == nil {
		return nil, false, nil
	}
	v, err = env.InterpretNode(ctx, o.Value, opts)
	return v, err == nil, err
}

// Address interprets n and requires an address. Unbound identifiers fail
// with BindingNotFoundError; other values with InvalidAddressError.
func Address(ctx context.Context, env Env, owner string, n parser.Node) (common.Address, error) {
	v, err := env.InterpretNode(ctx, n, Strict)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := abiutil.ToAddress(v)
	if !ok {
		return common.Address{}, NewInvalidAddressError(n, owner, abiutil.Describe(v))
	}
	return addr, nil
}

// Owner returns the error owner string for c run by m.
func Owner(m *Module, c *parser.CommandExpression) string {
	return commandOwner(m, c)
}
