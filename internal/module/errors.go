package module

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/CommonsSwarm/evmscripter/pkg/token"
)

// Error is implemented by every interpretation error. Owner names the
// module command ("aragonos:install") or helper ("@get") that failed.
type Error interface {
	error
	Position() token.Position
	Owner() string
}

// baseError provides common error functionality.
type baseError struct {
	pos   token.Position
	owner string
	msg   string
}

func (e *baseError) Position() token.Position { return e.pos }
func (e *baseError) Owner() string { return e.owner }
func (e *baseError) Message() string { return e.msg }
func (e *baseError) Error() string {
	if e.owner != "" {
		return fmt.Sprintf("%s: %s: %s", e.pos, e.owner, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.pos, e.msg)
}

// withCause appends the cause message. An empty message means the cause is
// the whole story.
func (e *baseError) withCause(cause error) string {
	switch {
	case cause == nil:
		return e.Error()
	case e.msg == "":
		return (&baseError{pos: e.pos, owner: e.owner, msg: cause.Error()}).Error()
	default:
		return fmt.Sprintf("%s: %v", e.Error(), cause)
	}
}

func commandOwner(m *Module, c *parser.CommandExpression) string {
	if m == nil {
		return c.FullName()
	}
	return m.Name + ":" + c.Name
}

func helperOwner(h *parser.HelperFunctionExpression) string {
	return "@" + h.Name
}

// ArgsLengthError reports a call with the wrong number of arguments.
type ArgsLengthError struct {
	baseError
	Expected ArgsSpec
	Got      int
}

func newArgsLengthError(n parser.Node, owner string, spec ArgsSpec, got int) *ArgsLengthError {
	return &ArgsLengthError{
		baseError: baseError{
			pos:   n.GetSpan().Start,
			owner: owner,
			msg:   fmt.Sprintf("invalid number of arguments. Expected %s, but got %d", spec, got),
		},
		Expected: spec,
		Got:      got,
	}
}

// UnknownOptionError reports an option a command does not accept.
type UnknownOptionError struct {
	baseError
	Option string
}

func newUnknownOptionError(o *parser.OptionExpression, owner string, allowed []string) *UnknownOptionError {
	msg := fmt.Sprintf("invalid option --%s", o.Name)
	if len(allowed) > 0 {
		msg += fmt.Sprintf(". Expected one of: %s", strings.Join(allowed, ", "))
	} else {
		msg += ". The command accepts no options"
	}
	return &UnknownOptionError{
		baseError: baseError{pos: o.GetSpan().Start, owner: owner, msg: msg},
		Option:    o.Name,
	}
}

// UnknownModuleError reports a command prefix that names no loaded module.
type UnknownModuleError struct {
	baseError
	Module string
}

// NewUnknownModuleError creates an unknown module error for c.
func NewUnknownModuleError(c *parser.CommandExpression, name string) *UnknownModuleError {
	return &UnknownModuleError{
		baseError: baseError{
			pos:   c.GetSpan().Start,
			owner: c.FullName(),
			msg:   fmt.Sprintf("module %s not found. Did you forget to load it?", name),
		},
		Module: name,
	}
}

// UnknownCommandError reports a command a module does not define.
type UnknownCommandError struct {
	baseError
	Command string
}

// NewUnknownCommandError creates an unknown command error for c in m.
func NewUnknownCommandError(m *Module, c *parser.CommandExpression) *UnknownCommandError {
	return &UnknownCommandError{
		baseError: baseError{
			pos:   c.GetSpan().Start,
			owner: commandOwner(m, c),
			msg:   fmt.Sprintf("command not found on module %s", m.Name),
		},
		Command: c.Name,
	}
}

// BindingNotFoundError reports an identifier with no binding.
type BindingNotFoundError struct {
	baseError
	Name string
}

// NewBindingNotFoundError creates a binding error for the identifier n.
func NewBindingNotFoundError(n *parser.ProbableIdentifier) *BindingNotFoundError {
	return &BindingNotFoundError{
		baseError: baseError{
			pos: n.GetSpan().Start,
			msg: fmt.Sprintf("%s not defined", n.Value),
		},
		Name: n.Value,
	}
}

// InvalidAddressError reports a value used where an address is required.
type InvalidAddressError struct {
	baseError
	Value string
}

// NewInvalidAddressError creates an address error at n owned by owner.
func NewInvalidAddressError(n parser.Node, owner string, value any) *InvalidAddressError {
	v := fmt.Sprint(value)
	return &InvalidAddressError{
		baseError: baseError{
			pos:   n.GetSpan().Start,
			owner: owner,
			msg:   fmt.Sprintf("invalid address. Expected an address, but got %s", v),
		},
		Value: v,
	}
}

// ExpressionError reports a node evaluated as a value that has none, such
// as a block passed where an argument value is expected.
type ExpressionError struct {
	baseError
	Node string
}

// NewExpressionError creates an expression error for n.
func NewExpressionError(n parser.Node) *ExpressionError {
	return &ExpressionError{
		baseError: baseError{
			pos: n.GetSpan().Start,
			msg: fmt.Sprintf("%s cannot be used as a value", describeNode(n)),
		},
		Node: n.Type().String(),
	}
}

func describeNode(n parser.Node) string {
	switch n.(type) {
	case *parser.BlockExpression:
		return "block"
	case *parser.OptionExpression:
		return "option"
	case *parser.CommandExpression:
		return "command"
	default:
		return n.Type().String()
	}
}

// CommandError reports a failed command. Cause holds the provider error
// when the failure came from a collaborator.
type CommandError struct {
	baseError
	Cause error
}

// NewCommandError creates a command error with a formatted message.
func NewCommandError(m *Module, c *parser.CommandExpression, format string, args ...any) *CommandError {
	return &CommandError{baseError: baseError{
		pos:   c.GetSpan().Start,
		owner: commandOwner(m, c),
		msg:   fmt.Sprintf(format, args...),
	}}
}

// WrapCommandError wraps cause, keeping its message. msg may be empty.
func WrapCommandError(m *Module, c *parser.CommandExpression, msg string, cause error) *CommandError {
	e := NewCommandError(m, c, "%s", msg)
	e.Cause = cause
	return e
}

func (e *CommandError) Error() string {
	return e.baseError.withCause(e.Cause)
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// HelperFunctionError reports a failed or unknown helper.
type HelperFunctionError struct {
	baseError
	Cause error
}

// NewHelperError creates a helper error with a formatted message.
func NewHelperError(h *parser.HelperFunctionExpression, format string, args ...any) *HelperFunctionError {
	return &HelperFunctionError{baseError: baseError{
		pos:   h.GetSpan().Start,
		owner: helperOwner(h),
		msg:   fmt.Sprintf(format, args...),
	}}
}

// WrapHelperError wraps cause, keeping its message. msg may be empty.
func WrapHelperError(h *parser.HelperFunctionExpression, msg string, cause error) *HelperFunctionError {
	e := NewHelperError(h, "%s", msg)
	e.Cause = cause
	return e
}

func (e *HelperFunctionError) Error() string {
	return e.baseError.withCause(e.Cause)
}

func (e *HelperFunctionError) Unwrap() error {
	return e.Cause
}

// Kind returns the taxonomy name of err ("CommandError", "SyntaxError", ...)
// or "Error" for errors outside the taxonomy.
func Kind(err error) string {
	switch err.(type) {
	case *parser.SyntaxError:
		return "SyntaxError"
	case *ArgsLengthError:
		return "ArgsLengthError"
	case *UnknownOptionError:
		return "UnknownOptionError"
	case *UnknownModuleError:
		return "UnknownModuleError"
	case *UnknownCommandError:
		return "UnknownCommandError"
	case *BindingNotFoundError:
		return "BindingNotFoundError"
	case *InvalidAddressError:
		return "InvalidAddressError"
	case *ExpressionError:
		return "ExpressionError"
	case *CommandError:
		return "CommandError"
	case *HelperFunctionError:
		return "HelperFunctionError"
	default:
		return "Error"
	}
}

// Report is the wire form of an interpretation error.
type Report struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Owner   string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column  int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// NewReport describes err. Line and Column are zero when err carries no
// source position.
func NewReport(err error) Report {
	r := Report{Kind: "Error", Message: err.Error()}

	var serr *parser.SyntaxError
	var merr Error
	switch {
	case errors.As(err, &serr):
		r.Kind = "SyntaxError"
		r.Line, r.Column = serr.Span.Start.Line, serr.Span.Start.Column
	case errors.As(err, &merr):
		r.Kind = Kind(merr)
		r.Owner = merr.Owner()
		r.Line, r.Column = merr.Position().Line, merr.Position().Column
	}
	return r
}
