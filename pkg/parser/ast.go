package parser

import (
	"math/big"

	"github.com/CommonsSwarm/evmscripter/pkg/token"
	"github.com/ethereum/go-ethereum/common"
)

// NodeType identifies the kind of an AST node.
type NodeType int

// NodeType constants for every node kind in the script grammar.
const (
	ScriptNode NodeType = iota
	BlockExpressionNode
	CommandExpressionNode
	HelperFunctionExpressionNode
	NumberLiteralNode
	StringLiteralNode
	BoolLiteralNode
	AddressLiteralNode
	Bytes32LiteralNode
	ArrayExpressionNode
	ProbableIdentifierNode
	OptionExpressionNode
)

func (t NodeType) String() string {
	switch t {
	case ScriptNode:
		return "Script"
	case BlockExpressionNode:
		return "BlockExpression"
	case CommandExpressionNode:
		return "CommandExpression"
	case HelperFunctionExpressionNode:
		return "HelperFunctionExpression"
	case NumberLiteralNode:
		return "NumberLiteral"
	case StringLiteralNode:
		return "StringLiteral"
	case BoolLiteralNode:
		return "BoolLiteral"
	case AddressLiteralNode:
		return "AddressLiteral"
	case Bytes32LiteralNode:
		return "Bytes32Literal"
	case ArrayExpressionNode:
		return "ArrayExpression"
	case ProbableIdentifierNode:
		return "ProbableIdentifier"
	case OptionExpressionNode:
		return "OptionExpression"
	default:
		return "Unknown"
	}
}

// Node is implemented by every AST node. Trees returned by Parse are never
// modified afterwards; consumers must treat them as read-only.
type Node interface {
	GetSpan() token.Span
	Type() NodeType
	node()
}

// NodeInfo provides the source span shared by all nodes.
type NodeInfo struct {
	Span token.Span
}

// GetSpan returns the node's source span.
func (n *NodeInfo) GetSpan() token.Span {
	return n.Span
}

// Pos returns the start position of the node.
func (n *NodeInfo) Pos() Position {
	return n.Span.Start
}

func (n *NodeInfo) node() {}

// Script is the root of a parsed script.
type Script struct {
	NodeInfo
	Body []*CommandExpression
}

// Type implements Node.
func (*Script) Type() NodeType { return ScriptNode }

// BlockExpression is a parenthesised list of commands passed as a command
// argument, e.g. the body of "connect".
type BlockExpression struct {
	NodeInfo
	Body []*CommandExpression
}

// Type implements Node.
func (*BlockExpression) Type() NodeType { return BlockExpressionNode }

// CommandExpression is a single statement: [module:]name args... --opts.
type CommandExpression struct {
	NodeInfo
	Module string // prefix before ':' (empty for unprefixed commands)
	Name   string
	Args   []Node
	Opts   []*OptionExpression
}

// Type implements Node.
func (*CommandExpression) Type() NodeType { return CommandExpressionNode }

// FullName returns the command as written, including its module prefix.
func (c *CommandExpression) FullName() string {
	if c.Module == "" {
		return c.Name
	}
	return c.Module + ":" + c.Name
}

// Opt returns the option with the given name, or nil.
func (c *CommandExpression) Opt(name string) *OptionExpression {
	for _, o := range c.Opts {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// HelperFunctionExpression is a helper call: @name(args...).
type HelperFunctionExpression struct {
	NodeInfo
	Name string
	Args []Node
}

// Type implements Node.
func (*HelperFunctionExpression) Type() NodeType { return HelperFunctionExpressionNode }

// OptionExpression is a --name value pair attached to a command.
type OptionExpression struct {
	NodeInfo
	Name  string
	Value Node
}

// Type implements Node.
func (*OptionExpression) Type() NodeType { return OptionExpressionNode }

// ---------- Literals ----------

// NumberLiteral is an integer written in decimal, hex or exponent form.
type NumberLiteral struct {
	NodeInfo
	Raw   string
	Value *big.Int
}

// Type implements Node.
func (*NumberLiteral) Type() NodeType { return NumberLiteralNode }

// StringLiteral is a quoted string.
type StringLiteral struct {
	NodeInfo
	Value string
}

// Type implements Node.
func (*StringLiteral) Type() NodeType { return StringLiteralNode }

// BoolLiteral is true or false.
type BoolLiteral struct {
	NodeInfo
	Value bool
}

// Type implements Node.
func (*BoolLiteral) Type() NodeType { return BoolLiteralNode }

// AddressLiteral is a 0x-prefixed 20-byte hex value.
type AddressLiteral struct {
	NodeInfo
	Raw   string
	Value common.Address
}

// Type implements Node.
func (*AddressLiteral) Type() NodeType { return AddressLiteralNode }

// Bytes32Literal is a 0x-prefixed 32-byte hex value.
type Bytes32Literal struct {
	NodeInfo
	Value common.Hash
}

// Type implements Node.
func (*Bytes32Literal) Type() NodeType { return Bytes32LiteralNode }

// ArrayExpression is a bracketed, comma-separated list.
type ArrayExpression struct {
	NodeInfo
	Elements []Node
}

// Type implements Node.
func (*ArrayExpression) Type() NodeType { return ArrayExpressionNode }

// ProbableIdentifier is a bare word resolved against bindings at
// interpretation time.
type ProbableIdentifier struct {
	NodeInfo
	Value string
}

// Type implements Node.
func (*ProbableIdentifier) Type() NodeType { return ProbableIdentifierNode }
