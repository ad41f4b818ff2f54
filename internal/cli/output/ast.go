package output

import (
	"strconv"

	"github.com/CommonsSwarm/evmscripter/pkg/parser"
)

// TreeNode is the serialisable form of an AST node.
type TreeNode struct {
	Type   string     `json:"type" yaml:"type"`
	Pos    string     `json:"pos" yaml:"pos"`
	Module string     `json:"module,omitempty" yaml:"module,omitempty"`
	Name   string     `json:"name,omitempty" yaml:"name,omitempty"`
	Value  string     `json:"value,omitempty" yaml:"value,omitempty"`
	Args   []TreeNode `json:"args,omitempty" yaml:"args,omitempty"`
	Opts   []TreeNode `json:"opts,omitempty" yaml:"opts,omitempty"`
	Body   []TreeNode `json:"body,omitempty" yaml:"body,omitempty"`
}

// Tree converts n and its children into TreeNodes.
func Tree(n parser.Node) TreeNode {
	t := TreeNode{Type: n.Type().String(), Pos: n.GetSpan().Start.String()}

	switch n := n.(type) {
	case *parser.Script:
		t.Body = commandTrees(n.Body)
	case *parser.BlockExpression:
		t.Body = commandTrees(n.Body)
	case *parser.CommandExpression:
		t.Module, t.Name = n.Module, n.Name
		t.Args = trees(n.Args)
		for _, o := range n.Opts {
			t.Opts = append(t.Opts, Tree(o))
		}
	case *parser.HelperFunctionExpression:
		t.Name = n.Name
		t.Args = trees(n.Args)
	case *parser.OptionExpression:
		t.Name = n.Name
		t.Args = []TreeNode{Tree(n.Value)}
	case *parser.ArrayExpression:
		t.Args = trees(n.Elements)
	case *parser.NumberLiteral:
		t.Value = n.Value.String()
	case *parser.StringLiteral:
		t.Value = n.Value
	case *parser.BoolLiteral:
		t.Value = strconv.FormatBool(n.Value)
	case *parser.AddressLiteral:
		t.Value = n.Value.Hex()
	case *parser.Bytes32Literal:
		t.Value = n.Value.Hex()
	case *parser.ProbableIdentifier:
		t.Value = n.Value
	}
	return t
}

func trees(nodes []parser.Node) []TreeNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]TreeNode, len(nodes))
	for i, n := range nodes {
		out[i] = Tree(n)
	}
	return out
}

func commandTrees(cmds []*parser.CommandExpression) []TreeNode {
	if len(cmds) == 0 {
		return nil
	}
	out := make([]TreeNode, len(cmds))
	for i, c := range cmds {
		out[i] = Tree(c)
	}
	return out
}

// RenderScript writes the syntax tree of script, as JSON in json mode and
// as YAML otherwise.
func (r *Renderer) RenderScript(script *parser.Script) error {
	tree := Tree(script)
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(tree)
	}
	return r.YAML(tree)
}
