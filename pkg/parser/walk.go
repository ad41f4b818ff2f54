package parser

// Visitor is called for each node during Walk. Returning false skips the
// node's children.
type Visitor func(n Node) bool

// Walk traverses the tree rooted at n in depth-first source order.
func Walk(n Node, visit Visitor) {
	if n == nil || !visit(n) {
		return
	}

	switch n := n.(type) {
	case *Script:
		for _, c := range n.Body {
			Walk(c, visit)
		}
	case *BlockExpression:
		for _, c := range n.Body {
			Walk(c, visit)
		}
	case *CommandExpression:
		for _, a := range n.Args {
			Walk(a, visit)
		}
		for _, o := range n.Opts {
			Walk(o, visit)
		}
	case *HelperFunctionExpression:
		for _, a := range n.Args {
			Walk(a, visit)
		}
	case *ArrayExpression:
		for _, e := range n.Elements {
			Walk(e, visit)
		}
	case *OptionExpression:
		Walk(n.Value, visit)
	}
}

// Commands returns every command in the script, including those nested in
// blocks, in source order.
func Commands(s *Script) []*CommandExpression {
	var cmds []*CommandExpression
	Walk(s, func(n Node) bool {
		if c, ok := n.(*CommandExpression); ok {
			cmds = append(cmds, c)
		}
		return true
	})
	return cmds
}
