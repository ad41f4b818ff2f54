package interpreter

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/CommonsSwarm/evmscripter/internal/bindings"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"golang.org/x/sync/errgroup"
)

// interpretCommands runs cmds one after another and concatenates their
// actions.
func (r *run) interpretCommands(ctx context.Context, cmds []*parser.CommandExpression) ([]module.Action, error) {
	var actions []module.Action
	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := r.interpretCommand(ctx, c)
		if err != nil {
			return nil, err
		}
		actions = append(actions, out...)
	}
	return actions, nil
}

func (r *run) interpretCommand(ctx context.Context, c *parser.CommandExpression) ([]module.Action, error) {
	m, ok := r.moduleFor(c.Module)
	if !ok {
		return nil, module.NewUnknownModuleError(c, c.Module)
	}
	cmd, ok := m.Commands[c.Name]
	if !ok {
		return nil, module.NewUnknownCommandError(m, c)
	}
	if err := module.CheckCommand(m, cmd, c); err != nil {
		return nil, err
	}

	r.logger.Debug("dispatching command",
		"command", module.Owner(m, c),
		"pos", c.Pos().String(),
		"args", len(c.Args))

	actions, err := cmd.Run(ctx, m, c, r)
	if err != nil {
		return nil, asCommandError(m, c, err)
	}
	return actions, nil
}

// asCommandError keeps taxonomy errors as they are and wraps anything else,
// such as provider failures, into a CommandError.
func asCommandError(m *module.Module, c *parser.CommandExpression, err error) error {
	var typed module.Error
	if errors.As(err, &typed) {
		return err
	}
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return module.WrapCommandError(m, c, "", err)
}

// InterpretBlock implements module.Env. The scope is exited on every path.
func (r *run) InterpretBlock(ctx context.Context, b *parser.BlockExpression, enter func(*bindings.Manager)) ([]module.Action, error) {
	r.bindings.EnterScope()
	defer func() {
		// The frame pushed above is always present here.
		_ = r.bindings.ExitScope()
	}()

	if enter != nil {
		enter(r.bindings)
	}
	return r.interpretCommands(ctx, b.Body)
}

// InterpretNode implements module.Env.
func (r *run) InterpretNode(ctx context.Context, n parser.Node, opts module.EvalOptions) (any, error) {
	switch n := n.(type) {
	case *parser.NumberLiteral:
		return new(big.Int).Set(n.Value), nil
	case *parser.StringLiteral:
		return n.Value, nil
	case *parser.BoolLiteral:
		return n.Value, nil
	case *parser.AddressLiteral:
		return n.Value, nil
	case *parser.Bytes32Literal:
		return n.Value, nil
	case *parser.ArrayExpression:
		values, err := r.InterpretNodes(ctx, n.Elements, opts)
		if err != nil {
			return nil, err
		}
		if values == nil {
			values = []any{}
		}
		return values, nil
	case *parser.ProbableIdentifier:
		return r.resolveIdentifier(n, opts)
	case *parser.HelperFunctionExpression:
		return r.interpretHelper(ctx, n)
	case nil:
		return nil, errors.New("missing expression")
	default:
		return nil, module.NewExpressionError(n)
	}
}

// InterpretNodes implements module.Env. Nodes are evaluated concurrently;
// on failure the error of the leftmost failing node is returned.
func (r *run) InterpretNodes(ctx context.Context, nodes []parser.Node, opts module.EvalOptions) ([]any, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	if len(nodes) == 1 {
		v, err := r.InterpretNode(ctx, nodes[0], opts)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}

	values := make([]any, len(nodes))
	errs := make([]error, len(nodes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, n := range nodes {
		g.Go(func() error {
			values[i], errs[i] = r.InterpretNode(gctx, n, opts)
			return errs[i]
		})
	}
	if err := g.Wait(); err != nil {
		return nil, firstError(errs, err)
	}
	return values, nil
}

// firstError picks the leftmost error that is not a cancellation caused by a
// sibling failing.
func firstError(errs []error, fallback error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return fallback
}

func (r *run) resolveIdentifier(id *parser.ProbableIdentifier, opts module.EvalOptions) (any, error) {
	if name, ok := strings.CutPrefix(id.Value, "$"); ok {
		if v, ok := r.bindings.Lookup(name, bindings.User); ok {
			return v, nil
		}
		return nil, module.NewBindingNotFoundError(id)
	}

	if v, ok := r.bindings.Lookup(id.Value, bindings.Addr); ok {
		return v, nil
	}
	if opts.TreatAsLiteral {
		return id.Value, nil
	}
	return nil, module.NewBindingNotFoundError(id)
}

func (r *run) interpretHelper(ctx context.Context, h *parser.HelperFunctionExpression) (any, error) {
	m, helper, ok := r.helperFor(h.Name)
	if !ok {
		return nil, module.NewHelperError(h, "helper not found. Did you forget to load its module?")
	}
	if err := module.CheckHelper(helper, h); err != nil {
		return nil, err
	}

	r.logger.Debug("calling helper", "helper", "@"+h.Name, "module", m.Name, "pos", h.Pos().String())

	v, err := helper.Run(ctx, m, h, r)
	if err != nil {
		var typed module.Error
		if errors.As(err, &typed) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, module.WrapHelperError(h, "", err)
	}
	return v, nil
}
