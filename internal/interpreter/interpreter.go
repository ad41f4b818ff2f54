// Package interpreter evaluates parsed scripts into an ordered batch of
// actions.
//
// Commands run strictly in textual order because later commands may read
// bindings written by earlier ones. Only the arguments of a single command
// or helper are evaluated concurrently, bounded by Config.Concurrency. Every
// Interpret call owns fresh bindings, a fresh DAO-context stack and fresh
// caches, so an Interpreter may be shared between goroutines.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/dao"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
)

// StdModule is the module unprefixed commands dispatch to.
const StdModule = "std"

// DefaultConcurrency bounds concurrent argument evaluation.
const DefaultConcurrency = 8

// Config holds interpreter configuration.
type Config struct {
	// Client is the account and chain reads are made against.
	Client chain.Client
	// Names resolves ENS names. Defaults to an ENSResolver over Client.
	Names chain.NameResolver
	// Artifacts fetches app artifacts.
	Artifacts dao.ArtifactFetcher
	// Registry holds the modules scripts can load. It must contain std.
	Registry *module.Registry
	// ENSRegistry overrides the per-chain default registry (optional).
	ENSRegistry common.Address
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Concurrency bounds concurrent argument evaluation (default 8).
	Concurrency int
}

// Interpreter turns scripts into actions.
type Interpreter struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an interpreter.
func New(cfg Config) *Interpreter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Names == nil && cfg.Client != nil {
		cfg.Names = chain.ENSResolver{Client: cfg.Client}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Interpreter{cfg: cfg, logger: logger}
}

// Interpret parses and evaluates src. On error no actions are returned.
func Interpret(ctx context.Context, src string, cfg Config) ([]module.Action, error) {
	return New(cfg).Interpret(ctx, src)
}

// Interpret parses and evaluates src. On error no actions are returned.
func (i *Interpreter) Interpret(ctx context.Context, src string) ([]module.Action, error) {
	script, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return i.Run(ctx, script)
}

// Run evaluates an already parsed script.
func (i *Interpreter) Run(ctx context.Context, script *parser.Script) ([]module.Action, error) {
	if i.cfg.Registry == nil {
		return nil, errors.New("interpreter: no module registry configured")
	}
	if i.cfg.Client == nil {
		return nil, errors.New("interpreter: no chain client configured")
	}

	r := newRun(&i.cfg, i.logger)
	if _, err := r.LoadModule(StdModule, ""); err != nil {
		return nil, fmt.Errorf("interpreter: %w", err)
	}

	start := time.Now()
	r.logger.Debug("interpreting script", "commands", len(script.Body))

	actions, err := r.interpretCommands(ctx, script.Body)
	if err != nil {
		r.logger.Debug("script failed", "error", err.Error())
		return nil, err
	}

	r.logger.Debug("script interpreted", "actions", len(actions), "duration", time.Since(start))
	return actions, nil
}
