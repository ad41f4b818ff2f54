// Package module defines the contract between the interpreter and protocol
// modules: the Action type commands produce, command and helper tables,
// pre-dispatch validation, the evaluation callbacks handlers receive, and the
// error taxonomy.
package module

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/CommonsSwarm/evmscripter/internal/bindings"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/dao"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
)

// CommandFunc implements a command. It returns the actions the command emits.
type CommandFunc func(ctx context.Context, m *Module, c *parser.CommandExpression, env Env) ([]Action, error)

// HelperFunc implements a helper. Helpers produce a value and never emit
// actions.
type HelperFunc func(ctx context.Context, m *Module, h *parser.HelperFunctionExpression, env Env) (any, error)

// Command is an entry of a module's command table.
type Command struct {
	Args    ArgsSpec
	Options []string // accepted option names
	Usage   string
	Run     CommandFunc
}

// Helper is an entry of a module's helper table.
type Helper struct {
	Args  ArgsSpec
	Usage string
	Run   HelperFunc
}

// Definition describes a module: its canonical name, default alias and
// command and helper tables.
type Definition struct {
	Name        string
	Alias       string
	Description string
	Commands    map[string]Command
	Helpers     map[string]Helper
}

// Module is a module loaded into a running script.
type Module struct {
	*Definition
	// Alias is the name the script loaded the module as, if any.
	Alias string
}

// ConfigValue returns the module variable name, set with
// "set $<alias>:<name> <value>".
func (m *Module) ConfigValue(env Env, name string) (any, bool) {
	return env.Bindings().ModuleVar(m.Name, name)
}

// EvalOptions controls how InterpretNode resolves bare words.
type EvalOptions struct {
	// TreatAsLiteral makes unbound probable identifiers evaluate to their
	// raw text instead of failing.
	TreatAsLiteral bool
}

// Literal and Strict are the two evaluation modes.
var (
	Literal = EvalOptions{TreatAsLiteral: true}
	Strict  = EvalOptions{}
)

// Env gives handlers access to the running interpretation.
type Env interface {
	InterpretNode(ctx context.Context, n parser.Node, opts EvalOptions) (any, error)
	// InterpretNodes evaluates independent nodes concurrently and returns
	// their values in order.
	InterpretNodes(ctx context.Context, nodes []parser.Node, opts EvalOptions) ([]any, error)
	// InterpretBlock runs the commands of b in a new scope. enter, when not
	// nil, is called once the scope exists so the caller can seed bindings.
	InterpretBlock(ctx context.Context, b *parser.BlockExpression, enter func(*bindings.Manager)) ([]Action, error)

	Bindings() *bindings.Manager
	DAOs() *dao.Stack
	Client() chain.Client
	Names() chain.NameResolver
	Artifacts() dao.ArtifactFetcher
	// ENSRegistry returns the configured registry override, if any.
	ENSRegistry() (common.Address, bool)

	// NextNonce returns the next CREATE nonce of addr. The first call reads
	// the chain; later calls count locally.
	NextNonce(ctx context.Context, addr common.Address) (uint64, error)
	LoadModule(name, alias string) (*Module, error)
	Logger() *slog.Logger
}

// Registry is the table of modules available to scripts.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*Definition
	byAlias map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]*Definition),
		byAlias: make(map[string]*Definition),
	}
}

// Register adds a module. Names and aliases must be unique.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("module name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(def.Name) {
		return fmt.Errorf("module %s is already registered", def.Name)
	}
	if def.Alias != "" && def.Alias != def.Name && r.taken(def.Alias) {
		return fmt.Errorf("module alias %s is already registered", def.Alias)
	}

	r.byName[def.Name] = def
	if def.Alias != "" {
		r.byAlias[def.Alias] = def
	}
	return nil
}

func (r *Registry) taken(name string) bool {
	_, byName := r.byName[name]
	_, byAlias := r.byAlias[name]
	return byName || byAlias
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(defs ...*Definition) *Registry {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

// Lookup returns the module registered under name or alias.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.byName[name]; ok {
		return def, true
	}
	def, ok := r.byAlias[name]
	return def, ok
}

// All returns the registered modules sorted by name.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.byName))
	for _, def := range r.byName {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// CommandNames returns the sorted command names of def.
func (def *Definition) CommandNames() []string {
	names := make([]string, 0, len(def.Commands))
	for name := range def.Commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HelperNames returns the sorted helper names of def.
func (def *Definition) HelperNames() []string {
	names := make([]string, 0, len(def.Helpers))
	for name := range def.Helpers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Info is the wire form of a Definition.
type Info struct {
	Name        string   `json:"name" yaml:"name"`
	Alias       string   `json:"alias,omitempty" yaml:"alias,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Commands    []string `json:"commands" yaml:"commands"`
	Helpers     []string `json:"helpers" yaml:"helpers"`
}

// Info describes def.
func (def *Definition) Info() Info {
	return Info{
		Name:        def.Name,
		Alias:       def.Alias,
		Description: def.Description,
		Commands:    def.CommandNames(),
		Helpers:     def.HelperNames(),
	}
}
