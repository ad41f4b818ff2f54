package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/CommonsSwarm/evmscripter/internal/bindings"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/dao"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/ethereum/go-ethereum/common"
)

// run is the state of one interpretation. It implements module.Env.
type run struct {
	cfg    *Config
	logger *slog.Logger

	bindings *bindings.Manager
	daos     dao.Stack

	// loaded modules by canonical name, and in load order
	loaded map[string]*module.Module
	order  []*module.Module

	nonceMu sync.Mutex
	nonces  map[common.Address]uint64
}

var _ module.Env = (*run)(nil)

func newRun(cfg *Config, logger *slog.Logger) *run {
	return &run{
		cfg:      cfg,
		logger:   logger,
		bindings: bindings.New(),
		loaded:   make(map[string]*module.Module),
		nonces:   make(map[common.Address]uint64),
	}
}

func (r *run) Bindings() *bindings.Manager { return r.bindings }
func (r *run) DAOs() *dao.Stack { return &r.daos }
func (r *run) Client() chain.Client { return r.cfg.Client }
func (r *run) Names() chain.NameResolver { return r.cfg.Names }
func (r *run) Artifacts() dao.ArtifactFetcher { return r.cfg.Artifacts }
func (r *run) Logger() *slog.Logger { return r.logger }

func (r *run) ENSRegistry() (common.Address, bool) {
	return r.cfg.ENSRegistry, r.cfg.ENSRegistry != (common.Address{})
}

// NextNonce implements module.Env.
func (r *run) NextNonce(ctx context.Context, addr common.Address) (uint64, error) {
	r.nonceMu.Lock()
	defer r.nonceMu.Unlock()

	n, ok := r.nonces[addr]
	if !ok {
		var err error
		n, err = r.cfg.Client.NonceAt(ctx, addr, nil)
		if err != nil {
			return 0, fmt.Errorf("read nonce of %s: %w", addr.Hex(), err)
		}
	}
	r.nonces[addr] = n + 1
	return n, nil
}

// LoadModule implements module.Env.
func (r *run) LoadModule(name, alias string) (*module.Module, error) {
	def, ok := r.cfg.Registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("module %s not found", name)
	}
	if _, ok := r.loaded[def.Name]; ok {
		return nil, fmt.Errorf("module %s already loaded", def.Name)
	}
	if alias != "" {
		if r.aliasTaken(alias) {
			return nil, fmt.Errorf("alias %s already in use", alias)
		}
		r.bindings.Set(bindings.Key{Namespace: bindings.Alias, Name: alias}, def.Name, true)
	} else if def.Alias != "" && def.Alias != def.Name && !r.aliasTaken(def.Alias) {
		// The registered short name works as a prefix unless the script
		// already claimed it.
		alias = def.Alias
		r.bindings.Set(bindings.Key{Namespace: bindings.Alias, Name: alias}, def.Name, true)
	}

	m := &module.Module{Definition: def, Alias: alias}
	r.loaded[def.Name] = m
	r.order = append(r.order, m)

	r.logger.Debug("module loaded", "module", def.Name, "alias", alias)
	return m, nil
}

func (r *run) aliasTaken(alias string) bool {
	if _, taken := r.bindings.Lookup(alias, bindings.Alias); taken {
		return true
	}
	_, taken := r.loaded[alias]
	return taken
}

// moduleFor resolves a command prefix: alias bindings first, then loaded
// module names.
func (r *run) moduleFor(prefix string) (*module.Module, bool) {
	if prefix == "" {
		prefix = StdModule
	}
	if v, ok := r.bindings.Lookup(prefix, bindings.Alias); ok {
		if name, ok := v.(string); ok {
			m, ok := r.loaded[name]
			return m, ok
		}
	}
	m, ok := r.loaded[prefix]
	return m, ok
}

// helperFor finds the module defining helper name: std first, then load
// order.
func (r *run) helperFor(name string) (*module.Module, module.Helper, bool) {
	for _, m := range r.order {
		if h, ok := m.Helpers[name]; ok {
			return m, h, true
		}
	}
	return nil, module.Helper{}, false
}
