// Package bindings implements the scoped symbol table used while a script is
// interpreted.
//
// Frames form a stack. Lookups walk from the innermost frame to the root;
// writes go to the innermost frame unless they are global, in which case they
// go to the root. Keys are structured so module configuration, user
// variables, resolved addresses and module aliases never collide.
package bindings

import (
	"errors"
	"fmt"
	"sync"
)

// Namespace partitions bindings by kind.
type Namespace int

// Namespace constants.
const (
	Addr   Namespace = iota // resolved addresses (apps, kernel, acl, ...)
	User                    // $variables set by scripts
	Module                  // module configuration, keyed by module name
	Alias                   // module alias -> module name
)

func (n Namespace) String() string {
	switch n {
	case Addr:
		return "addr"
	case User:
		return "user"
	case Module:
		return "module"
	case Alias:
		return "alias"
	default:
		return fmt.Sprintf("namespace(%d)", int(n))
	}
}

// Key identifies a binding. Module is only meaningful in the Module
// namespace.
type Key struct {
	Namespace Namespace
	Module    string
	Name      string
}

func (k Key) String() string {
	if k.Module != "" {
		return fmt.Sprintf("%s:%s:%s", k.Namespace, k.Module, k.Name)
	}
	return fmt.Sprintf("%s:%s", k.Namespace, k.Name)
}

// ErrRootScope is returned when exiting the root frame.
var ErrRootScope = errors.New("cannot exit the root scope")

type frame map[Key]any

// Manager is a stack of binding frames. It is safe for concurrent use; the
// interpreter only writes while no argument evaluation is in flight.
type Manager struct {
	mu     sync.RWMutex
	frames []frame
}

// New returns a manager with a single root frame.
func New() *Manager {
	return &Manager{frames: []frame{{}}}
}

// Get returns the nearest binding for key, searching innermost to root.
func (m *Manager) Get(key Key) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.frames) - 1; i >= 0; i-- {
		if v, ok := m.frames[i][key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Lookup is shorthand for Get(Key{Namespace: ns, Name: name}).
func (m *Manager) Lookup(name string, ns Namespace) (any, bool) {
	return m.Get(Key{Namespace: ns, Name: name})
}

// Set binds key in the innermost frame, or in the root frame when global.
func (m *Manager) Set(key Key, value any, global bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if global {
		m.frames[0][key] = value
		return
	}
	m.frames[len(m.frames)-1][key] = value
}

// SetModuleVar stores a module configuration value. Module configuration is
// script-wide, so it is always written to the root frame.
func (m *Manager) SetModuleVar(module, name string, value any) {
	m.Set(Key{Namespace: Module, Module: module, Name: name}, value, true)
}

// ModuleVar reads a module configuration value.
func (m *Manager) ModuleVar(module, name string) (any, bool) {
	return m.Get(Key{Namespace: Module, Module: module, Name: name})
}

// EnterScope pushes a new empty frame.
func (m *Manager) EnterScope() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frame{})
}

// ExitScope pops the innermost frame, discarding its bindings.
func (m *Manager) ExitScope() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.frames) == 1 {
		return ErrRootScope
	}
	m.frames[len(m.frames)-1] = nil
	m.frames = m.frames[:len(m.frames)-1]
	return nil
}

// Depth returns the number of frames, including the root.
func (m *Manager) Depth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.frames)
}
