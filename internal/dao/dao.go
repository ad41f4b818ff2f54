// Package dao holds the AragonOS state tracked while a "connect" block runs:
// the kernel and ACL addresses, the apps known or installed so far, and the
// artifacts fetched for their code addresses.
//
// A Context lives exactly as long as its connect block. Contexts are stacked
// on a Stack owned by the interpreter, never by a module.
package dao

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Role is a permission declared by an app artifact.
type Role struct {
	ID     string      // e.g. TRANSFER_ROLE
	Name   string      // human readable description
	Hash   common.Hash // keccak256(ID)
	Params []string
}

// Artifact is the ABI and role metadata of an app version.
type Artifact struct {
	ABI   abi.ABI
	Roles []Role
}

// Role returns the artifact role with the given hash.
func (a *Artifact) Role(hash common.Hash) (Role, bool) {
	for _, r := range a.Roles {
		if r.Hash == hash {
			return r, true
		}
	}
	return Role{}, false
}

// ArtifactFetcher loads an artifact from content-addressed storage.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, contentURI string) (*Artifact, error)
}

// Permission is the known state of one (app, role) pair.
type Permission struct {
	Manager common.Address // zero when the permission does not exist yet
	// Grantees records whether an entity holds the permission. Entities
	// missing from the map have not been checked yet.
	Grantees map[common.Address]bool
}

// Exists reports whether the permission has been created on the ACL.
func (p *Permission) Exists() bool {
	return p.Manager != (common.Address{})
}

// Holder reports whether grantee holds the permission and whether that is
// known.
func (p *Permission) Holder(grantee common.Address) (held, known bool) {
	held, known = p.Grantees[grantee]
	return held, known
}

// SetHolder records whether grantee holds the permission.
func (p *Permission) SetHolder(grantee common.Address, held bool) {
	if p.Grantees == nil {
		p.Grantees = make(map[common.Address]bool)
	}
	p.Grantees[grantee] = held
}

// AppRecord describes an app inside a connected DAO.
type AppRecord struct {
	Identifier  string // e.g. vault.aragonpm.eth:treasury
	Address     common.Address
	CodeAddress common.Address
	ContentURI  string
	ABI         *abi.ABI

	// Local is true for apps installed by the running script. Their
	// permission state is fully known; remote apps are read from the ACL on
	// first use.
	Local       bool
	Permissions map[common.Hash]*Permission
}

// Permission returns the cached permission for role, creating an empty entry
// when create is set.
func (a *AppRecord) Permission(role common.Hash, create bool) (*Permission, bool) {
	p, ok := a.Permissions[role]
	if !ok && create {
		if a.Permissions == nil {
			a.Permissions = make(map[common.Hash]*Permission)
		}
		p = &Permission{Grantees: make(map[common.Address]bool)}
		a.Permissions[role] = p
	}
	return p, ok
}

// Context is the state of one connected DAO.
type Context struct {
	Name      string // as written in the connect command
	Kernel    common.Address
	ACL       common.Address
	apps      map[string]*AppRecord
	artifacts map[common.Address]*Artifact
}

// NewContext creates a context for the given kernel and ACL and seeds
// records for both.
func NewContext(name string, kernel, acl common.Address) *Context {
	c := &Context{
		Name:      name,
		Kernel:    kernel,
		ACL:       acl,
		apps:      make(map[string]*AppRecord),
		artifacts: make(map[common.Address]*Artifact),
	}
	c.apps["kernel"] = &AppRecord{Identifier: "kernel", Address: kernel}
	c.apps["acl"] = &AppRecord{Identifier: "acl", Address: acl}
	return c
}

// App returns the app with the given identifier.
func (c *Context) App(identifier string) (*AppRecord, bool) {
	a, ok := c.apps[identifier]
	return a, ok
}

// AppByAddress returns the app record at addr.
func (c *Context) AppByAddress(addr common.Address) (*AppRecord, bool) {
	for _, a := range c.apps {
		if a.Address == addr {
			return a, true
		}
	}
	return nil, false
}

// RemoteApp returns the record for addr, creating a remote record keyed by
// the address when the app is unknown.
func (c *Context) RemoteApp(addr common.Address) *AppRecord {
	if a, ok := c.AppByAddress(addr); ok {
		return a
	}
	a := &AppRecord{Identifier: addr.Hex(), Address: addr}
	c.apps[a.Identifier] = a
	return a
}

// AddApp records a new app. Identifiers cannot be rebound.
func (c *Context) AddApp(rec *AppRecord) error {
	if _, ok := c.apps[rec.Identifier]; ok {
		return fmt.Errorf("identifier %s is already in use", rec.Identifier)
	}
	c.apps[rec.Identifier] = rec
	return nil
}

// Apps returns the identifiers of all known apps, sorted.
func (c *Context) Apps() []string {
	ids := make([]string, 0, len(c.apps))
	for id := range c.apps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Artifact returns the cached artifact for a code address.
func (c *Context) Artifact(code common.Address) (*Artifact, bool) {
	a, ok := c.artifacts[code]
	return a, ok
}

// SetArtifact caches the artifact for a code address.
func (c *Context) SetArtifact(code common.Address, a *Artifact) {
	c.artifacts[code] = a
}

// Stack is the stack of connected DAOs; the innermost connect is on top.
type Stack struct {
	contexts []*Context
}

// Push makes c the current context.
func (s *Stack) Push(c *Context) {
	s.contexts = append(s.contexts, c)
}

// Pop removes the current context.
func (s *Stack) Pop() {
	if len(s.contexts) == 0 {
		return
	}
	s.contexts[len(s.contexts)-1] = nil
	s.contexts = s.contexts[:len(s.contexts)-1]
}

// Current returns the innermost context.
func (s *Stack) Current() (*Context, bool) {
	if len(s.contexts) == 0 {
		return nil, false
	}
	return s.contexts[len(s.contexts)-1], true
}

// Len returns the number of connected DAOs.
func (s *Stack) Len() int {
	return len(s.contexts)
}
