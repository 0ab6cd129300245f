// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aplane-algo/indyshell/internal/util"
)

// Prompt depths. Distinct scopes occupy distinct prompt slots.
const (
	PoolPromptDepth   = 1
	WalletPromptDepth = 2
	DidPromptDepth    = 3
)

const DefaultBasePrompt = "indy"

// Services are the SDK hooks the context needs: releasing handles left open
// at shutdown and read-only enumeration for completion.
type Services interface {
	ClosePool(handle int32) error
	CloseWallet(handle int32) error
	PoolNames() ([]string, error)
	WalletNames() ([]string, error)
	Dids(walletHandle int32) ([]string, error)
}

// OpenedWallet is the wallet the session operates against.
type OpenedWallet struct {
	Name   string
	Handle int32
}

// ConnectedPool is the pool the session is connected to.
type ConnectedPool struct {
	Name   string
	Handle int32
}

// Context holds the interactive state of one shell session. It is created
// once by the shell, passed to every command and closed at exit.
//
// The shell runs one line at a time and the completer only reads, so the
// context carries no lock.
type Context struct {
	Out *Reporter

	services Services

	wallet    *OpenedWallet
	pool      *ConnectedPool
	activeDid string

	basePrompt string
	subPrompts map[int]string

	exitRequested bool
}

func NewContext(services Services, out *Reporter) *Context {
	return &Context{
		Out:        out,
		services:   services,
		basePrompt: DefaultBasePrompt,
		subPrompts: make(map[int]string),
	}
}

// Wallet

func (c *Context) GetOpenedWallet() (OpenedWallet, bool) {
	if c.wallet == nil {
		return OpenedWallet{}, false
	}
	return *c.wallet, true
}

// EnsureOpenedWallet returns the opened wallet or a precondition error.
func (c *Context) EnsureOpenedWallet() (OpenedWallet, error) {
	w, ok := c.GetOpenedWallet()
	if !ok {
		return OpenedWallet{}, PreconditionViolated("There is no opened wallet now")
	}
	return w, nil
}

func (c *Context) SetOpenedWallet(name string, handle int32) {
	c.wallet = &OpenedWallet{Name: name, Handle: handle}
	c.SetSubPrompt(WalletPromptDepth, fmt.Sprintf("wallet(%s)", name))
}

// UnsetOpenedWallet forgets the wallet and the active DID that lived in it.
func (c *Context) UnsetOpenedWallet() {
	c.wallet = nil
	c.UnsetSubPrompt(WalletPromptDepth)
	c.UnsetActiveDid()
}

// Pool

func (c *Context) GetConnectedPool() (ConnectedPool, bool) {
	if c.pool == nil {
		return ConnectedPool{}, false
	}
	return *c.pool, true
}

func (c *Context) EnsureConnectedPool() (ConnectedPool, error) {
	p, ok := c.GetConnectedPool()
	if !ok {
		return ConnectedPool{}, PreconditionViolated("There is no connected pool now")
	}
	return p, nil
}

func (c *Context) SetConnectedPool(name string, handle int32) {
	c.pool = &ConnectedPool{Name: name, Handle: handle}
	c.SetSubPrompt(PoolPromptDepth, fmt.Sprintf("pool(%s)", name))
}

func (c *Context) UnsetConnectedPool() {
	c.pool = nil
	c.UnsetSubPrompt(PoolPromptDepth)
}

// DID

func (c *Context) GetActiveDid() (string, bool) {
	return c.activeDid, c.activeDid != ""
}

func (c *Context) EnsureActiveDid() (string, error) {
	did, ok := c.GetActiveDid()
	if !ok {
		return "", PreconditionViolated("There is no active did")
	}
	return did, nil
}

func (c *Context) SetActiveDid(did string) {
	c.activeDid = did
	c.SetSubPrompt(DidPromptDepth, fmt.Sprintf("did(%s)", abbreviateDid(did)))
}

func (c *Context) UnsetActiveDid() {
	c.activeDid = ""
	c.UnsetSubPrompt(DidPromptDepth)
}

func abbreviateDid(did string) string {
	if len(did) <= 8 {
		return did
	}
	return did[:3] + "..." + did[len(did)-3:]
}

// Prompt

func (c *Context) SetSubPrompt(depth int, segment string) {
	c.subPrompts[depth] = segment
}

func (c *Context) UnsetSubPrompt(depth int) {
	delete(c.subPrompts, depth)
}

// PromptDepth is the number of active nested scopes.
func (c *Context) PromptDepth() int {
	return len(c.subPrompts)
}

func (c *Context) SetBasePrompt(prompt string) {
	c.basePrompt = prompt
}

// Prompt renders the sub-prompts in depth order followed by the base prompt,
// e.g. "pool(sandbox):wallet(w1):indy> ".
func (c *Context) Prompt() string {
	depths := make([]int, 0, len(c.subPrompts))
	for d := range c.subPrompts {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	segments := make([]string, 0, len(depths)+1)
	for _, d := range depths {
		segments = append(segments, c.subPrompts[d])
	}
	segments = append(segments, c.basePrompt)
	return strings.Join(segments, ":") + "> "
}

// Preconditions

// Check verifies a declared command requirement against the current state.
func (c *Context) Check(req Requirement) error {
	switch req {
	case RequireOpenedWallet:
		_, err := c.EnsureOpenedWallet()
		return err
	case RequireConnectedPool:
		_, err := c.EnsureConnectedPool()
		return err
	case RequireActiveDid:
		_, err := c.EnsureActiveDid()
		return err
	}
	return fmt.Errorf("unknown requirement %d", req)
}

// Enumeration hooks for completion. They never fail: an unavailable
// resource yields an empty list.

func (c *Context) PoolNames() []string {
	if c.services == nil {
		return nil
	}
	names, err := c.services.PoolNames()
	if err != nil {
		util.Debug("pool enumeration failed", "error", err)
		return nil
	}
	return names
}

func (c *Context) WalletNames() []string {
	if c.services == nil {
		return nil
	}
	names, err := c.services.WalletNames()
	if err != nil {
		util.Debug("wallet enumeration failed", "error", err)
		return nil
	}
	return names
}

// Dids lists DIDs in the opened wallet, or nothing when no wallet is open.
func (c *Context) Dids() []string {
	if c.services == nil || c.wallet == nil {
		return nil
	}
	dids, err := c.services.Dids(c.wallet.Handle)
	if err != nil {
		util.Debug("did enumeration failed", "error", err)
		return nil
	}
	return dids
}

// Lifecycle

func (c *Context) RequestExit() {
	c.exitRequested = true
}

func (c *Context) ExitRequested() bool {
	return c.exitRequested
}

// Close releases any wallet or pool still open. Both are attempted even if
// one fails; the state is cleared regardless.
func (c *Context) Close() error {
	var errs []error
	if c.wallet != nil && c.services != nil {
		if err := c.services.CloseWallet(c.wallet.Handle); err != nil {
			errs = append(errs, fmt.Errorf("close wallet %q: %w", c.wallet.Name, err))
		}
	}
	if c.pool != nil && c.services != nil {
		if err := c.services.ClosePool(c.pool.Handle); err != nil {
			errs = append(errs, fmt.Errorf("close pool %q: %w", c.pool.Name, err))
		}
	}
	c.UnsetOpenedWallet()
	c.UnsetConnectedPool()
	return errors.Join(errs...)
}
