// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"fmt"
	"strings"

	"github.com/aplane-algo/indyshell/internal/cmdspec"
)

// Command is a registered leaf of the command tree
type Command struct {
	Metadata *Metadata
	Requires []Requirement // Context state checked before the handler runs
	Handler  Handler
}

// Handler is the interface all command handlers must implement.
// A returned error is reported once by the executor.
type Handler interface {
	Execute(ctx *Context, params Params) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx *Context, params Params) error

func (f HandlerFunc) Execute(ctx *Context, params Params) error {
	return f(ctx, params)
}

// Requirement is a context precondition a command declares.
type Requirement int

const (
	RequireOpenedWallet Requirement = iota + 1
	RequireConnectedPool
	RequireActiveDid
)

// GroupMetadata describes a command group such as "pool" or "wallet".
type GroupMetadata struct {
	Name        string
	Description string
}

// Metadata describes a command: name, help, parameters and examples.
// It is immutable once returned by MetadataBuilder.Finalize.
type Metadata struct {
	Name     string
	Help     string
	Params   []cmdspec.ParamSpec
	Examples []string
}

// MainParam returns the positional parameter, if the command has one.
func (m *Metadata) MainParam() (cmdspec.ParamSpec, bool) {
	for _, p := range m.Params {
		if p.Main {
			return p, true
		}
	}
	return cmdspec.ParamSpec{}, false
}

func (m *Metadata) Param(name string) (cmdspec.ParamSpec, bool) {
	for _, p := range m.Params {
		if p.Name == name {
			return p, true
		}
	}
	return cmdspec.ParamSpec{}, false
}

// Usage renders a one-line synopsis, e.g. "create <name> [gen_txn_file=<value>]".
func (m *Metadata) Usage() string {
	parts := []string{m.Name}
	for _, p := range m.Params {
		var s string
		if p.Main {
			s = "<" + p.Name + ">"
		} else {
			s = p.Name + "=<value>"
		}
		if !p.Required {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// MetadataBuilder accumulates parameters and examples for a command.
type MetadataBuilder struct {
	meta Metadata
}

func Build(name, help string) *MetadataBuilder {
	return &MetadataBuilder{meta: Metadata{Name: name, Help: help}}
}

func (b *MetadataBuilder) add(p cmdspec.ParamSpec) *MetadataBuilder {
	b.meta.Params = append(b.meta.Params, p)
	return b
}

// AddMainParam adds the required positional parameter.
func (b *MetadataBuilder) AddMainParam(name, help string) *MetadataBuilder {
	return b.add(cmdspec.ParamSpec{Name: name, Help: help, Main: true, Required: true})
}

func (b *MetadataBuilder) AddOptionalMainParam(name, help string) *MetadataBuilder {
	return b.add(cmdspec.ParamSpec{Name: name, Help: help, Main: true})
}

func (b *MetadataBuilder) AddMainParamWithCompletion(name, help string, kind cmdspec.CompletionKind) *MetadataBuilder {
	return b.add(cmdspec.ParamSpec{Name: name, Help: help, Main: true, Required: true, Completion: kind})
}

func (b *MetadataBuilder) AddRequiredParam(name, help string) *MetadataBuilder {
	return b.add(cmdspec.ParamSpec{Name: name, Help: help, Required: true})
}

func (b *MetadataBuilder) AddOptionalParam(name, help string) *MetadataBuilder {
	return b.add(cmdspec.ParamSpec{Name: name, Help: help})
}

func (b *MetadataBuilder) AddParamWithCompletion(name string, required bool, help string, kind cmdspec.CompletionKind) *MetadataBuilder {
	return b.add(cmdspec.ParamSpec{Name: name, Help: help, Required: required, Completion: kind})
}

// AddKeywordParam adds a named parameter whose value is one of a fixed set.
func (b *MetadataBuilder) AddKeywordParam(name string, required bool, help string, values ...string) *MetadataBuilder {
	return b.add(cmdspec.ParamSpec{Name: name, Help: help, Required: required, Completion: cmdspec.CompletionKeyword, Values: values})
}

func (b *MetadataBuilder) AddExample(example string) *MetadataBuilder {
	b.meta.Examples = append(b.meta.Examples, example)
	return b
}

// Finalize validates the accumulated description and returns it.
// Panics on an empty name, a second main parameter or a duplicate
// parameter name; these are programming bugs caught at startup.
func (b *MetadataBuilder) Finalize() *Metadata {
	if b.meta.Name == "" {
		panic("command with empty name")
	}
	seen := make(map[string]bool, len(b.meta.Params))
	mains := 0
	for _, p := range b.meta.Params {
		if p.Name == "" {
			panic(fmt.Sprintf("command %q: parameter with empty name", b.meta.Name))
		}
		if seen[p.Name] {
			panic(fmt.Sprintf("command %q: duplicate parameter %q", b.meta.Name, p.Name))
		}
		seen[p.Name] = true
		if p.Main {
			mains++
		}
	}
	if mains > 1 {
		panic(fmt.Sprintf("command %q: more than one main parameter", b.meta.Name))
	}

	meta := b.meta
	meta.Params = append([]cmdspec.ParamSpec(nil), b.meta.Params...)
	meta.Examples = append([]string(nil), b.meta.Examples...)
	return &meta
}
