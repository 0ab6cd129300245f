// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"errors"
	"reflect"
	"testing"
)

// MockHandler implements Handler interface for testing
type MockHandler struct {
	calls       int
	lastParams  Params
	executeFunc func(ctx *Context, params Params) error
}

func (h *MockHandler) Execute(ctx *Context, params Params) error {
	h.calls++
	h.lastParams = params
	if h.executeFunc != nil {
		return h.executeFunc(ctx, params)
	}
	return nil
}

func newTestCommand(name string, h Handler) *Command {
	return &Command{
		Metadata: Build(name, name+" command").Finalize(),
		Handler:  h,
	}
}

// newTestRegistry builds:
//
//	about
//	pool: create, list
//	wallet: open
func newTestRegistry() *Registry {
	r := NewRegistry()
	r.MustRegisterCommand(newTestCommand("about", &MockHandler{}))
	r.MustRegisterGroup(GroupMetadata{Name: "pool", Description: "Pool management commands"})
	r.MustRegisterCommand(&Command{
		Metadata: Build("create", "Create pool config").
			AddMainParam("name", "Pool name").
			AddOptionalParam("gen_txn_file", "Genesis file").
			Finalize(),
		Handler: &MockHandler{},
	}, "pool")
	r.MustRegisterCommand(newTestCommand("list", &MockHandler{}), "pool")
	r.MustRegisterGroup(GroupMetadata{Name: "wallet", Description: "Wallet management commands"})
	r.MustRegisterCommand(newTestCommand("open", &MockHandler{}), "wallet")
	return r
}

func TestRegistry_LookupRoundTrip(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		path    []string
		isGroup bool
	}{
		{[]string{"about"}, false},
		{[]string{"pool"}, true},
		{[]string{"pool", "create"}, false},
		{[]string{"pool", "list"}, false},
		{[]string{"wallet", "open"}, false},
	}
	for _, tt := range tests {
		node, err := r.Lookup(tt.path...)
		if err != nil {
			t.Errorf("Lookup(%v) error = %v", tt.path, err)
			continue
		}
		if node.IsGroup() != tt.isGroup {
			t.Errorf("Lookup(%v).IsGroup() = %v, want %v", tt.path, node.IsGroup(), tt.isGroup)
		}
		if !reflect.DeepEqual(node.Path(), tt.path) {
			t.Errorf("Lookup(%v).Path() = %v", tt.path, node.Path())
		}
	}

	node, err := r.LookupPath("pool.create")
	if err != nil || node.FullName() != "pool create" {
		t.Errorf("LookupPath(pool.create) = %v, %v", node, err)
	}
	if root, _ := r.LookupPath(""); !root.IsRoot() {
		t.Error("LookupPath(\"\") should return the root")
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := newTestRegistry()

	for _, path := range [][]string{
		{"nope"},
		{"pool", "nope"},
		{"about", "extra"},
	} {
		_, err := r.Lookup(path...)
		if !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("Lookup(%v) error = %v, want UnknownCommand", path, err)
		}
	}
}

func TestRegistry_RegistrationOrder(t *testing.T) {
	r := newTestRegistry()

	var names []string
	for _, child := range r.Root().Children() {
		names = append(names, child.Name)
	}
	if want := []string{"about", "pool", "wallet"}; !reflect.DeepEqual(names, want) {
		t.Errorf("root children = %v, want %v", names, want)
	}

	var all []string
	for _, n := range r.Commands() {
		all = append(all, n.FullName())
	}
	if want := []string{"about", "pool create", "pool list", "wallet open"}; !reflect.DeepEqual(all, want) {
		t.Errorf("Commands() = %v, want %v", all, want)
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"duplicate group", func() error {
			return r.RegisterGroup(GroupMetadata{Name: "pool"})
		}},
		{"command colliding with group", func() error {
			return r.RegisterCommand(newTestCommand("wallet", &MockHandler{}))
		}},
		{"duplicate command in group", func() error {
			return r.RegisterCommand(newTestCommand("list", &MockHandler{}), "pool")
		}},
		{"unknown group", func() error {
			return r.RegisterCommand(newTestCommand("x", &MockHandler{}), "ledger")
		}},
		{"group under command", func() error {
			return r.RegisterGroup(GroupMetadata{Name: "x"}, "about")
		}},
		{"invalid name", func() error {
			return r.RegisterGroup(GroupMetadata{Name: "a.b"})
		}},
		{"nil handler", func() error {
			return r.RegisterCommand(&Command{Metadata: Build("y", "").Finalize()})
		}},
		{"nil metadata", func() error {
			return r.RegisterCommand(&Command{Handler: &MockHandler{}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); err == nil {
				t.Error("expected registration error")
			}
		})
	}

	// The same name is fine under different groups.
	if err := r.RegisterCommand(newTestCommand("list", &MockHandler{}), "wallet"); err != nil {
		t.Errorf("same name in another group error = %v", err)
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	r := newTestRegistry()
	defer func() {
		if recover() == nil {
			t.Error("MustRegisterCommand() should panic on a name collision")
		}
	}()
	r.MustRegisterCommand(newTestCommand("about", &MockHandler{}))
}

func TestRegistry_Resolve(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		name     string
		tokens   []string
		wantNode string
		wantRest []string
		wantHelp bool
		wantErr  bool
	}{
		{"leaf with args", []string{"pool", "create", "sandbox", "gen_txn_file=x"}, "pool create", []string{"sandbox", "gen_txn_file=x"}, false, false},
		{"bare group", []string{"pool"}, "pool", []string{}, false, false},
		{"group help", []string{"pool", "help"}, "pool", []string{"help"}, true, false},
		{"command help", []string{"pool", "list", "help"}, "pool list", []string{"help"}, true, false},
		{"top level", []string{"about"}, "about", []string{}, false, false},
		{"unknown in group", []string{"pool", "frobnicate"}, "", nil, false, true},
		{"unknown top level", []string{"ledger"}, "", nil, false, true},
		{"help after unknown", []string{"pool", "help", "x"}, "", nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(tt.tokens)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCommand) {
					t.Errorf("Resolve() error = %v, want UnknownCommand", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if res.Node.FullName() != tt.wantNode {
				t.Errorf("node = %q, want %q", res.Node.FullName(), tt.wantNode)
			}
			if len(res.Rest) != len(tt.wantRest) {
				t.Errorf("rest = %v, want %v", res.Rest, tt.wantRest)
			}
			if res.HelpRequested() != tt.wantHelp {
				t.Errorf("HelpRequested() = %v, want %v", res.HelpRequested(), tt.wantHelp)
			}
		})
	}
}
