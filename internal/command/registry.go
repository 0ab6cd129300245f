// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"fmt"
	"strings"
)

// Node is an entry of the command tree: either a group with ordered children
// or a leaf command. Groups and commands share a namespace per level.
type Node struct {
	Name        string
	Description string
	Command     *Command // nil for groups

	parent   *Node
	children []*Node
	index    map[string]*Node
}

func newGroupNode(name, description string, parent *Node) *Node {
	return &Node{
		Name:        name,
		Description: description,
		parent:      parent,
		index:       make(map[string]*Node),
	}
}

func (n *Node) IsGroup() bool {
	return n.Command == nil
}

func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// Children returns the node's children in registration order.
func (n *Node) Children() []*Node {
	result := make([]*Node, len(n.children))
	copy(result, n.children)
	return result
}

func (n *Node) Child(name string) (*Node, bool) {
	child, ok := n.index[name]
	return child, ok
}

// Path returns the names from the root (exclusive) down to this node.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.parent {
		path = append([]string{cur.Name}, path...)
	}
	return path
}

// FullName is the space-separated path as typed in the shell, e.g. "pool create".
func (n *Node) FullName() string {
	return strings.Join(n.Path(), " ")
}

func (n *Node) add(child *Node) error {
	if child.Name == "" {
		return fmt.Errorf("empty name under %q", n.FullName())
	}
	if strings.ContainsAny(child.Name, " \t=.") {
		return fmt.Errorf("invalid name %q under %q", child.Name, n.FullName())
	}
	if existing, exists := n.index[child.Name]; exists {
		return fmt.Errorf("%q already registered under %q", existing.Name, n.FullName())
	}
	child.parent = n
	n.index[child.Name] = child
	n.children = append(n.children, child)
	return nil
}

// Registry is the command tree. It is built once at startup and read-only
// afterwards.
type Registry struct {
	root *Node
}

func NewRegistry() *Registry {
	return &Registry{root: newGroupNode("", "", nil)}
}

func (r *Registry) Root() *Node {
	return r.root
}

// RegisterGroup adds a group under the group at parentPath (root when empty).
func (r *Registry) RegisterGroup(meta GroupMetadata, parentPath ...string) error {
	parent, err := r.groupAt(parentPath)
	if err != nil {
		return err
	}
	return parent.add(newGroupNode(meta.Name, meta.Description, parent))
}

// RegisterCommand adds a command under the group at groupPath (root when empty).
func (r *Registry) RegisterCommand(cmd *Command, groupPath ...string) error {
	if cmd == nil || cmd.Metadata == nil {
		return fmt.Errorf("command without metadata")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %q has no handler", cmd.Metadata.Name)
	}
	parent, err := r.groupAt(groupPath)
	if err != nil {
		return err
	}
	return parent.add(&Node{
		Name:        cmd.Metadata.Name,
		Description: cmd.Metadata.Help,
		Command:     cmd,
	})
}

// MustRegisterGroup registers a group and panics if there's an error.
// Used during initialization where registration errors are programming bugs.
func (r *Registry) MustRegisterGroup(meta GroupMetadata, parentPath ...string) {
	if err := r.RegisterGroup(meta, parentPath...); err != nil {
		panic(fmt.Sprintf("failed to register group %q: %v", meta.Name, err))
	}
}

// MustRegisterCommand registers a command and panics if there's an error.
func (r *Registry) MustRegisterCommand(cmd *Command, groupPath ...string) {
	if err := r.RegisterCommand(cmd, groupPath...); err != nil {
		name := ""
		if cmd != nil && cmd.Metadata != nil {
			name = cmd.Metadata.Name
		}
		panic(fmt.Sprintf("failed to register command %q: %v", name, err))
	}
}

func (r *Registry) groupAt(path []string) (*Node, error) {
	node, err := r.Lookup(path...)
	if err != nil {
		return nil, err
	}
	if !node.IsGroup() {
		return nil, fmt.Errorf("%q is a command, not a group", node.FullName())
	}
	return node, nil
}

// Lookup walks the tree along path. An empty path returns the root.
func (r *Registry) Lookup(path ...string) (*Node, error) {
	node := r.root
	for i, name := range path {
		if !node.IsGroup() {
			return nil, UnknownCommand("Unknown command %q", strings.Join(path[:i+1], " "))
		}
		child, ok := node.Child(name)
		if !ok {
			return nil, UnknownCommand("Unknown command %q", strings.Join(path[:i+1], " "))
		}
		node = child
	}
	return node, nil
}

// LookupPath resolves a dotted path such as "pool.create".
func (r *Registry) LookupPath(dotted string) (*Node, error) {
	if dotted == "" {
		return r.root, nil
	}
	return r.Lookup(strings.Split(dotted, ".")...)
}

// Resolution is the outcome of resolving the leading tokens of a line.
type Resolution struct {
	Node *Node
	Rest []string // Tokens left after the command path
}

// HelpRequested reports whether the line ended in a bare "help" token.
func (res Resolution) HelpRequested() bool {
	return len(res.Rest) == 1 && res.Rest[0] == "help"
}

// Resolve walks groups while the leading tokens name children. A group
// followed by nothing (or by "help") resolves to the group itself so the
// caller can list its commands.
func (r *Registry) Resolve(tokens []string) (Resolution, error) {
	node := r.root
	i := 0
	for i < len(tokens) && node.IsGroup() {
		child, ok := node.Child(tokens[i])
		if !ok {
			if tokens[i] == "help" && !node.IsRoot() && i == len(tokens)-1 {
				break
			}
			return Resolution{}, UnknownCommand("Unknown command %q", strings.Join(tokens[:i+1], " "))
		}
		node = child
		i++
	}
	return Resolution{Node: node, Rest: tokens[i:]}, nil
}

// Commands returns every leaf command in registration order (depth first).
func (r *Registry) Commands() []*Node {
	var result []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, child := range n.children {
			if child.IsGroup() {
				walk(child)
			} else {
				result = append(result, child)
			}
		}
	}
	walk(r.root)
	return result
}
