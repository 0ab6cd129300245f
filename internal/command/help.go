// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"strings"
)

// ShowHelp lists top-level commands and groups in registration order.
func ShowHelp(out *Reporter, registry *Registry) {
	out.Println("")
	out.Println("Available commands and groups:")
	for _, child := range registry.Root().Children() {
		name := child.Name
		if child.IsGroup() {
			name += " ..."
		}
		out.Println("  %-20s - %s", name, child.Description)
	}
	out.Println("")
	out.Success("Type \"<group> help\" or \"<group> <command> help\" for details")
}

// ShowGroupHelp lists the commands of a group.
func ShowGroupHelp(out *Reporter, group *Node) {
	out.Println("")
	if group.Description != "" {
		out.Println("%s", group.Description)
		out.Println("")
	}
	out.Println("Commands of %q group:", group.FullName())
	for _, child := range group.Children() {
		out.Println("  %-20s - %s", child.Name, child.Description)
	}
	out.Println("")
	out.Success("Type \"%s <command> help\" for details", group.FullName())
}

func ShowCommandHelp(out *Reporter, node *Node) {
	meta := node.Command.Metadata
	out.Println("")
	out.Println("%s", meta.Help)
	out.Println("")

	usage := meta.Usage()
	if prefix := strings.Join(node.Path()[:len(node.Path())-1], " "); prefix != "" {
		usage = prefix + " " + usage
	}
	out.Println("Usage:")
	out.Println("  %s", usage)

	if len(meta.Params) > 0 {
		out.Println("")
		out.Println("Parameters:")
		for _, p := range meta.Params {
			flags := "optional"
			if p.Required {
				flags = "required"
			}
			if p.Main {
				flags += ", positional"
			}
			help := p.Help
			if len(p.Values) > 0 {
				help += " (" + strings.Join(p.Values, "|") + ")"
			}
			out.Println("  %-22s %s [%s]", p.Name, help, flags)
		}
	}

	if len(meta.Examples) > 0 {
		out.Println("")
		out.Println("Examples:")
		for _, ex := range meta.Examples {
			out.Println("  %s", ex)
		}
	}
	out.Println("")
	out.Success("Help for %q shown", node.FullName())
}
