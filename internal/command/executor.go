// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"strings"

	"github.com/aplane-algo/indyshell/internal/util"
)

// Executor runs command lines against a registry and a session context:
// tokenize, resolve, bind, check preconditions, invoke, report.
type Executor struct {
	registry *Registry
	ctx      *Context
	failures int
}

func NewExecutor(registry *Registry, ctx *Context) *Executor {
	return &Executor{registry: registry, ctx: ctx}
}

func (e *Executor) Registry() *Registry {
	return e.registry
}

func (e *Executor) Context() *Context {
	return e.ctx
}

// Failures is the number of lines that failed so far in this session.
func (e *Executor) Failures() int {
	return e.failures
}

// ExitCode is 1 if any command in the session failed, 0 otherwise.
func (e *Executor) ExitCode() int {
	if e.failures > 0 {
		return 1
	}
	return 0
}

// Execute runs one input line. A returned error has already been reported;
// callers only use it to decide whether to continue (e.g. batch mode).
func (e *Executor) Execute(line string) error {
	err := e.execute(line)
	if err != nil {
		e.failures++
		e.ctx.Out.Error(err)
		util.Debug("command failed", "line", line, "kind", KindOf(err).String())
	}
	return err
}

func (e *Executor) execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	words, err := Tokenize(line)
	if err != nil {
		return err
	}
	util.Debug("tokenized", "words", len(words))

	names := make([]string, len(words))
	for i, w := range words {
		names[i] = w.Text
	}
	res, err := e.registry.Resolve(names)
	if err != nil {
		return err
	}

	node := res.Node
	if node.IsGroup() {
		// Bare group (or "group help"): list its commands instead of failing.
		ShowGroupHelp(e.ctx.Out, node)
		return nil
	}
	if res.HelpRequested() {
		ShowCommandHelp(e.ctx.Out, node)
		return nil
	}

	cmd := node.Command
	params, err := Bind(cmd.Metadata, words[len(words)-len(res.Rest):])
	if err != nil {
		return err
	}
	util.Debug("bound parameters", "command", node.FullName(), "count", len(params))

	for _, req := range cmd.Requires {
		if err := e.ctx.Check(req); err != nil {
			return err
		}
	}

	util.Debug("invoking", "command", node.FullName())
	return cmd.Handler.Execute(e.ctx, params)
}

// Bind maps argument words to parameters. Leading bare words fill the main
// parameter; name=value words fill named parameters. Unknown names,
// duplicates and surplus positional words are rejected, and required
// parameters must be present.
func Bind(meta *Metadata, args []Word) (Params, error) {
	params := make(Params, len(args))

	var positional []Word
	sawNamed := false
	for _, w := range args {
		if w.Named {
			sawNamed = true
			spec, ok := meta.Param(w.Key)
			if !ok {
				return nil, InvalidParameter("Unknown parameter %q for command %q", w.Key, meta.Name)
			}
			if _, dup := params[w.Key]; dup {
				return nil, InvalidParameter("Parameter %q is specified more than once", w.Key)
			}
			params[spec.Name] = w.Value()
			continue
		}
		if sawNamed {
			return nil, InvalidParameter("Unexpected positional value %q after named parameters", w.Text)
		}
		positional = append(positional, w)
	}

	if len(positional) > 0 {
		main, ok := meta.MainParam()
		if !ok || len(positional) > 1 {
			return nil, InvalidParameter("Unexpected positional value %q for command %q", positional[len(positional)-1].Text, meta.Name)
		}
		if _, dup := params[main.Name]; dup {
			return nil, InvalidParameter("Parameter %q is specified more than once", main.Name)
		}
		params[main.Name] = positional[0].Text
	}

	for _, spec := range meta.Params {
		if _, ok := params[spec.Name]; spec.Required && !ok {
			return nil, MissingParameter(spec.Name)
		}
	}
	return params, nil
}
