// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package repl provides tab completion for the interactive shell.
package repl

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/aplane-algo/indyshell/internal/cmdspec"
	"github.com/aplane-algo/indyshell/internal/command"
)

// Source enumerates live session values. *command.Context implements it.
// Every call must be cheap and must not fail; unavailable data is empty.
type Source interface {
	PoolNames() []string
	WalletNames() []string
	Dids() []string
}

// Completer completes command paths, parameter names and parameter values.
// Nothing is cached: every call reads the registry and the source afresh.
type Completer struct {
	registry *command.Registry
	source   Source
}

var _ readline.AutoCompleter = (*Completer)(nil)

func NewCompleter(registry *command.Registry, source Source) *Completer {
	return &Completer{registry: registry, source: source}
}

// Complete returns the full candidates for the word under the cursor at the
// end of line, in registration (or source) order.
func (c *Completer) Complete(line string) []string {
	words, trailingSpace := command.TokenizePartial(line)

	var current command.Word
	if !trailingSpace && len(words) > 0 {
		current = words[len(words)-1]
		words = words[:len(words)-1]
	}

	node := c.registry.Root()
	i := 0
	for i < len(words) && node.IsGroup() {
		child, ok := node.Child(words[i].Text)
		if !ok {
			return nil
		}
		node = child
		i++
	}

	if node.IsGroup() {
		if i < len(words) {
			return nil
		}
		var names []string
		for _, child := range node.Children() {
			names = append(names, child.Name)
		}
		if !node.IsRoot() {
			names = append(names, "help")
		}
		return filterByPrefix(names, current.Text)
	}

	return c.completeArgs(node.Command.Metadata, words[i:], current)
}

func (c *Completer) completeArgs(meta *command.Metadata, args []command.Word, current command.Word) []string {
	if current.Named {
		spec, ok := meta.Param(current.Key)
		if !ok {
			return nil
		}
		prefix := current.Key + "="
		var result []string
		for _, v := range filterByPrefix(c.valuesFor(spec, current.Value()), current.Value()) {
			result = append(result, prefix+v)
		}
		return result
	}

	used := make(map[string]bool, len(args))
	positional := false
	for _, w := range args {
		if w.Named {
			used[w.Key] = true
		} else {
			positional = true
		}
	}

	var candidates []string
	main, hasMain := meta.MainParam()
	if hasMain {
		if positional {
			used[main.Name] = true
		}
		// Positional values only fit before the first name=value word.
		if !used[main.Name] && len(used) == 0 {
			candidates = append(candidates, c.valuesFor(main, current.Text)...)
		}
	}
	for _, p := range meta.Params {
		if !used[p.Name] {
			candidates = append(candidates, p.Name+"=")
		}
	}
	return filterByPrefix(candidates, current.Text)
}

// valuesFor returns value candidates for a parameter. typed is only needed
// for file completion, which lists the directory being typed.
func (c *Completer) valuesFor(spec cmdspec.ParamSpec, typed string) []string {
	if spec.Completion.IsDynamic() {
		return c.sessionValues(spec.Completion)
	}
	switch spec.Completion {
	case cmdspec.CompletionKeyword:
		return spec.Values
	case cmdspec.CompletionFile:
		return completePath(typed)
	}
	return nil
}

// sessionValues reads pools, wallets or DIDs from the source. Nothing is
// cached; the source reflects the current session on every call.
func (c *Completer) sessionValues(kind cmdspec.CompletionKind) []string {
	switch kind {
	case cmdspec.CompletionDid:
		return c.source.Dids()
	case cmdspec.CompletionWallet:
		return c.source.WalletNames()
	case cmdspec.CompletionPool:
		return c.source.PoolNames()
	}
	return nil
}

// completePath lists entries of the directory part of typed. Directories
// end in a separator so completion can continue into them.
func completePath(typed string) []string {
	dir, _ := filepath.Split(typed)
	readDir := dir
	if readDir == "" {
		readDir = "."
	}
	entries, err := os.ReadDir(readDir)
	if err != nil {
		return nil
	}
	var result []string
	for _, e := range entries {
		name := dir + e.Name()
		if e.IsDir() {
			name += string(filepath.Separator)
		}
		result = append(result, name)
	}
	return result
}

// Do implements readline.AutoCompleter. readline appends without deleting,
// so only the remaining part of each candidate is returned.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	lineStr := string(line[:pos])
	words, trailingSpace := command.TokenizePartial(lineStr)
	partial := ""
	if !trailingSpace && len(words) > 0 {
		partial = words[len(words)-1].Text
	}

	candidates := c.Complete(lineStr)
	return stringsToRuneSuggestionsPartial(candidates, len(partial)), len([]rune(partial))
}

// stringsToRuneSuggestionsPartial converts strings to suggestions showing only the remaining part.
// Candidates that continue (name= or a directory) get no trailing space.
func stringsToRuneSuggestionsPartial(strs []string, partialLen int) [][]rune {
	suggestions := make([][]rune, 0, len(strs))
	for _, s := range strs {
		if partialLen > len(s) {
			continue
		}
		rest := s[partialLen:]
		if !strings.HasSuffix(s, "=") && !strings.HasSuffix(s, string(filepath.Separator)) {
			rest += " "
		}
		suggestions = append(suggestions, []rune(rest))
	}
	return suggestions
}

// filterByPrefix returns strings that start with prefix, dropping duplicates.
func filterByPrefix(strs []string, prefix string) []string {
	seen := make(map[string]bool, len(strs))
	var result []string
	for _, s := range strs {
		if strings.HasPrefix(s, prefix) && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
