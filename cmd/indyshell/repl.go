// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"github.com/aplane-algo/indyshell/cmd/indyshell/internal/repl"
	"github.com/aplane-algo/indyshell/internal/util"
)

// prompt renders the session prompt, green when color is enabled.
func (s *Shell) prompt(color bool) string {
	p := s.ctx.Prompt()
	if !color {
		return p
	}
	return "\033[32m" + p[:len(p)-1] + "\033[0m "
}

func (s *Shell) startBasicREPL(color bool) {
	fmt.Println("Running in basic mode (no history/completion)")
	scanner := bufio.NewScanner(os.Stdin)
	for !s.ctx.ExitRequested() {
		fmt.Print(s.prompt(color))
		if !scanner.Scan() {
			break
		}
		_ = s.Execute(scanner.Text()) // Already reported
	}
}

// startREPL runs the interactive loop until exit or EOF and returns the
// process exit code.
func (s *Shell) startREPL(color bool) int {
	fmt.Println("indyshell - Indy identity shell")
	fmt.Println("Type 'help' for available commands or 'exit' to exit")
	fmt.Println("Features: Command history (↑/↓), Tab completion, Ctrl+C to interrupt")

	rlConfig := &readline.Config{
		Prompt:            s.prompt(color),
		HistoryFile:       s.config.HistoryFile,
		HistoryLimit:      s.config.HistoryLimit,
		AutoComplete:      repl.NewCompleter(s.registry, s.ctx),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		fmt.Printf("Failed to create readline instance, falling back to basic input: %v\n", err)
		s.startBasicREPL(color)
		return s.executor.ExitCode()
	}
	defer func() {
		_ = rl.Close() // Best-effort close, errors during shutdown not critical
	}()

	for !s.ctx.ExitRequested() {
		rl.SetPrompt(s.prompt(color))

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					fmt.Println("Use 'exit' to exit")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				break
			}
			util.Warn("error reading input", "error", err)
			continue
		}

		_ = s.Execute(line) // Already reported
	}
	return s.executor.ExitCode()
}
