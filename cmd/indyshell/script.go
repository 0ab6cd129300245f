// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aplane-algo/indyshell/internal/util"
)

// runScript executes commands line by line. Blank lines and '#' comments
// are skipped. A failing line stops the script unless it starts with '-'.
// Returns the process exit code: 1 if a non-ignored command failed.
func (s *Shell) runScript(r io.Reader) int {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ignoreFailure := strings.HasPrefix(line, "-")
		if ignoreFailure {
			line = strings.TrimSpace(line[1:])
		}

		s.ctx.Out.Println("%s%s", s.ctx.Prompt(), line)
		if err := s.Execute(line); err != nil {
			if ignoreFailure {
				util.Debug("ignoring failed script line", "line", lineNum)
				continue
			}
			util.Debug("script stopped", "line", lineNum)
			return 1
		}
		if s.ctx.ExitRequested() {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		s.ctx.Out.Error(fmt.Errorf("failed to read script: %w", err))
		return 1
	}
	return 0
}

// runScriptFile runs a script file, or standard input for "-".
func (s *Shell) runScriptFile(path string) int {
	if path == "-" {
		return s.runScript(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		s.ctx.Out.Error(fmt.Errorf("can't open script file: %w", err))
		return 1
	}
	defer func() {
		_ = f.Close()
	}()
	return s.runScript(f)
}
