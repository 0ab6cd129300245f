// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"github.com/aplane-algo/indyshell/internal/command"
	"github.com/aplane-algo/indyshell/internal/version"
)

func (s *Shell) helpCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("help", "Show available commands").Finalize(),
		Handler: command.HandlerFunc(func(ctx *command.Context, params command.Params) error {
			command.ShowHelp(ctx.Out, s.registry)
			return nil
		}),
	}
}

func (s *Shell) aboutCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("about", "Show information about indyshell").Finalize(),
		Handler: command.HandlerFunc(func(ctx *command.Context, params command.Params) error {
			lines := version.About()
			for _, line := range lines[:len(lines)-1] {
				ctx.Out.Println("%s", line)
			}
			ctx.Out.Success("%s", lines[len(lines)-1])
			return nil
		}),
	}
}

func (s *Shell) exitCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("exit", "Exit the shell").Finalize(),
		Handler: command.HandlerFunc(func(ctx *command.Context, params command.Params) error {
			ctx.RequestExit()
			ctx.Out.Success("Goodbye...")
			return nil
		}),
	}
}

func (s *Shell) promptCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("prompt", "Change the command prompt").
			AddMainParam("prompt", "New prompt string").
			AddExample("prompt my-prompt").
			Finalize(),
		Handler: command.HandlerFunc(func(ctx *command.Context, params command.Params) error {
			prompt, err := command.GetStrParam("prompt", params)
			if err != nil {
				return err
			}
			if prompt == "" {
				return command.InvalidParameter("Prompt must not be empty")
			}
			ctx.SetBasePrompt(prompt)
			ctx.Out.Success("Prompt has been set to %q", prompt)
			return nil
		}),
	}
}
