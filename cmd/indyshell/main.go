// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aplane-algo/indyshell/internal/command"
	"github.com/aplane-algo/indyshell/internal/fsutil"
	"github.com/aplane-algo/indyshell/internal/util"
	"github.com/aplane-algo/indyshell/internal/version"
)

type options struct {
	dataDir    string
	configPath string
	noColor    bool
}

func main() {
	exitCode := 0
	if err := newRootCommand(&exitCode).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newRootCommand(exitCode *int) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:   "indyshell [script-file]",
		Short: "Interactive shell for Indy pools, wallets and DIDs",
		Long: `indyshell manages pool configurations, wallets and DIDs.

Without arguments it starts an interactive shell with history and tab
completion. With a script file (or "-" for standard input) it runs the
commands in batch mode and stops at the first failure; prefix a line with
'-' to ignore its failure.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := run(opts, args)
			*exitCode = code
			return err
		},
	}
	root.SetVersionTemplate("indyshell {{.Version}}\n")

	root.Flags().StringVarP(&opts.dataDir, "data-dir", "d", "", "Data directory (default: ~/.indy_client or INDYSHELL_DATA)")
	root.Flags().StringVar(&opts.configPath, "config", "", "Config file (default: <data-dir>/config.yaml)")
	root.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return root
}

func run(opts options, args []string) (int, error) {
	// Initialize logger (supports INDYSHELL_DEBUG environment variable)
	util.InitLogger()

	dataDir := util.GetDataDir(opts.dataDir)
	if dataDir == "" {
		return 1, fmt.Errorf("cannot determine data directory; use -d <path> or set INDYSHELL_DATA")
	}
	if err := fsutil.MkdirAll(dataDir); err != nil {
		return 1, fmt.Errorf("failed to create data directory: %w", err)
	}

	config, err := loadConfig(opts, dataDir)
	if err != nil {
		return 1, fmt.Errorf("invalid configuration: %w", err)
	}
	util.Debug("starting", "data_dir", dataDir, "version", version.Version)

	color := !opts.noColor && util.UseColor(config.Color, os.Stdout)
	shell := newLocalShell(dataDir, config, command.NewReporter(os.Stdout, color))
	defer func() {
		if err := shell.Close(); err != nil {
			util.Warn("failed to release session resources", "error", err)
		}
	}()

	switch {
	case len(args) == 1:
		shell.interactive = args[0] != "-" && util.IsInteractive()
		return shell.runScriptFile(args[0]), nil
	case util.IsInteractive():
		shell.interactive = true
		return shell.startREPL(color), nil
	default:
		// Piped input runs like a script.
		return shell.runScript(os.Stdin), nil
	}
}

func loadConfig(opts options, dataDir string) (util.Config, error) {
	if opts.configPath == "" {
		return util.LoadConfig(dataDir)
	}
	config, err := util.LoadConfigFromPath(opts.configPath)
	if err != nil {
		return config, err
	}
	config.HistoryFile = util.ResolvePath(config.HistoryFile, dataDir)
	return config, nil
}
