// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color modes for the color setting
const (
	ColorAuto  = "auto"
	ColorNever = "never"
)

// Config holds indyshell configuration settings
type Config struct {
	Prompt               string `yaml:"prompt" description:"Base prompt shown after the active scopes" default:"indy"`
	HistoryFile          string `yaml:"history_file" description:"Command history file (relative to data dir)" default:".indyshell_history"`
	HistoryLimit         int    `yaml:"history_limit" description:"Maximum number of history entries" default:"1000"`
	DefaultGenesisFile   string `yaml:"default_genesis_file" description:"Genesis transactions file used by 'pool create' when gen_txn_file is omitted" default:"pool_transactions_genesis"`
	DefaultKeyDerivation string `yaml:"default_key_derivation" description:"Wallet key derivation method when key_derivation_method is omitted (argon2m, argon2i, raw)" default:"argon2m"`
	Color                string `yaml:"color" description:"Colored output (auto, never)" default:"auto"`
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	return Config{
		Prompt:               "indy",
		HistoryFile:          ".indyshell_history",
		HistoryLimit:         1000,
		DefaultGenesisFile:   "pool_transactions_genesis",
		DefaultKeyDerivation: "argon2m",
		Color:                ColorAuto,
	}
}

// DefaultDataDir is the default data directory for indyshell
const DefaultDataDir = "~/.indy_client"

// GetDataDir returns the data directory.
// Resolution order: -d flag > INDYSHELL_DATA env var > ~/.indy_client
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv("INDYSHELL_DATA"); envDir != "" {
		return envDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "" // Can't determine default
	}
	return filepath.Join(home, ".indy_client")
}

// GetConfigPath returns the path to the config file in the data directory.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// ResolvePath makes a relative path absolute against baseDir and expands a leading ~.
func ResolvePath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoadConfig loads config.yaml from the data directory.
// If the file doesn't exist, returns default config.
// The history file is resolved relative to the data directory.
func LoadConfig(dataDir string) (Config, error) {
	config, err := LoadConfigFromPath(GetConfigPath(dataDir))
	if err != nil {
		return config, err
	}
	config.HistoryFile = ResolvePath(config.HistoryFile, dataDir)
	return config, nil
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	// Fill in defaults for values explicitly emptied
	defaults := DefaultConfig()
	if config.Prompt == "" {
		config.Prompt = defaults.Prompt
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = defaults.HistoryLimit
	}
	if config.DefaultGenesisFile == "" {
		config.DefaultGenesisFile = defaults.DefaultGenesisFile
	}
	if config.DefaultKeyDerivation == "" {
		config.DefaultKeyDerivation = defaults.DefaultKeyDerivation
	}
	if config.Color == "" {
		config.Color = defaults.Color
	}

	return config, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.DefaultKeyDerivation {
	case "", "argon2m", "argon2i", "raw":
	default:
		return fmt.Errorf("invalid default_key_derivation '%s' (must be argon2m, argon2i or raw)", c.DefaultKeyDerivation)
	}
	switch c.Color {
	case "", ColorAuto, ColorNever:
	default:
		return fmt.Errorf("invalid color '%s' (must be auto or never)", c.Color)
	}
	if strings.ContainsAny(c.Prompt, "\n\r") {
		return fmt.Errorf("prompt must be a single line")
	}
	return nil
}
