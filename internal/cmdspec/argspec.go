// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package cmdspec provides parameter specification types shared across packages.
// These types describe how command parameters are bound and how the REPL
// completes their values.
package cmdspec

// CompletionKind identifies the live data source used to complete a parameter value.
type CompletionKind string

const (
	CompletionNone    CompletionKind = ""        // No value completion
	CompletionDid     CompletionKind = "did"     // DIDs stored in the opened wallet
	CompletionWallet  CompletionKind = "wallet"  // Wallets attached to the shell
	CompletionPool    CompletionKind = "pool"    // Pool configs known to the shell
	CompletionKeyword CompletionKind = "keyword" // Fixed keyword values
	CompletionFile    CompletionKind = "file"    // File path (left to the terminal)
)

// IsDynamic reports whether values of this kind come from live session state.
func (k CompletionKind) IsDynamic() bool {
	switch k {
	case CompletionDid, CompletionWallet, CompletionPool:
		return true
	}
	return false
}

// ParamSpec describes one command parameter.
//
// Main parameters are positional: the first bare token after the command path
// binds to the main parameter. All other parameters are named (name=value).
//
//	ParamSpec{Name: "name", Main: true, Required: true, Completion: CompletionPool}
//	ParamSpec{Name: "key_derivation_method", Completion: CompletionKeyword, Values: []string{"argon2m", "argon2i", "raw"}}
type ParamSpec struct {
	Name       string         `json:"name"`
	Help       string         `json:"help,omitempty"`
	Required   bool           `json:"required,omitempty"`
	Main       bool           `json:"main,omitempty"`
	Completion CompletionKind `json:"completion,omitempty"`
	Values     []string       `json:"values,omitempty"` // For CompletionKeyword: valid values
}
