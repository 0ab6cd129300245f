// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"errors"

	"github.com/aplane-algo/indyshell/internal/cmdspec"
	"github.com/aplane-algo/indyshell/internal/command"
	"github.com/aplane-algo/indyshell/internal/indy"
)

func (s *Shell) didNewCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("new", "Create new DID").
			AddOptionalParam("did", "Known DID for new wallet instance").
			AddOptionalParam("seed", "Seed for creating DID key-pair (32 characters or 64 hex)").
			AddOptionalParam("method", "Method name to create fully qualified DID").
			AddOptionalParam("metadata", "DID metadata").
			AddExample("did new").
			AddExample("did new seed=000000000000000000000000Trustee1").
			AddExample("did new method=peer metadata=\"my first did\"").
			Finalize(),
		Requires: []command.Requirement{command.RequireOpenedWallet},
		Handler:  command.HandlerFunc(s.didNew),
	}
}

func (s *Shell) didNew(ctx *command.Context, params command.Params) error {
	wallet, err := ctx.EnsureOpenedWallet()
	if err != nil {
		return err
	}
	did, _, err := command.GetOptDidParam("did", params)
	if err != nil {
		return err
	}
	seed, _ := command.GetOptStrParam("seed", params)
	method, hasMethod := command.GetOptStrParam("method", params)
	if hasMethod {
		if method, err = didMethod(method); err != nil {
			return err
		}
	}
	metadata, _ := command.GetOptStrParam("metadata", params)
	if seed != "" {
		if _, err := indy.ParseSeed(seed); err != nil {
			return command.InvalidParameter("Invalid seed: must be 32 characters or 64 hex characters")
		}
	}

	handle := indy.WalletHandle(wallet.Handle)
	info, err := s.dids.CreateAndStore(handle, indy.DidOptions{
		Did:    did,
		Seed:   seed,
		Method: method,
	})
	if err != nil {
		if errors.Is(err, indy.ErrAlreadyExists) {
			return command.AlreadyExists("Did already exists")
		}
		return sdkError(err, "Indy SDK error occurred")
	}
	if metadata != "" {
		if err := s.dids.SetMetadata(handle, info.Did, metadata); err != nil {
			return sdkError(err, "Did %q was created but its metadata could not be saved", info.Did)
		}
		ctx.Out.Println("Metadata has been saved for DID %q", info.Did)
	}
	ctx.Out.Success("Did %q has been created with %q verkey", info.Did, info.Verkey)
	return nil
}

func (s *Shell) didUseCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("use", "Use DID").
			AddMainParamWithCompletion("did", "Did stored in wallet", cmdspec.CompletionDid).
			AddExample("did use VsKV7grR1BUE29mG2Fm2kX").
			Finalize(),
		Requires: []command.Requirement{command.RequireOpenedWallet},
		Handler:  command.HandlerFunc(s.didUse),
	}
}

func (s *Shell) didUse(ctx *command.Context, params command.Params) error {
	wallet, err := ctx.EnsureOpenedWallet()
	if err != nil {
		return err
	}
	did, err := command.GetDidParam("did", params)
	if err != nil {
		return err
	}
	if _, err := s.dids.Get(indy.WalletHandle(wallet.Handle), did); err != nil {
		if errors.Is(err, indy.ErrNotFound) {
			return command.NothingToOperateOn("Requested DID not found")
		}
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.SetActiveDid(did)
	ctx.Out.Success("Did %q has been set as active", did)
	return nil
}

func (s *Shell) didListCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("list", "List my DIDs stored in the opened wallet.").Finalize(),
		Requires: []command.Requirement{command.RequireOpenedWallet},
		Handler:  command.HandlerFunc(s.didList),
	}
}

func (s *Shell) didList(ctx *command.Context, params command.Params) error {
	wallet, err := ctx.EnsureOpenedWallet()
	if err != nil {
		return err
	}
	dids, err := s.dids.List(indy.WalletHandle(wallet.Handle))
	if err != nil {
		return sdkError(err, "Indy SDK error occurred")
	}
	if len(dids) == 0 {
		ctx.Out.Success("There are no dids")
		return nil
	}

	rows := make([][]string, 0, len(dids))
	for _, d := range dids {
		metadata := d.Metadata
		if metadata == "" {
			metadata = "-"
		}
		rows = append(rows, []string{d.Did, d.Verkey, metadata})
	}
	ctx.Out.Table([]string{"Did", "Verkey", "Metadata"}, rows)

	if active, ok := ctx.GetActiveDid(); ok {
		ctx.Out.Success("Current did %q", active)
	} else {
		ctx.Out.Success("There is no active did")
	}
	return nil
}

func (s *Shell) didQualifyCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("qualify", "Update DID stored in the wallet to make fully qualified, or to do other DID maintenance.").
			AddMainParamWithCompletion("did", "Did stored in wallet", cmdspec.CompletionDid).
			AddRequiredParam("method", "Method to apply to the DID").
			AddExample("did qualify VsKV7grR1BUE29mG2Fm2kX method=peer").
			Finalize(),
		Requires: []command.Requirement{command.RequireOpenedWallet},
		Handler:  command.HandlerFunc(s.didQualify),
	}
}

// didQualify rewrites a stored DID into its method-scoped form. The active
// DID follows the rewrite when it was the one qualified.
func (s *Shell) didQualify(ctx *command.Context, params command.Params) error {
	wallet, err := ctx.EnsureOpenedWallet()
	if err != nil {
		return err
	}
	did, err := command.GetDidParam("did", params)
	if err != nil {
		return err
	}
	method, err := command.GetStrParam("method", params)
	if err != nil {
		return err
	}
	if method, err = didMethod(method); err != nil {
		return err
	}

	qualified, err := s.dids.Qualify(indy.WalletHandle(wallet.Handle), did, method)
	if err != nil {
		if errors.Is(err, indy.ErrNotFound) {
			return command.NothingToOperateOn("Requested DID not found")
		}
		return sdkError(err, "Indy SDK error occurred")
	}

	if active, ok := ctx.GetActiveDid(); ok && active == did {
		ctx.SetActiveDid(qualified)
	}
	ctx.Out.Success("Fully qualified DID %q", qualified)
	return nil
}

// didMethod validates a method parameter and returns its bare name, so
// "did:peer" and "peer" are the same method.
func didMethod(raw string) (string, error) {
	method, err := indy.NormalizeMethod(raw)
	if err != nil {
		return "", command.InvalidParameter("Invalid DID method %q: use lowercase letters and digits only", raw)
	}
	return method, nil
}
