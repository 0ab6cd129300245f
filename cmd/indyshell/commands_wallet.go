// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"errors"

	"github.com/aplane-algo/indyshell/internal/cmdspec"
	"github.com/aplane-algo/indyshell/internal/command"
	"github.com/aplane-algo/indyshell/internal/crypto"
	"github.com/aplane-algo/indyshell/internal/indy"
)

const walletKeyPrompt = "Enter wallet key: "

func addWalletKeyParams(b *command.MetadataBuilder) *command.MetadataBuilder {
	return b.
		AddOptionalParam("key", "Key or passphrase used for wallet key derivation (asked for when omitted)").
		AddKeywordParam("key_derivation_method", false, "Key derivation method", crypto.KeyDerivationMethods()...)
}

// walletCredentials collects key and derivation method. fallbackMethod is
// used when the method is omitted.
func (s *Shell) walletCredentials(params command.Params, fallbackMethod string) (indy.Credentials, error) {
	method, ok := command.GetOptStrParam("key_derivation_method", params)
	if !ok {
		method = fallbackMethod
	}
	if method != "" && !isKeyDerivationMethod(method) {
		return indy.Credentials{}, command.InvalidParameter("Unknown key derivation method %q", method)
	}
	key, err := s.secretParam("key", walletKeyPrompt, params)
	if err != nil {
		return indy.Credentials{}, err
	}
	return indy.Credentials{Key: key, KeyDerivationMethod: method}, nil
}

func isKeyDerivationMethod(method string) bool {
	for _, m := range crypto.KeyDerivationMethods() {
		if m == method {
			return true
		}
	}
	return false
}

func (s *Shell) walletCreateCommand() *command.Command {
	return &command.Command{
		Metadata: addWalletKeyParams(command.Build("create", "Create new wallet and attach to Indy CLI").
			AddMainParam("name", "Identifier of the wallet")).
			AddParamWithCompletion("storage_path", false, "Directory that holds the wallet storage", cmdspec.CompletionFile).
			AddExample("wallet create wallet1 key=secret").
			AddExample("wallet create wallet1 key=k key_derivation_method=argon2i").
			Finalize(),
		Handler: command.HandlerFunc(s.walletCreate),
	}
}

func (s *Shell) walletCreate(ctx *command.Context, params command.Params) error {
	name, err := command.GetStrParam("name", params)
	if err != nil {
		return err
	}
	storagePath, _ := command.GetOptStrParam("storage_path", params)
	creds, err := s.walletCredentials(params, s.config.DefaultKeyDerivation)
	if err != nil {
		return err
	}

	err = s.wallets.Create(indy.WalletConfig{ID: name, StoragePath: storagePath}, creds)
	if err != nil {
		if errors.Is(err, indy.ErrAlreadyExists) {
			return command.AlreadyExists("Wallet %q already exists", name)
		}
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.Out.Success("Wallet %q has been created", name)
	return nil
}

func (s *Shell) walletAttachCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("attach", "Attach existing wallet to Indy CLI").
			AddMainParam("name", "Identifier of the wallet").
			AddParamWithCompletion("storage_path", false, "Directory that holds the wallet storage", cmdspec.CompletionFile).
			AddExample("wallet attach wallet1").
			AddExample("wallet attach wallet1 storage_path=/mnt/wallets").
			Finalize(),
		Handler: command.HandlerFunc(s.walletAttach),
	}
}

func (s *Shell) walletAttach(ctx *command.Context, params command.Params) error {
	name, err := command.GetStrParam("name", params)
	if err != nil {
		return err
	}
	storagePath, _ := command.GetOptStrParam("storage_path", params)

	if err := s.wallets.Attach(indy.WalletConfig{ID: name, StoragePath: storagePath}); err != nil {
		switch {
		case errors.Is(err, indy.ErrAlreadyExists):
			return command.AlreadyExists("Wallet %q is already attached to CLI", name)
		case errors.Is(err, indy.ErrNotFound):
			return command.NothingToOperateOn("Wallet %q storage not found", name)
		}
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.Out.Success("Wallet %q has been attached", name)
	return nil
}

func (s *Shell) walletOpenCommand() *command.Command {
	return &command.Command{
		Metadata: addWalletKeyParams(command.Build("open", "Open wallet. Also close previously opened.").
			AddMainParamWithCompletion("name", "Identifier of the wallet", cmdspec.CompletionWallet)).
			AddExample("wallet open wallet1").
			Finalize(),
		Handler: command.HandlerFunc(s.walletOpen),
	}
}

// walletOpen follows the same switch rules as pool connect.
func (s *Shell) walletOpen(ctx *command.Context, params command.Params) error {
	name, err := command.GetStrParam("name", params)
	if err != nil {
		return err
	}
	creds, err := s.walletCredentials(params, "")
	if err != nil {
		return err
	}

	if current, ok := ctx.GetOpenedWallet(); ok {
		if err := s.wallets.Close(indy.WalletHandle(current.Handle)); err != nil {
			return sdkError(err, "Can't close wallet %q", current.Name)
		}
		ctx.UnsetOpenedWallet()
		ctx.Out.Println("Wallet %q has been closed", current.Name)
	}

	handle, err := s.wallets.Open(name, creds)
	if err != nil {
		switch {
		case errors.Is(err, indy.ErrNotFound):
			return command.NothingToOperateOn("Wallet %q isn't attached to CLI", name)
		case errors.Is(err, indy.ErrInvalidKey):
			return command.SdkError(err, "Can't open wallet %q", name)
		}
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.SetOpenedWallet(name, int32(handle))
	ctx.Out.Success("Wallet %q has been opened", name)
	return nil
}

func (s *Shell) walletCloseCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("close", "Close opened wallet").Finalize(),
		Handler:  command.HandlerFunc(s.walletClose),
	}
}

func (s *Shell) walletClose(ctx *command.Context, params command.Params) error {
	current, ok := ctx.GetOpenedWallet()
	if !ok {
		return command.NothingToOperateOn("There is no opened wallet now")
	}
	if err := s.wallets.Close(indy.WalletHandle(current.Handle)); err != nil {
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.UnsetOpenedWallet()
	ctx.Out.Success("Wallet %q has been closed", current.Name)
	return nil
}

func (s *Shell) walletListCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("list", "List attached wallets").Finalize(),
		Handler:  command.HandlerFunc(s.walletList),
	}
}

func (s *Shell) walletList(ctx *command.Context, params command.Params) error {
	wallets, err := s.wallets.List()
	if err != nil {
		return sdkError(err, "Indy SDK error occurred")
	}
	if len(wallets) == 0 {
		ctx.Out.Success("There are no wallets")
		return nil
	}

	rows := make([][]string, 0, len(wallets))
	for _, w := range wallets {
		rows = append(rows, []string{w.Name, w.StorageType})
	}
	ctx.Out.Table([]string{"Name", "Type"}, rows)

	if current, ok := ctx.GetOpenedWallet(); ok {
		ctx.Out.Success("Current wallet %q", current.Name)
	} else {
		ctx.Out.Success("There is no opened wallet")
	}
	return nil
}

func (s *Shell) walletDetachCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("detach", "Detach wallet from Indy CLI").
			AddMainParamWithCompletion("name", "Identifier of the wallet", cmdspec.CompletionWallet).
			AddExample("wallet detach wallet1").
			Finalize(),
		Handler: command.HandlerFunc(s.walletDetach),
	}
}

func (s *Shell) walletDetach(ctx *command.Context, params command.Params) error {
	name, err := command.GetStrParam("name", params)
	if err != nil {
		return err
	}
	if current, ok := ctx.GetOpenedWallet(); ok && current.Name == name {
		return command.PreconditionViolated("Wallet %q is opened", name)
	}
	if err := s.wallets.Detach(name); err != nil {
		if errors.Is(err, indy.ErrNotFound) {
			return command.NothingToOperateOn("Wallet %q isn't attached to CLI", name)
		}
		return sdkError(err, "Cannot delete %q config file", name)
	}
	ctx.Out.Success("Wallet %q has been detached", name)
	return nil
}

func (s *Shell) walletDeleteCommand() *command.Command {
	return &command.Command{
		Metadata: addWalletKeyParams(command.Build("delete", "Delete wallet with specified name").
			AddMainParamWithCompletion("name", "Identifier of the wallet", cmdspec.CompletionWallet)).
			AddExample("wallet delete wallet1 key=secret").
			Finalize(),
		Handler: command.HandlerFunc(s.walletDelete),
	}
}

func (s *Shell) walletDelete(ctx *command.Context, params command.Params) error {
	name, err := command.GetStrParam("name", params)
	if err != nil {
		return err
	}
	if current, ok := ctx.GetOpenedWallet(); ok && current.Name == name {
		return command.PreconditionViolated("Wallet %q is opened. Close it first", name)
	}
	creds, err := s.walletCredentials(params, "")
	if err != nil {
		return err
	}

	if err := s.wallets.Delete(name, creds); err != nil {
		switch {
		case errors.Is(err, indy.ErrNotFound):
			return command.NothingToOperateOn("Wallet %q isn't attached to CLI", name)
		case errors.Is(err, indy.ErrInvalidKey):
			return command.SdkError(err, "Can't delete wallet %q", name)
		}
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.Out.Success("Wallet %q has been deleted", name)
	return nil
}
