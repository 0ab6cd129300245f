// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"errors"

	"github.com/aplane-algo/indyshell/internal/command"
	"github.com/aplane-algo/indyshell/internal/indy"
	"github.com/aplane-algo/indyshell/internal/util"
)

// poolSDK is the subset of indy.Pools the pool commands use.
type poolSDK interface {
	CreateConfig(name string, config indy.PoolConfig) error
	Open(name string, config indy.OpenConfig) (indy.PoolHandle, error)
	Close(handle indy.PoolHandle) error
	Delete(name string) error
	List() ([]indy.PoolInfo, error)
	Nodes(handle indy.PoolHandle) ([]string, error)
}

// walletSDK is the subset of indy.Wallets the wallet commands use.
type walletSDK interface {
	Create(config indy.WalletConfig, creds indy.Credentials) error
	Attach(config indy.WalletConfig) error
	Detach(name string) error
	List() ([]indy.WalletInfo, error)
	Open(name string, creds indy.Credentials) (indy.WalletHandle, error)
	Close(handle indy.WalletHandle) error
	Delete(name string, creds indy.Credentials) error
}

// didSDK is the subset of indy.Dids the did commands use.
type didSDK interface {
	CreateAndStore(wallet indy.WalletHandle, opts indy.DidOptions) (indy.DidInfo, error)
	List(wallet indy.WalletHandle) ([]indy.DidInfo, error)
	Get(wallet indy.WalletHandle, did string) (indy.DidInfo, error)
	SetMetadata(wallet indy.WalletHandle, did, metadata string) error
	Qualify(wallet indy.WalletHandle, did, method string) (string, error)
}

// Shell holds everything one indyshell session needs. There is exactly one
// per process; Close releases whatever the session left open.
type Shell struct {
	config util.Config

	pools   poolSDK
	wallets walletSDK
	dids    didSDK

	registry *command.Registry
	ctx      *command.Context
	executor *command.Executor

	// interactive enables prompting for secrets that were not given on the
	// command line.
	interactive bool
	readSecret  func(prompt string) (string, error)
}

// NewShell wires the command registry, session context and executor
// around the given SDK implementations.
func NewShell(config util.Config, pools poolSDK, wallets walletSDK, dids didSDK, out *command.Reporter) *Shell {
	s := &Shell{
		config:     config,
		pools:      pools,
		wallets:    wallets,
		dids:       dids,
		readSecret: util.ReadSecret,
	}
	s.ctx = command.NewContext(&sdkServices{pools: pools, wallets: wallets, dids: dids}, out)
	s.ctx.SetBasePrompt(config.Prompt)
	s.registry = s.initCommandRegistry()
	s.executor = command.NewExecutor(s.registry, s.ctx)
	return s
}

// newLocalShell creates a shell backed by the local SDK in dataDir.
func newLocalShell(dataDir string, config util.Config, out *command.Reporter) *Shell {
	wallets := indy.NewWallets(dataDir)
	return NewShell(config, indy.NewPools(dataDir), wallets, indy.NewDids(wallets), out)
}

// Execute runs one command line. See command.Executor.Execute.
func (s *Shell) Execute(line string) error {
	return s.executor.Execute(line)
}

// Close releases the opened wallet and connected pool, if any.
func (s *Shell) Close() error {
	return s.ctx.Close()
}

// secretParam returns a secret parameter, asking for it on the terminal
// when it was omitted in an interactive session.
func (s *Shell) secretParam(name, prompt string, params command.Params) (string, error) {
	if value, ok := command.GetOptStrParam(name, params); ok {
		return value, nil
	}
	if !s.interactive || s.readSecret == nil {
		return "", command.MissingParameter(name)
	}
	value, err := s.readSecret(prompt)
	if err != nil {
		return "", command.InvalidParameter("Can't read %q parameter: %v", name, err)
	}
	return value, nil
}

// sdkError converts an SDK failure into a command error. Collisions keep
// their own kind; everything else is reported as an opaque SDK error.
func sdkError(err error, format string, args ...any) error {
	if errors.Is(err, indy.ErrAlreadyExists) {
		return command.AlreadyExists(format, args...)
	}
	return command.SdkError(err, format, args...)
}

// sdkServices adapts the typed SDK handles to the context hooks.
type sdkServices struct {
	pools   poolSDK
	wallets walletSDK
	dids    didSDK
}

func (a *sdkServices) ClosePool(handle int32) error {
	return a.pools.Close(indy.PoolHandle(handle))
}

func (a *sdkServices) CloseWallet(handle int32) error {
	return a.wallets.Close(indy.WalletHandle(handle))
}

func (a *sdkServices) PoolNames() ([]string, error) {
	pools, err := a.pools.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pools))
	for _, p := range pools {
		names = append(names, p.Name)
	}
	return names, nil
}

func (a *sdkServices) WalletNames() ([]string, error) {
	wallets, err := a.wallets.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(wallets))
	for _, w := range wallets {
		names = append(names, w.Name)
	}
	return names, nil
}

func (a *sdkServices) Dids(walletHandle int32) ([]string, error) {
	dids, err := a.dids.List(indy.WalletHandle(walletHandle))
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(dids))
	for _, d := range dids {
		result = append(result, d.Did)
	}
	return result, nil
}
