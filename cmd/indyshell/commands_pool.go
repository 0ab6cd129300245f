// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"errors"
	"strings"

	"github.com/aplane-algo/indyshell/internal/cmdspec"
	"github.com/aplane-algo/indyshell/internal/command"
	"github.com/aplane-algo/indyshell/internal/indy"
	"github.com/aplane-algo/indyshell/internal/util"
)

func (s *Shell) poolCreateCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("create", "Create new pool ledger config with specified name").
			AddMainParam("name", "The name of new pool ledger config").
			AddParamWithCompletion("gen_txn_file", false, "Path to file with genesis transactions for new pool ledger config", cmdspec.CompletionFile).
			AddExample("pool create sandbox").
			AddExample("pool create sandbox gen_txn_file=/path/sandbox.txn").
			Finalize(),
		Handler: command.HandlerFunc(s.poolCreate),
	}
}

func (s *Shell) poolCreate(ctx *command.Context, params command.Params) error {
	name, err := command.GetStrParam("name", params)
	if err != nil {
		return err
	}
	genTxnFile, ok := command.GetOptStrParam("gen_txn_file", params)
	if !ok {
		genTxnFile = s.config.DefaultGenesisFile
	}

	err = s.pools.CreateConfig(name, indy.PoolConfig{GenesisTxn: genTxnFile})
	if err != nil {
		if errors.Is(err, indy.ErrAlreadyExists) {
			return command.AlreadyExists("Pool config %q already exists", name)
		}
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.Out.Success("Pool config %q has been created", name)
	return nil
}

func (s *Shell) poolConnectCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("connect", "Connect to pool with specified name. Also disconnect from the previously connected.").
			AddMainParamWithCompletion("name", "The name of pool", cmdspec.CompletionPool).
			AddOptionalParam("timeout", "Timeout for network request (in sec)").
			AddOptionalParam("extended_timeout", "Extended timeout for network request (in sec)").
			AddOptionalParam("pre_ordered_nodes", "Names of nodes which will have a priority during request sending (comma separated)").
			AddExample("pool connect sandbox").
			AddExample("pool connect sandbox timeout=100 extended_timeout=200").
			AddExample("pool connect sandbox pre_ordered_nodes=Node2,Node1").
			Finalize(),
		Handler: command.HandlerFunc(s.poolConnect),
	}
}

// poolConnect switches the session to another pool: the connected pool is
// closed first, and a failure there aborts before the new pool is opened.
// If the new open fails the session is left without a connected pool.
func (s *Shell) poolConnect(ctx *command.Context, params command.Params) error {
	name, err := command.GetStrParam("name", params)
	if err != nil {
		return err
	}
	var config indy.OpenConfig
	if config.Timeout, _, err = command.GetOptNumberParam("timeout", params); err != nil {
		return err
	}
	if config.ExtendedTimeout, _, err = command.GetOptNumberParam("extended_timeout", params); err != nil {
		return err
	}
	config.PreOrderedNodes, _ = command.GetOptStrArrayParam("pre_ordered_nodes", params)

	if current, ok := ctx.GetConnectedPool(); ok {
		if err := s.pools.Close(indy.PoolHandle(current.Handle)); err != nil {
			return sdkError(err, "Can't disconnect from pool %q", current.Name)
		}
		ctx.UnsetConnectedPool()
		ctx.Out.Println("Pool %q has been disconnected", current.Name)
	}

	handle, err := s.pools.Open(name, config)
	if err != nil {
		util.Debug("pool open failed", "pool", name, "error", err)
		if errors.Is(err, indy.ErrNotFound) {
			return command.NothingToOperateOn("Pool %q does not exist", name)
		}
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.SetConnectedPool(name, int32(handle))
	if nodes, err := s.pools.Nodes(handle); err == nil {
		util.Debug("pool request order", "pool", name, "nodes", strings.Join(nodes, ","))
	}
	ctx.Out.Success("Pool %q has been connected", name)
	return nil
}

func (s *Shell) poolListCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("list", "List existing pool configs").Finalize(),
		Handler:  command.HandlerFunc(s.poolList),
	}
}

func (s *Shell) poolList(ctx *command.Context, params command.Params) error {
	pools, err := s.pools.List()
	if err != nil {
		return sdkError(err, "Indy SDK error occurred")
	}
	if len(pools) == 0 {
		ctx.Out.Success("There are no pools")
		return nil
	}

	rows := make([][]string, 0, len(pools))
	for _, p := range pools {
		rows = append(rows, []string{p.Name})
	}
	ctx.Out.Table([]string{"Pool"}, rows)

	if current, ok := ctx.GetConnectedPool(); ok {
		ctx.Out.Success("Current pool %q", current.Name)
	} else {
		ctx.Out.Success("There is no connected pool")
	}
	return nil
}

func (s *Shell) poolDisconnectCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("disconnect", "Disconnect from current pool").Finalize(),
		Handler:  command.HandlerFunc(s.poolDisconnect),
	}
}

func (s *Shell) poolDisconnect(ctx *command.Context, params command.Params) error {
	current, ok := ctx.GetConnectedPool()
	if !ok {
		return command.NothingToOperateOn("There is no connected pool now")
	}
	if err := s.pools.Close(indy.PoolHandle(current.Handle)); err != nil {
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.UnsetConnectedPool()
	ctx.Out.Success("Pool %q has been disconnected", current.Name)
	return nil
}

func (s *Shell) poolDeleteCommand() *command.Command {
	return &command.Command{
		Metadata: command.Build("delete", "Delete pool config with specified name").
			AddMainParamWithCompletion("name", "The name of deleted pool config", cmdspec.CompletionPool).
			AddExample("pool delete sandbox").
			Finalize(),
		Handler: command.HandlerFunc(s.poolDelete),
	}
}

func (s *Shell) poolDelete(ctx *command.Context, params command.Params) error {
	name, err := command.GetStrParam("name", params)
	if err != nil {
		return err
	}
	if current, ok := ctx.GetConnectedPool(); ok && current.Name == name {
		return command.PreconditionViolated("Pool %q is connected. Disconnect it first", name)
	}
	if err := s.pools.Delete(name); err != nil {
		if errors.Is(err, indy.ErrNotFound) {
			return command.NothingToOperateOn("Pool %q does not exist", name)
		}
		return sdkError(err, "Indy SDK error occurred")
	}
	ctx.Out.Success("Pool %q has been deleted", name)
	return nil
}
