// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"github.com/aplane-algo/indyshell/internal/command"
)

// initCommandRegistry builds the command tree. Registration order is the
// order "help" lists commands in; a name collision panics at startup.
func (s *Shell) initCommandRegistry() *command.Registry {
	r := command.NewRegistry()

	r.MustRegisterCommand(s.helpCommand())
	r.MustRegisterCommand(s.aboutCommand())
	r.MustRegisterCommand(s.exitCommand())
	r.MustRegisterCommand(s.promptCommand())

	r.MustRegisterGroup(command.GroupMetadata{Name: "pool", Description: "Pool management commands"})
	r.MustRegisterCommand(s.poolCreateCommand(), "pool")
	r.MustRegisterCommand(s.poolConnectCommand(), "pool")
	r.MustRegisterCommand(s.poolListCommand(), "pool")
	r.MustRegisterCommand(s.poolDisconnectCommand(), "pool")
	r.MustRegisterCommand(s.poolDeleteCommand(), "pool")

	r.MustRegisterGroup(command.GroupMetadata{Name: "wallet", Description: "Wallet management commands"})
	r.MustRegisterCommand(s.walletCreateCommand(), "wallet")
	r.MustRegisterCommand(s.walletAttachCommand(), "wallet")
	r.MustRegisterCommand(s.walletOpenCommand(), "wallet")
	r.MustRegisterCommand(s.walletCloseCommand(), "wallet")
	r.MustRegisterCommand(s.walletListCommand(), "wallet")
	r.MustRegisterCommand(s.walletDetachCommand(), "wallet")
	r.MustRegisterCommand(s.walletDeleteCommand(), "wallet")

	r.MustRegisterGroup(command.GroupMetadata{Name: "did", Description: "Identity management commands"})
	r.MustRegisterCommand(s.didNewCommand(), "did")
	r.MustRegisterCommand(s.didUseCommand(), "did")
	r.MustRegisterCommand(s.didListCommand(), "did")
	r.MustRegisterCommand(s.didQualifyCommand(), "did")

	return r
}
