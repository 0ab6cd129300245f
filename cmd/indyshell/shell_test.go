// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aplane-algo/indyshell/internal/command"
	"github.com/aplane-algo/indyshell/internal/crypto"
	"github.com/aplane-algo/indyshell/internal/indy"
	"github.com/aplane-algo/indyshell/internal/util"
)

const testGenesis = `{"reqSignature":{},"txn":{"data":{"data":{"alias":"Node1","client_ip":"127.0.0.1","client_port":9702,"node_ip":"127.0.0.1","node_port":9701,"services":["VALIDATOR"]},"dest":"Gw6pDLhcBcoQesN72qfotTgFa7cbuqZpkX3Xo6pLhPhv"},"metadata":{"from":"Th7MpTaRZVRYnPiabds81Y"},"type":"0"},"txnMetadata":{"seqNo":1},"ver":"1"}
{"reqSignature":{},"txn":{"data":{"data":{"alias":"Node2","client_ip":"127.0.0.1","client_port":9704,"node_ip":"127.0.0.1","node_port":9703,"services":["VALIDATOR"]},"dest":"8ECVSk179mjsjKRLWiQtssMLgp6EPhWXtaYyStWPSGAb"},"metadata":{"from":"EbP4aYNeTHL6q385GuVpRV"},"type":"0"},"txnMetadata":{"seqNo":2},"ver":"1"}
`

const trusteeSeed = "000000000000000000000000Trustee1"
const trusteeDid = "V4SGRU86Z58d6TV7PBUe6f"

// newTestShell returns a shell over the local SDK in a temp data dir. The
// default genesis file points at a two-node genesis.
func newTestShell(t *testing.T) (*Shell, *strings.Builder) {
	t.Helper()
	return newTestShellAt(t, t.TempDir())
}

func newTestShellAt(t *testing.T, dataDir string) (*Shell, *strings.Builder) {
	t.Helper()
	genesis := filepath.Join(t.TempDir(), "pool_transactions_genesis")
	if err := os.WriteFile(genesis, []byte(testGenesis), 0600); err != nil {
		t.Fatal(err)
	}

	config := util.DefaultConfig()
	config.DefaultGenesisFile = genesis
	config.DefaultKeyDerivation = crypto.KeyDerivationArgon2Int

	var out strings.Builder
	s := newLocalShell(dataDir, config, command.NewReporter(&out, false))
	t.Cleanup(func() { _ = s.Close() })
	return s, &out
}

// mustExecute runs lines that are expected to succeed.
func mustExecute(t *testing.T, s *Shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := s.Execute(line); err != nil {
			t.Fatalf("Execute(%q) error = %v", line, err)
		}
	}
}

func TestCommandRegistration(t *testing.T) {
	s, _ := newTestShell(t)

	expected := []string{
		"help", "about", "exit", "prompt",
		"pool.create", "pool.connect", "pool.list", "pool.disconnect", "pool.delete",
		"wallet.create", "wallet.attach", "wallet.open", "wallet.close", "wallet.list", "wallet.detach", "wallet.delete",
		"did.new", "did.use", "did.list", "did.qualify",
	}
	for _, path := range expected {
		node, err := s.registry.LookupPath(path)
		if err != nil {
			t.Errorf("command %q not registered: %v", path, err)
			continue
		}
		if node.IsGroup() || node.Command.Handler == nil {
			t.Errorf("command %q has no handler", path)
		}
	}
	if got := len(s.registry.Commands()); got != len(expected) {
		t.Errorf("registered %d commands, want %d", got, len(expected))
	}

	// Closing without an open resource is reported by the handler as
	// NothingToOperateOn, not rejected as a failed requirement.
	for _, path := range []string{"pool.disconnect", "wallet.close"} {
		node, _ := s.registry.LookupPath(path)
		if len(node.Command.Requires) != 0 {
			t.Errorf("%s requires %v, want none", path, node.Command.Requires)
		}
	}
	for _, path := range []string{"did.new", "did.use", "did.list", "did.qualify"} {
		node, _ := s.registry.LookupPath(path)
		if len(node.Command.Requires) != 1 || node.Command.Requires[0] != command.RequireOpenedWallet {
			t.Errorf("%s requires %v, want an opened wallet", path, node.Command.Requires)
		}
	}
}

func TestPoolCreateDuplicate(t *testing.T) {
	s, out := newTestShell(t)

	mustExecute(t, s, "pool create test1")
	if !strings.Contains(out.String(), `✓ Pool config "test1" has been created`) {
		t.Errorf("output = %q", out.String())
	}

	err := s.Execute("pool create test1")
	if !errors.Is(err, command.ErrAlreadyExists) {
		t.Errorf("second create error = %v, want AlreadyExists", err)
	}
	if !strings.Contains(out.String(), `Error: Pool config "test1" already exists`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestPoolConnectDisconnect(t *testing.T) {
	s, _ := newTestShell(t)
	mustExecute(t, s, "pool create test1")

	if err := s.Execute("pool disconnect"); !errors.Is(err, command.ErrNothingToOperateOn) {
		t.Errorf("disconnect with no pool error = %v, want NothingToOperateOn", err)
	}

	mustExecute(t, s, "pool connect test1 timeout=10 pre_ordered_nodes=Node2")
	pool, ok := s.ctx.GetConnectedPool()
	if !ok || pool.Name != "test1" {
		t.Fatalf("connected pool = %+v, %v", pool, ok)
	}
	if !strings.HasPrefix(s.ctx.Prompt(), "pool(test1):") {
		t.Errorf("prompt = %q", s.ctx.Prompt())
	}

	// A connected pool can't be deleted.
	if err := s.Execute("pool delete test1"); !errors.Is(err, command.ErrPreconditionViolated) {
		t.Errorf("delete connected pool error = %v", err)
	}

	mustExecute(t, s, "pool disconnect")
	if _, ok := s.ctx.GetConnectedPool(); ok {
		t.Error("pool still connected after disconnect")
	}
	mustExecute(t, s, "pool delete test1")
	if err := s.Execute("pool connect test1"); !errors.Is(err, command.ErrNothingToOperateOn) {
		t.Errorf("connect deleted pool error = %v", err)
	}
}

func TestPoolConnectParams(t *testing.T) {
	s, _ := newTestShell(t)
	mustExecute(t, s, "pool create test1")

	if err := s.Execute("pool connect test1 timeout=soon"); !errors.Is(err, command.ErrInvalidParameterFormat) {
		t.Errorf("bad timeout error = %v", err)
	}
	if err := s.Execute("pool connect test1 pre_ordered_nodes=Node9"); !errors.Is(err, command.ErrExternalSdk) {
		t.Errorf("unknown node error = %v", err)
	}
	if _, ok := s.ctx.GetConnectedPool(); ok {
		t.Error("failed connect must not record a pool")
	}
}

func TestPoolList(t *testing.T) {
	s, out := newTestShell(t)

	mustExecute(t, s, "pool list")
	if !strings.Contains(out.String(), "There are no pools") {
		t.Errorf("empty list output = %q", out.String())
	}

	mustExecute(t, s, "pool create alpha", "pool create beta", "pool connect beta")
	out.Reset()
	mustExecute(t, s, "pool list")
	for _, want := range []string{"alpha", "beta", `✓ Current pool "beta"`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("list output missing %q:\n%s", want, out.String())
		}
	}
}

func TestWalletLifecycle(t *testing.T) {
	s, out := newTestShell(t)

	mustExecute(t, s, "wallet create w1 key=secret", "wallet create w2 key=secret")
	if err := s.Execute("wallet create w1 key=secret"); !errors.Is(err, command.ErrAlreadyExists) {
		t.Errorf("duplicate wallet error = %v", err)
	}

	if err := s.Execute("wallet open w1 key=wrong"); !errors.Is(err, command.ErrExternalSdk) {
		t.Errorf("wrong key error = %v", err)
	}
	if _, ok := s.ctx.GetOpenedWallet(); ok {
		t.Fatal("failed open must not record a wallet")
	}

	mustExecute(t, s, "wallet open w1 key=secret")
	// Opening another wallet closes the current one first.
	mustExecute(t, s, "wallet open w2 key=secret")
	w, ok := s.ctx.GetOpenedWallet()
	if !ok || w.Name != "w2" {
		t.Fatalf("opened wallet = %+v", w)
	}
	if !strings.Contains(out.String(), `Wallet "w1" has been closed`) {
		t.Errorf("switch output = %q", out.String())
	}

	out.Reset()
	mustExecute(t, s, "wallet list")
	if !strings.Contains(out.String(), "w1") || !strings.Contains(out.String(), `Current wallet "w2"`) {
		t.Errorf("list output = %q", out.String())
	}

	if err := s.Execute("wallet delete w2 key=secret"); !errors.Is(err, command.ErrPreconditionViolated) {
		t.Errorf("delete opened wallet error = %v", err)
	}
	mustExecute(t, s, "wallet close")
	if err := s.Execute("wallet close"); !errors.Is(err, command.ErrNothingToOperateOn) {
		t.Errorf("second close error = %v", err)
	}
	mustExecute(t, s, "wallet delete w2 key=secret")
	if err := s.Execute("wallet open w2 key=secret"); !errors.Is(err, command.ErrNothingToOperateOn) {
		t.Errorf("open deleted wallet error = %v", err)
	}
}

func TestWalletDetach(t *testing.T) {
	dataDir := t.TempDir()
	s, out := newTestShellAt(t, dataDir)
	configFile := filepath.Join(dataDir, "wallets", "w1.json")

	mustExecute(t, s, "wallet create w1 key=secret", "wallet open w1 key=secret")

	if err := s.Execute("wallet detach w1"); !errors.Is(err, command.ErrPreconditionViolated) {
		t.Fatalf("detach opened wallet error = %v", err)
	}
	if _, err := os.Stat(configFile); err != nil {
		t.Fatalf("config file should survive a failed detach: %v", err)
	}

	mustExecute(t, s, "wallet close", "wallet detach w1")
	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		t.Errorf("config file should be removed, stat error = %v", err)
	}

	out.Reset()
	mustExecute(t, s, "wallet list")
	if strings.Contains(out.String(), "w1") {
		t.Errorf("detached wallet still listed: %q", out.String())
	}
	if err := s.Execute("wallet detach w1"); !errors.Is(err, command.ErrNothingToOperateOn) {
		t.Errorf("detach twice error = %v", err)
	}

	// Storage is kept and can be attached again.
	mustExecute(t, s, "wallet attach w1", "wallet open w1 key=secret")
}

func TestWalletKeyPrompt(t *testing.T) {
	s, _ := newTestShell(t)

	if err := s.Execute("wallet create w1"); !errors.Is(err, command.ErrMissingParameter) {
		t.Errorf("missing key in batch mode error = %v, want MissingParameter", err)
	}

	var prompts []string
	s.interactive = true
	s.readSecret = func(prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "secret", nil
	}
	mustExecute(t, s, "wallet create w1", "wallet open w1")
	if len(prompts) != 2 || prompts[0] != walletKeyPrompt {
		t.Errorf("prompts = %v", prompts)
	}

	if err := s.Execute("wallet create w2 key=k key_derivation_method=scrypt"); !errors.Is(err, command.ErrInvalidParameterFormat) {
		t.Errorf("unknown derivation error = %v", err)
	}
}

func TestDidCommandsRequireWallet(t *testing.T) {
	s, _ := newTestShell(t)
	for _, line := range []string{"did new", "did list", "did use " + trusteeDid, "did qualify " + trusteeDid + " method=peer"} {
		if err := s.Execute(line); !errors.Is(err, command.ErrPreconditionViolated) {
			t.Errorf("Execute(%q) error = %v, want PreconditionViolated", line, err)
		}
	}
}

func TestDidQualify(t *testing.T) {
	s, out := newTestShell(t)
	mustExecute(t, s, "wallet create w key=secret", "wallet open w key=secret", "did new seed="+trusteeSeed)
	if !strings.Contains(out.String(), trusteeDid) {
		t.Fatalf("did new output = %q", out.String())
	}

	if err := s.Execute("did qualify NcYxiDXkpYi6ov5FcYDi1e method=peer"); err == nil {
		t.Error("qualifying an unknown DID should fail")
	}
	if err := s.Execute("did qualify not-a-did method=peer"); !errors.Is(err, command.ErrInvalidParameterFormat) {
		t.Errorf("malformed DID error = %v", err)
	}

	mustExecute(t, s, "did use "+trusteeDid)
	if active, _ := s.ctx.GetActiveDid(); active != trusteeDid {
		t.Fatalf("active did = %q", active)
	}

	out.Reset()
	mustExecute(t, s, "did qualify "+trusteeDid+" method=peer")
	want := "did:peer:" + trusteeDid
	if !strings.Contains(out.String(), `Fully qualified DID "`+want+`"`) {
		t.Errorf("qualify output = %q", out.String())
	}
	if active, _ := s.ctx.GetActiveDid(); active != want {
		t.Errorf("active did = %q, want %q", active, want)
	}

	out.Reset()
	mustExecute(t, s, "did list")
	if !strings.Contains(out.String(), want) || !strings.Contains(out.String(), `Current did "`+want+`"`) {
		t.Errorf("did list output = %q", out.String())
	}
}

func TestDidQualifyInactive(t *testing.T) {
	s, _ := newTestShell(t)
	mustExecute(t, s,
		"wallet create w key=secret",
		"wallet open w key=secret",
		"did new seed="+trusteeSeed,
		"did new did=VsKV7grR1BUE29mG2Fm2kX",
		"did use VsKV7grR1BUE29mG2Fm2kX",
		"did qualify "+trusteeDid+" method=sov",
	)
	if active, _ := s.ctx.GetActiveDid(); active != "VsKV7grR1BUE29mG2Fm2kX" {
		t.Errorf("qualifying another DID changed the active one to %q", active)
	}
}

func TestDidNewDuplicate(t *testing.T) {
	s, _ := newTestShell(t)
	mustExecute(t, s, "wallet create w key=secret", "wallet open w key=secret", "did new seed="+trusteeSeed)
	if err := s.Execute("did new seed=" + trusteeSeed); !errors.Is(err, command.ErrAlreadyExists) {
		t.Errorf("duplicate did error = %v", err)
	}
	if err := s.Execute("did new seed=short"); !errors.Is(err, command.ErrInvalidParameterFormat) {
		t.Errorf("bad seed error = %v", err)
	}
}

func TestPromptAndExit(t *testing.T) {
	s, _ := newTestShell(t)
	mustExecute(t, s, "prompt ledger")
	if s.ctx.Prompt() != "ledger> " {
		t.Errorf("prompt = %q", s.ctx.Prompt())
	}
	if err := s.Execute(`prompt ""`); !errors.Is(err, command.ErrInvalidParameterFormat) {
		t.Errorf("empty prompt error = %v", err)
	}
	mustExecute(t, s, "about", "help", "pool", "exit")
	if !s.ctx.ExitRequested() {
		t.Error("exit not requested")
	}
}

func TestFullPrompt(t *testing.T) {
	s, _ := newTestShell(t)
	mustExecute(t, s,
		"pool create p",
		"pool connect p",
		"wallet create w key=secret",
		"wallet open w key=secret",
		"did new seed="+trusteeSeed,
		"did use "+trusteeDid,
	)
	if got, want := s.ctx.Prompt(), "pool(p):wallet(w):did(V4S...e6f):indy> "; got != want {
		t.Errorf("Prompt() = %q, want %q", got, want)
	}
	if s.ctx.PromptDepth() != 3 {
		t.Errorf("PromptDepth() = %d", s.ctx.PromptDepth())
	}

	mustExecute(t, s, "wallet close", "pool disconnect")
	if s.ctx.PromptDepth() != 0 {
		t.Errorf("PromptDepth() after close = %d", s.ctx.PromptDepth())
	}
}

// fakePools is a poolSDK whose Open and Close can be made to fail.
type fakePools struct {
	next      indy.PoolHandle
	open      map[indy.PoolHandle]string
	openCalls []string
	failOpen  map[string]bool
	failClose bool
}

func newFakePools() *fakePools {
	return &fakePools{open: map[indy.PoolHandle]string{}, failOpen: map[string]bool{}}
}

func (f *fakePools) CreateConfig(name string, config indy.PoolConfig) error { return nil }
func (f *fakePools) Delete(name string) error { return nil }
func (f *fakePools) List() ([]indy.PoolInfo, error) { return nil, nil }
func (f *fakePools) Nodes(handle indy.PoolHandle) ([]string, error) { return nil, nil }

func (f *fakePools) Open(name string, config indy.OpenConfig) (indy.PoolHandle, error) {
	f.openCalls = append(f.openCalls, name)
	if f.failOpen[name] {
		return 0, fmt.Errorf("%w: pool unreachable", indy.ErrIO)
	}
	f.next++
	f.open[f.next] = name
	return f.next, nil
}

func (f *fakePools) Close(handle indy.PoolHandle) error {
	if f.failClose {
		return fmt.Errorf("%w: close failed", indy.ErrIO)
	}
	if _, ok := f.open[handle]; !ok {
		return indy.ErrInvalidHandle
	}
	delete(f.open, handle)
	return nil
}

func newFakePoolShell(t *testing.T, pools *fakePools) *Shell {
	t.Helper()
	wallets := indy.NewWallets(t.TempDir())
	var out strings.Builder
	return NewShell(util.DefaultConfig(), pools, wallets, indy.NewDids(wallets), command.NewReporter(&out, false))
}

func TestPoolConnectSwitch(t *testing.T) {
	t.Run("switches pools", func(t *testing.T) {
		pools := newFakePools()
		s := newFakePoolShell(t, pools)
		mustExecute(t, s, "pool connect A", "pool connect B")

		current, ok := s.ctx.GetConnectedPool()
		if !ok || current.Name != "B" {
			t.Fatalf("connected pool = %+v, %v", current, ok)
		}
		if len(pools.open) != 1 {
			t.Errorf("open pools = %v, want only B", pools.open)
		}
	})

	t.Run("failed open leaves nothing connected", func(t *testing.T) {
		pools := newFakePools()
		pools.failOpen["B"] = true
		s := newFakePoolShell(t, pools)
		mustExecute(t, s, "pool connect A")

		if err := s.Execute("pool connect B"); !errors.Is(err, command.ErrExternalSdk) {
			t.Fatalf("connect B error = %v", err)
		}
		if _, ok := s.ctx.GetConnectedPool(); ok {
			t.Error("no pool should be connected after a failed switch")
		}
		if len(pools.open) != 0 {
			t.Errorf("pool A should have been closed, open = %v", pools.open)
		}
	})

	t.Run("failed close keeps current pool", func(t *testing.T) {
		pools := newFakePools()
		s := newFakePoolShell(t, pools)
		mustExecute(t, s, "pool connect A")
		pools.failClose = true

		if err := s.Execute("pool connect B"); !errors.Is(err, command.ErrExternalSdk) {
			t.Fatalf("connect B error = %v", err)
		}
		current, ok := s.ctx.GetConnectedPool()
		if !ok || current.Name != "A" {
			t.Errorf("connected pool = %+v, want A", current)
		}
		if len(pools.openCalls) != 1 {
			t.Errorf("B must not be opened, open calls = %v", pools.openCalls)
		}
		pools.failClose = false
	})
}

func TestShellClose(t *testing.T) {
	pools := newFakePools()
	s := newFakePoolShell(t, pools)
	mustExecute(t, s, "pool connect A")

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if len(pools.open) != 0 {
		t.Errorf("Close() left pools open: %v", pools.open)
	}
	if _, ok := s.ctx.GetConnectedPool(); ok {
		t.Error("context still has a connected pool")
	}
}

func TestDidMethodValidation(t *testing.T) {
	s, out := newTestShell(t)
	mustExecute(t, s, "wallet create w key=secret", "wallet open w key=secret", "did new seed="+trusteeSeed)

	tests := []struct {
		name string
		line string
	}{
		{"uppercase qualify", "did qualify " + trusteeDid + " method=Peer"},
		{"space in qualify", "did qualify " + trusteeDid + ` method="pe er"`},
		{"empty qualify", "did qualify " + trusteeDid + " method="},
		{"colon in qualify", "did qualify " + trusteeDid + " method=web:example"},
		{"uppercase new", "did new method=X"},
		{"empty new", "did new method="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Execute(tt.line); !errors.Is(err, command.ErrInvalidParameterFormat) {
				t.Errorf("Execute(%q) error = %v, want InvalidParameterFormat", tt.line, err)
			}
		})
	}

	// Nothing was stored or rewritten, so the DID is still usable.
	mustExecute(t, s, "did use "+trusteeDid)
	out.Reset()
	mustExecute(t, s, "did list")
	if strings.Contains(out.String(), "did:") {
		t.Errorf("a rejected method was stored:\n%s", out.String())
	}

	// A did: prefix on the method is accepted and stripped.
	mustExecute(t, s, "did qualify "+trusteeDid+" method=did:peer")
	if active, _ := s.ctx.GetActiveDid(); active != "did:peer:"+trusteeDid {
		t.Errorf("active did = %q", active)
	}
	mustExecute(t, s, "did use did:peer:"+trusteeDid)
}

func TestDidNewMetadata(t *testing.T) {
	s, out := newTestShell(t)
	mustExecute(t, s,
		"wallet create w key=secret",
		"wallet open w key=secret",
		`did new seed=`+trusteeSeed+` metadata="my first did"`,
	)
	if !strings.Contains(out.String(), `Metadata has been saved for DID "`+trusteeDid+`"`) {
		t.Errorf("did new output = %q", out.String())
	}

	out.Reset()
	mustExecute(t, s, "did list")
	if !strings.Contains(out.String(), "my first did") {
		t.Errorf("did list output missing metadata:\n%s", out.String())
	}
}

func TestPoolConnectLogsNodeOrder(t *testing.T) {
	var logs strings.Builder
	saved := util.Logger
	util.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { util.Logger = saved })

	s, _ := newTestShell(t)
	mustExecute(t, s, "pool create p", "pool connect p pre_ordered_nodes=Node2")
	if !strings.Contains(logs.String(), "nodes=Node2,Node1") {
		t.Errorf("node order not logged:\n%s", logs.String())
	}
}

func TestCommonCommandsEndWithSuccessLine(t *testing.T) {
	for _, line := range []string{"help", "about", "wallet", "did qualify help"} {
		t.Run(line, func(t *testing.T) {
			s, out := newTestShell(t)
			mustExecute(t, s, line)
			if got := strings.Count(out.String(), command.SuccessPrefix); got != 1 {
				t.Errorf("printed %d success lines, want 1:\n%s", got, out.String())
			}
			lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
			if last := lines[len(lines)-1]; !strings.HasPrefix(last, command.SuccessPrefix) {
				t.Errorf("last line = %q, want a success line", last)
			}
		})
	}
}

// fakeWallets is a walletSDK with per-wallet keys whose Close can be made
// to fail.
type fakeWallets struct {
	next      indy.WalletHandle
	open      map[indy.WalletHandle]string
	openCalls []string
	keys      map[string]string
	failClose bool
}

func newFakeWallets(names ...string) *fakeWallets {
	f := &fakeWallets{open: map[indy.WalletHandle]string{}, keys: map[string]string{}}
	for _, name := range names {
		f.keys[name] = "secret"
	}
	return f
}

func (f *fakeWallets) Create(config indy.WalletConfig, creds indy.Credentials) error {
	f.keys[config.ID] = creds.Key
	return nil
}
func (f *fakeWallets) Attach(config indy.WalletConfig) error { return nil }
func (f *fakeWallets) Detach(name string) error { return nil }
func (f *fakeWallets) List() ([]indy.WalletInfo, error) { return nil, nil }
func (f *fakeWallets) Delete(name string, creds indy.Credentials) error { return nil }

func (f *fakeWallets) Open(name string, creds indy.Credentials) (indy.WalletHandle, error) {
	f.openCalls = append(f.openCalls, name)
	key, ok := f.keys[name]
	if !ok {
		return 0, fmt.Errorf("wallet %q: %w", name, indy.ErrNotFound)
	}
	if key != creds.Key {
		return 0, indy.ErrInvalidKey
	}
	f.next++
	f.open[f.next] = name
	return f.next, nil
}

func (f *fakeWallets) Close(handle indy.WalletHandle) error {
	if f.failClose {
		return fmt.Errorf("%w: close failed", indy.ErrIO)
	}
	if _, ok := f.open[handle]; !ok {
		return indy.ErrInvalidHandle
	}
	delete(f.open, handle)
	return nil
}

func newFakeWalletShell(t *testing.T, wallets *fakeWallets) *Shell {
	t.Helper()
	var out strings.Builder
	dids := indy.NewDids(indy.NewWallets(t.TempDir()))
	return NewShell(util.DefaultConfig(), newFakePools(), wallets, dids, command.NewReporter(&out, false))
}

func TestWalletOpenSwitch(t *testing.T) {
	t.Run("switches wallets", func(t *testing.T) {
		wallets := newFakeWallets("w1", "w2")
		s := newFakeWalletShell(t, wallets)
		mustExecute(t, s, "wallet open w1 key=secret", "wallet open w2 key=secret")

		current, ok := s.ctx.GetOpenedWallet()
		if !ok || current.Name != "w2" {
			t.Fatalf("opened wallet = %+v, %v", current, ok)
		}
		if len(wallets.open) != 1 {
			t.Errorf("open wallets = %v, want only w2", wallets.open)
		}
	})

	t.Run("failed open leaves nothing opened", func(t *testing.T) {
		wallets := newFakeWallets("w1", "w2")
		s := newFakeWalletShell(t, wallets)
		mustExecute(t, s, "wallet open w1 key=secret")
		s.ctx.SetActiveDid(trusteeDid)

		if err := s.Execute("wallet open w2 key=wrong"); !errors.Is(err, command.ErrExternalSdk) {
			t.Fatalf("open w2 error = %v", err)
		}
		if _, ok := s.ctx.GetOpenedWallet(); ok {
			t.Error("no wallet should be opened after a failed switch")
		}
		if _, ok := s.ctx.GetActiveDid(); ok {
			t.Error("the active DID must go with the closed wallet")
		}
		if len(wallets.open) != 0 {
			t.Errorf("w1 should have been closed, open = %v", wallets.open)
		}
		if s.ctx.PromptDepth() != 0 {
			t.Errorf("prompt = %q", s.ctx.Prompt())
		}
	})

	t.Run("unknown wallet leaves nothing opened", func(t *testing.T) {
		wallets := newFakeWallets("w1")
		s := newFakeWalletShell(t, wallets)
		mustExecute(t, s, "wallet open w1 key=secret")

		if err := s.Execute("wallet open missing key=secret"); !errors.Is(err, command.ErrNothingToOperateOn) {
			t.Fatalf("open missing error = %v", err)
		}
		if _, ok := s.ctx.GetOpenedWallet(); ok {
			t.Error("no wallet should be opened")
		}
	})

	t.Run("failed close keeps current wallet", func(t *testing.T) {
		wallets := newFakeWallets("w1", "w2")
		s := newFakeWalletShell(t, wallets)
		mustExecute(t, s, "wallet open w1 key=secret")
		s.ctx.SetActiveDid(trusteeDid)
		wallets.failClose = true

		if err := s.Execute("wallet open w2 key=secret"); !errors.Is(err, command.ErrExternalSdk) {
			t.Fatalf("open w2 error = %v", err)
		}
		current, ok := s.ctx.GetOpenedWallet()
		if !ok || current.Name != "w1" {
			t.Errorf("opened wallet = %+v, want w1", current)
		}
		if active, _ := s.ctx.GetActiveDid(); active != trusteeDid {
			t.Errorf("active did = %q, want it kept", active)
		}
		if len(wallets.openCalls) != 1 {
			t.Errorf("w2 must not be opened, open calls = %v", wallets.openCalls)
		}
	})
}
