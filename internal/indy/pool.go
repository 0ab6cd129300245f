// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package indy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aplane-algo/indyshell/internal/fsutil"
	"github.com/aplane-algo/indyshell/internal/util"
)

const (
	poolDirName        = "pool"
	poolConfigFileName = "config.json"
)

// PoolHandle identifies a connected pool.
type PoolHandle int32

// PoolConfig is the stored configuration of a named pool.
type PoolConfig struct {
	GenesisTxn string `json:"genesis_txn"`
}

// OpenConfig holds optional connection settings. Zero values mean "use the
// pool defaults".
type OpenConfig struct {
	Timeout         uint64   `json:"timeout,omitempty"`
	ExtendedTimeout uint64   `json:"extended_timeout,omitempty"`
	PreOrderedNodes []string `json:"preordered_nodes,omitempty"`
}

// PoolInfo is a row of List.
type PoolInfo struct {
	Name string `json:"pool"`
}

type openPool struct {
	name   string
	config OpenConfig
	nodes  []GenesisNode
}

// Pools manages pool configurations under <dataDir>/pool.
type Pools struct {
	dir     string
	handles *handleTable[*openPool]
}

// NewPools creates a pool manager rooted at the data directory.
func NewPools(dataDir string) *Pools {
	return &Pools{
		dir:     filepath.Join(dataDir, poolDirName),
		handles: newHandleTable[*openPool](),
	}
}

func (p *Pools) poolDir(name string) string {
	return filepath.Join(p.dir, name)
}

func (p *Pools) genesisPath(name string) string {
	return filepath.Join(p.poolDir(name), name+".txn")
}

// CreateConfig stores a pool configuration, copying the genesis file into
// the pool directory so later edits of the source do not affect it.
func (p *Pools) CreateConfig(name string, config PoolConfig) error {
	if err := validateName(name); err != nil {
		return err
	}
	dir := p.poolDir(name)
	if fsutil.Exists(dir) {
		return fmt.Errorf("pool %q: %w", name, ErrAlreadyExists)
	}

	f, err := os.Open(config.GenesisTxn)
	if err != nil {
		return fmt.Errorf("%w: can't read genesis file: %v", ErrIO, err)
	}
	_, err = ParseGenesis(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	if err := fsutil.MkdirAll(dir); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := fsutil.CopyFile(config.GenesisTxn, p.genesisPath(name)); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	stored := PoolConfig{GenesisTxn: p.genesisPath(name)}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("failed to encode pool config: %w", err)
	}
	if err := fsutil.WriteFile(filepath.Join(dir, poolConfigFileName), data); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	util.Debug("pool config created", "pool", name)
	return nil
}

// Open connects to a configured pool. The genesis file must still list at
// least one node.
func (p *Pools) Open(name string, config OpenConfig) (PoolHandle, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	if _, ok := p.handles.find(func(op *openPool) bool { return op.name == name }); ok {
		return 0, fmt.Errorf("pool %q is already connected: %w", name, ErrInvalidState)
	}

	cfg, err := p.readConfig(name)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(cfg.GenesisTxn)
	if err != nil {
		return 0, fmt.Errorf("%w: can't read genesis file: %v", ErrIO, err)
	}
	nodes, err := ParseGenesis(f)
	_ = f.Close()
	if err != nil {
		return 0, err
	}
	for _, alias := range config.PreOrderedNodes {
		if !hasNode(nodes, alias) {
			return 0, fmt.Errorf("%w: unknown preordered node %q", ErrInvalidStructure, alias)
		}
	}

	h := p.handles.add(&openPool{name: name, config: config, nodes: nodes})
	util.Debug("pool opened", "pool", name, "handle", h, "nodes", len(nodes))
	return PoolHandle(h), nil
}

// Close disconnects a pool.
func (p *Pools) Close(handle PoolHandle) error {
	op, ok := p.handles.remove(int32(handle))
	if !ok {
		return fmt.Errorf("pool handle %d: %w", handle, ErrInvalidHandle)
	}
	util.Debug("pool closed", "pool", op.name, "handle", handle)
	return nil
}

// Delete removes a pool configuration. A connected pool can't be deleted.
func (p *Pools) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if _, ok := p.handles.find(func(op *openPool) bool { return op.name == name }); ok {
		return fmt.Errorf("pool %q is connected: %w", name, ErrInvalidState)
	}
	dir := p.poolDir(name)
	if !fsutil.Exists(dir) {
		return fmt.Errorf("pool %q: %w", name, ErrNotFound)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	util.Debug("pool config deleted", "pool", name)
	return nil
}

// List returns the configured pools sorted by name. A missing pool
// directory yields an empty list.
func (p *Pools) List() ([]PoolInfo, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	var pools []PoolInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if !fsutil.Exists(filepath.Join(p.dir, e.Name(), poolConfigFileName)) {
			continue
		}
		pools = append(pools, PoolInfo{Name: e.Name()})
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].Name < pools[j].Name })
	return pools, nil
}

// Nodes returns the node aliases of a connected pool, preordered nodes first.
func (p *Pools) Nodes(handle PoolHandle) ([]string, error) {
	op, ok := p.handles.get(int32(handle))
	if !ok {
		return nil, fmt.Errorf("pool handle %d: %w", handle, ErrInvalidHandle)
	}
	aliases := make([]string, 0, len(op.nodes))
	aliases = append(aliases, op.config.PreOrderedNodes...)
	for _, n := range op.nodes {
		if !contains(op.config.PreOrderedNodes, n.Alias) {
			aliases = append(aliases, n.Alias)
		}
	}
	return aliases, nil
}

func (p *Pools) readConfig(name string) (PoolConfig, error) {
	data, err := os.ReadFile(filepath.Join(p.poolDir(name), poolConfigFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return PoolConfig{}, fmt.Errorf("pool %q: %w", name, ErrNotFound)
		}
		return PoolConfig{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	var cfg PoolConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return PoolConfig{}, fmt.Errorf("%w: pool config %q: %v", ErrInvalidStructure, name, err)
	}
	return cfg, nil
}

func hasNode(nodes []GenesisNode, alias string) bool {
	for _, n := range nodes {
		if n.Alias == alias {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
