// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package indy

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// NodeTxnType is the ledger transaction type of a NODE transaction.
const NodeTxnType = "0"

// GenesisNode is a validator node described by a genesis transaction.
type GenesisNode struct {
	Alias      string   `json:"alias"`
	Dest       string   `json:"dest"`
	ClientIP   string   `json:"client_ip,omitempty"`
	ClientPort int      `json:"client_port,omitempty"`
	NodeIP     string   `json:"node_ip,omitempty"`
	NodePort   int      `json:"node_port,omitempty"`
	Services   []string `json:"services,omitempty"`
}

type nodeData struct {
	Alias      string   `json:"alias"`
	ClientIP   string   `json:"client_ip"`
	ClientPort int      `json:"client_port"`
	NodeIP     string   `json:"node_ip"`
	NodePort   int      `json:"node_port"`
	Services   []string `json:"services"`
}

// genesisTxn covers both layouts: the current one nests the payload under
// txn.data, the legacy one keeps type/dest/data at the top level.
type genesisTxn struct {
	Txn *struct {
		Type string `json:"type"`
		Data struct {
			Dest string   `json:"dest"`
			Data nodeData `json:"data"`
		} `json:"data"`
	} `json:"txn"`

	Type string   `json:"type"`
	Dest string   `json:"dest"`
	Data nodeData `json:"data"`
}

// ParseGenesis reads JSON-lines genesis transactions and returns the NODE
// entries. Blank lines are skipped; any other malformed line is an error.
func ParseGenesis(r io.Reader) ([]GenesisNode, error) {
	var nodes []GenesisNode
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var txn genesisTxn
		if err := json.Unmarshal([]byte(line), &txn); err != nil {
			return nil, fmt.Errorf("%w: genesis line %d: %v", ErrInvalidStructure, lineNum, err)
		}

		var node GenesisNode
		switch {
		case txn.Txn != nil:
			if txn.Txn.Type != NodeTxnType {
				continue
			}
			node = newGenesisNode(txn.Txn.Data.Dest, txn.Txn.Data.Data)
		case txn.Type == NodeTxnType:
			node = newGenesisNode(txn.Dest, txn.Data)
		default:
			continue
		}
		if node.Alias == "" {
			return nil, fmt.Errorf("%w: genesis line %d: node transaction without alias", ErrInvalidStructure, lineNum)
		}
		nodes = append(nodes, node)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no node transactions in genesis", ErrInvalidStructure)
	}
	return nodes, nil
}

func newGenesisNode(dest string, d nodeData) GenesisNode {
	return GenesisNode{
		Alias:      d.Alias,
		Dest:       dest,
		ClientIP:   d.ClientIP,
		ClientPort: d.ClientPort,
		NodeIP:     d.NodeIP,
		NodePort:   d.NodePort,
		Services:   d.Services,
	}
}
