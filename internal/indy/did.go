// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package indy

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"github.com/aplane-algo/indyshell/internal/crypto"
	"github.com/aplane-algo/indyshell/internal/util"
)

const (
	didPrefix    = "did:"
	didIDByteLen = 16
)

// DidInfo describes a DID stored in a wallet.
type DidInfo struct {
	Did      string `json:"did"`
	Verkey   string `json:"verkey"`
	Method   string `json:"method,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}

// DidOptions controls CreateAndStore. All fields are optional.
type DidOptions struct {
	Did    string // explicit DID instead of one derived from the verkey
	Seed   string // 32 characters, or 64 hex characters
	Method string // qualify the new DID with this method
}

var methodPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Dids stores DIDs inside opened wallets.
type Dids struct {
	wallets *Wallets
}

// NewDids creates a DID store working on wallets opened through w.
func NewDids(w *Wallets) *Dids {
	return &Dids{wallets: w}
}

// ParseSeed decodes a seed given as 32 raw characters or 64 hex characters.
func ParseSeed(seed string) ([]byte, error) {
	switch len(seed) {
	case ed25519.SeedSize:
		return []byte(seed), nil
	case ed25519.SeedSize * 2:
		b, err := hex.DecodeString(seed)
		if err != nil {
			return nil, fmt.Errorf("%w: seed is not valid hex", ErrInvalidStructure)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: seed must be 32 characters or 64 hex characters", ErrInvalidStructure)
}

// CreateAndStore generates a signing key and stores a new DID for it.
func (d *Dids) CreateAndStore(wallet WalletHandle, opts DidOptions) (DidInfo, error) {
	db, err := d.wallets.db(wallet)
	if err != nil {
		return DidInfo{}, err
	}

	var method string
	if opts.Method != "" {
		if method, err = NormalizeMethod(opts.Method); err != nil {
			return DidInfo{}, err
		}
	}

	var seed []byte
	if opts.Seed != "" {
		if seed, err = ParseSeed(opts.Seed); err != nil {
			return DidInfo{}, err
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return DidInfo{}, fmt.Errorf("failed to generate seed: %w", err)
		}
	}
	defer crypto.ZeroBytes(seed)

	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	info := DidInfo{
		Did:    opts.Did,
		Verkey: base58.Encode(pub),
		Method: method,
	}
	if info.Did == "" {
		info.Did = base58.Encode(pub[:didIDByteLen])
	}
	if method != "" {
		info.Did = qualifyDid(info.Did, method)
	}

	_, err = db.ExecContext(context.Background(),
		`INSERT INTO dids (did, verkey, seed, method, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		info.Did, info.Verkey, seed, info.Method, info.Metadata, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if _, getErr := d.Get(wallet, info.Did); getErr == nil {
			return DidInfo{}, fmt.Errorf("did %q: %w", info.Did, ErrAlreadyExists)
		}
		return DidInfo{}, fmt.Errorf("%w: store did: %v", ErrIO, err)
	}
	util.Debug("did stored", "did", info.Did, "wallet", wallet)
	return info, nil
}

// List returns every DID in the wallet ordered by DID.
func (d *Dids) List(wallet WalletHandle) ([]DidInfo, error) {
	db, err := d.wallets.db(wallet)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(context.Background(),
		`SELECT did, verkey, method, metadata FROM dids ORDER BY did`)
	if err != nil {
		return nil, fmt.Errorf("%w: list dids: %v", ErrIO, err)
	}
	defer rows.Close()

	var dids []DidInfo
	for rows.Next() {
		var info DidInfo
		if err := rows.Scan(&info.Did, &info.Verkey, &info.Method, &info.Metadata); err != nil {
			return nil, fmt.Errorf("%w: scan did: %v", ErrIO, err)
		}
		dids = append(dids, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list dids: %v", ErrIO, err)
	}
	return dids, nil
}

// Get returns a stored DID.
func (d *Dids) Get(wallet WalletHandle, did string) (DidInfo, error) {
	db, err := d.wallets.db(wallet)
	if err != nil {
		return DidInfo{}, err
	}
	info := DidInfo{}
	err = db.QueryRowContext(context.Background(),
		`SELECT did, verkey, method, metadata FROM dids WHERE did = ?`, did).
		Scan(&info.Did, &info.Verkey, &info.Method, &info.Metadata)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DidInfo{}, fmt.Errorf("did %q: %w", did, ErrNotFound)
		}
		return DidInfo{}, fmt.Errorf("%w: get did: %v", ErrIO, err)
	}
	return info, nil
}

// SetMetadata replaces the metadata of a stored DID.
func (d *Dids) SetMetadata(wallet WalletHandle, did, metadata string) error {
	db, err := d.wallets.db(wallet)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(context.Background(),
		`UPDATE dids SET metadata = ? WHERE did = ?`, metadata, did)
	if err != nil {
		return fmt.Errorf("%w: update did metadata: %v", ErrIO, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("did %q: %w", did, ErrNotFound)
	}
	return nil
}

// Qualify rewrites a stored DID into did:<method>:<id> form and returns the
// new identifier. Any previous method prefix is replaced.
func (d *Dids) Qualify(wallet WalletHandle, did, method string) (string, error) {
	method, err := NormalizeMethod(method)
	if err != nil {
		return "", err
	}
	info, err := d.Get(wallet, did)
	if err != nil {
		return "", err
	}
	qualified := qualifyDid(info.Did, method)
	if qualified == info.Did {
		return qualified, nil
	}
	if _, err := d.Get(wallet, qualified); err == nil {
		return "", fmt.Errorf("did %q: %w", qualified, ErrAlreadyExists)
	}

	db, err := d.wallets.db(wallet)
	if err != nil {
		return "", err
	}
	_, err = db.ExecContext(context.Background(),
		`UPDATE dids SET did = ?, method = ? WHERE did = ?`, qualified, method, info.Did)
	if err != nil {
		return "", fmt.Errorf("%w: qualify did: %v", ErrIO, err)
	}
	util.Debug("did qualified", "did", info.Did, "qualified", qualified)
	return qualified, nil
}

// UnqualifiedDid strips a did:<method>: prefix.
func UnqualifiedDid(did string) string {
	if !strings.HasPrefix(did, didPrefix) {
		return did
	}
	rest := strings.TrimPrefix(did, didPrefix)
	if i := strings.Index(rest, ":"); i >= 0 {
		return rest[i+1:]
	}
	return rest
}

func qualifyDid(did, method string) string {
	return didPrefix + method + ":" + UnqualifiedDid(did)
}

// NormalizeMethod accepts "peer" as well as "did:peer" and returns the bare
// method name. Method names are lowercase letters and digits only, so every
// qualified DID parses back as did:<method>:<id>.
func NormalizeMethod(method string) (string, error) {
	m := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(method), didPrefix), ":")
	if !methodPattern.MatchString(m) {
		return "", fmt.Errorf("%w: invalid DID method %q", ErrInvalidStructure, method)
	}
	return m, nil
}
