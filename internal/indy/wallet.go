// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package indy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aplane-algo/indyshell/internal/crypto"
	"github.com/aplane-algo/indyshell/internal/fsutil"
	"github.com/aplane-algo/indyshell/internal/util"
)

const (
	walletConfigDirName  = "wallets"
	walletStorageDirName = "wallet"
	walletDBFileName     = "sqlite.db"

	// DefaultStorageType is the only storage backend.
	DefaultStorageType = "default"
)

// WalletHandle identifies an opened wallet.
type WalletHandle int32

// WalletConfig is the attached wallet description stored in
// <dataDir>/wallets/<id>.json.
type WalletConfig struct {
	ID          string `json:"id"`
	StorageType string `json:"storage_type,omitempty"`
	StoragePath string `json:"storage_path,omitempty"`
}

// Credentials unlock a wallet.
type Credentials struct {
	Key                 string
	KeyDerivationMethod string
}

// WalletInfo is a row of List.
type WalletInfo struct {
	Name        string `json:"id"`
	StorageType string `json:"storage_type"`
}

type openWallet struct {
	name string
	db   *sql.DB
}

// Wallets manages wallet configs and their sqlite storage.
type Wallets struct {
	configDir  string
	storageDir string
	handles    *handleTable[*openWallet]
}

// NewWallets creates a wallet manager rooted at the data directory.
func NewWallets(dataDir string) *Wallets {
	return &Wallets{
		configDir:  filepath.Join(dataDir, walletConfigDirName),
		storageDir: filepath.Join(dataDir, walletStorageDirName),
		handles:    newHandleTable[*openWallet](),
	}
}

const walletSchema = `
CREATE TABLE IF NOT EXISTS metadata (
	id TEXT PRIMARY KEY,
	salt BLOB NOT NULL,
	key_check BLOB NOT NULL,
	key_derivation_method TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS dids (
	did TEXT PRIMARY KEY,
	verkey TEXT NOT NULL,
	seed BLOB NOT NULL,
	method TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
`

func (w *Wallets) configPath(name string) string {
	return filepath.Join(w.configDir, name+".json")
}

// storagePath returns the sqlite file of a wallet. A custom storage path is
// a directory that holds one sub directory per wallet, like the default.
func (w *Wallets) storagePath(config WalletConfig) string {
	base := w.storageDir
	if config.StoragePath != "" {
		base = config.StoragePath
	}
	return filepath.Join(base, config.ID, walletDBFileName)
}

// Create creates wallet storage protected by the given credentials and
// attaches it.
func (w *Wallets) Create(config WalletConfig, creds Credentials) error {
	if err := validateName(config.ID); err != nil {
		return err
	}
	if config.StorageType == "" {
		config.StorageType = DefaultStorageType
	}
	if config.StorageType != DefaultStorageType {
		return fmt.Errorf("%w: unknown storage type %q", ErrInvalidStructure, config.StorageType)
	}
	if fsutil.Exists(w.configPath(config.ID)) {
		return fmt.Errorf("wallet %q: %w", config.ID, ErrAlreadyExists)
	}
	dbPath := w.storagePath(config)
	if fsutil.Exists(dbPath) {
		return fmt.Errorf("wallet storage %q: %w", dbPath, ErrAlreadyExists)
	}

	method := creds.KeyDerivationMethod
	if method == "" {
		method = crypto.KeyDerivationArgon2Mod
	}
	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}
	derived, err := crypto.DeriveWalletKey(method, creds.Key, salt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	check := crypto.KeyCheck(derived)
	crypto.ZeroBytes(derived)

	if err := fsutil.MkdirAll(filepath.Dir(dbPath)); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	db, err := openWalletDB(dbPath)
	if err != nil {
		_ = os.RemoveAll(filepath.Dir(dbPath))
		return err
	}
	_, err = db.ExecContext(context.Background(),
		`INSERT INTO metadata (id, salt, key_check, key_derivation_method, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), salt, check, method, time.Now().UTC().Format(time.RFC3339))
	_ = db.Close()
	if err != nil {
		_ = os.RemoveAll(filepath.Dir(dbPath))
		return fmt.Errorf("%w: write wallet metadata: %v", ErrIO, err)
	}

	if err := w.writeConfig(config); err != nil {
		_ = os.RemoveAll(filepath.Dir(dbPath))
		return err
	}
	util.Debug("wallet created", "wallet", config.ID, "derivation", method)
	return nil
}

// Attach registers existing wallet storage under its id.
func (w *Wallets) Attach(config WalletConfig) error {
	if err := validateName(config.ID); err != nil {
		return err
	}
	if config.StorageType == "" {
		config.StorageType = DefaultStorageType
	}
	if fsutil.Exists(w.configPath(config.ID)) {
		return fmt.Errorf("wallet %q: %w", config.ID, ErrAlreadyExists)
	}
	if dbPath := w.storagePath(config); !fsutil.Exists(dbPath) {
		return fmt.Errorf("wallet storage %q: %w", dbPath, ErrNotFound)
	}
	if err := w.writeConfig(config); err != nil {
		return err
	}
	util.Debug("wallet attached", "wallet", config.ID)
	return nil
}

// Detach removes the wallet config, leaving storage in place.
func (w *Wallets) Detach(name string) error {
	if _, err := w.ReadConfig(name); err != nil {
		return err
	}
	if w.IsOpen(name) {
		return fmt.Errorf("wallet %q is opened: %w", name, ErrInvalidState)
	}
	if err := os.Remove(w.configPath(name)); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	util.Debug("wallet detached", "wallet", name)
	return nil
}

// ReadConfig loads the config of an attached wallet.
func (w *Wallets) ReadConfig(name string) (WalletConfig, error) {
	if err := validateName(name); err != nil {
		return WalletConfig{}, err
	}
	data, err := os.ReadFile(w.configPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return WalletConfig{}, fmt.Errorf("wallet %q: %w", name, ErrNotFound)
		}
		return WalletConfig{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	var config WalletConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return WalletConfig{}, fmt.Errorf("%w: wallet config %q: %v", ErrInvalidStructure, name, err)
	}
	if config.ID == "" {
		config.ID = name
	}
	return config, nil
}

// List returns attached wallets sorted by name.
func (w *Wallets) List() ([]WalletInfo, error) {
	entries, err := os.ReadDir(w.configDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	var wallets []WalletInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		config, err := w.ReadConfig(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			util.Warn("skipping unreadable wallet config", "file", e.Name(), "error", err)
			continue
		}
		storageType := config.StorageType
		if storageType == "" {
			storageType = DefaultStorageType
		}
		wallets = append(wallets, WalletInfo{Name: config.ID, StorageType: storageType})
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Name < wallets[j].Name })
	return wallets, nil
}

// Open unlocks an attached wallet. An empty derivation method uses the one
// recorded at creation.
func (w *Wallets) Open(name string, creds Credentials) (WalletHandle, error) {
	config, err := w.ReadConfig(name)
	if err != nil {
		return 0, err
	}
	if w.IsOpen(name) {
		return 0, fmt.Errorf("wallet %q is already opened: %w", name, ErrInvalidState)
	}
	dbPath := w.storagePath(config)
	if !fsutil.Exists(dbPath) {
		return 0, fmt.Errorf("wallet storage %q: %w", dbPath, ErrNotFound)
	}
	db, err := openWalletDB(dbPath)
	if err != nil {
		return 0, err
	}
	if err := verifyWalletKey(db, creds); err != nil {
		_ = db.Close()
		return 0, err
	}
	h := w.handles.add(&openWallet{name: name, db: db})
	util.Debug("wallet opened", "wallet", name, "handle", h)
	return WalletHandle(h), nil
}

// Close closes an opened wallet.
func (w *Wallets) Close(handle WalletHandle) error {
	ow, ok := w.handles.remove(int32(handle))
	if !ok {
		return fmt.Errorf("wallet handle %d: %w", handle, ErrInvalidHandle)
	}
	if err := ow.db.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	util.Debug("wallet closed", "wallet", ow.name, "handle", handle)
	return nil
}

// Delete verifies the credentials, then removes the wallet storage and its
// config. An opened wallet can't be deleted.
func (w *Wallets) Delete(name string, creds Credentials) error {
	config, err := w.ReadConfig(name)
	if err != nil {
		return err
	}
	if w.IsOpen(name) {
		return fmt.Errorf("wallet %q is opened: %w", name, ErrInvalidState)
	}
	dbPath := w.storagePath(config)
	if fsutil.Exists(dbPath) {
		db, err := openWalletDB(dbPath)
		if err != nil {
			return err
		}
		err = verifyWalletKey(db, creds)
		_ = db.Close()
		if err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Dir(dbPath)); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
	if err := os.Remove(w.configPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	util.Debug("wallet deleted", "wallet", name)
	return nil
}

// IsOpen reports whether the named wallet has an open handle.
func (w *Wallets) IsOpen(name string) bool {
	_, ok := w.handles.find(func(ow *openWallet) bool { return ow.name == name })
	return ok
}

func (w *Wallets) db(handle WalletHandle) (*sql.DB, error) {
	ow, ok := w.handles.get(int32(handle))
	if !ok {
		return nil, fmt.Errorf("wallet handle %d: %w", handle, ErrInvalidHandle)
	}
	return ow.db, nil
}

func (w *Wallets) writeConfig(config WalletConfig) error {
	if err := fsutil.MkdirAll(w.configDir); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode wallet config: %w", err)
	}
	if err := fsutil.WriteFile(w.configPath(config.ID), data); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func openWalletDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open wallet database: %v", ErrIO, err)
	}
	// A wallet handle is used from one goroutine at a time.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: set pragma: %v", ErrIO, err)
		}
	}
	if _, err := db.ExecContext(context.Background(), walletSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ensure wallet schema: %v", ErrIO, err)
	}
	if err := os.Chmod(path, fsutil.DataFilePerm); err != nil {
		util.Debug("failed to restrict wallet file permissions", "path", path, "error", err)
	}
	return db, nil
}

func verifyWalletKey(db *sql.DB, creds Credentials) error {
	var (
		salt, check []byte
		method      string
	)
	err := db.QueryRowContext(context.Background(),
		`SELECT salt, key_check, key_derivation_method FROM metadata LIMIT 1`).Scan(&salt, &check, &method)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: wallet metadata missing", ErrInvalidStructure)
		}
		return fmt.Errorf("%w: read wallet metadata: %v", ErrIO, err)
	}
	if creds.KeyDerivationMethod != "" && creds.KeyDerivationMethod != method {
		return ErrInvalidKey
	}
	derived, err := crypto.DeriveWalletKey(method, creds.Key, salt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	defer crypto.ZeroBytes(derived)
	if !crypto.VerifyKeyCheck(derived, check) {
		return ErrInvalidKey
	}
	return nil
}
