// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package crypto derives and verifies wallet keys.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/argon2"
)

// Key derivation methods accepted by wallet commands
const (
	KeyDerivationArgon2Mod = "argon2m" // Argon2id, moderate cost
	KeyDerivationArgon2Int = "argon2i" // Argon2i, interactive cost
	KeyDerivationRaw       = "raw"     // Key is already a base58 encoded 32-byte key
)

const (
	// Argon2id parameters (OWASP recommended)
	argon2mTime    = 1
	argon2mMemory  = 64 * 1024
	argon2mThreads = 4

	argon2iTime    = 3
	argon2iMemory  = 32 * 1024
	argon2iThreads = 4

	walletKeyLen = 32
	SaltLen      = 32

	checkDomain = "indyshell-wallet-check"
)

var (
	ErrUnsupportedDerivation = errors.New("unsupported key derivation method")
	ErrInvalidRawKey         = errors.New("raw key must be a base58 encoded 32-byte value")
	ErrEmptyKey              = errors.New("wallet key must not be empty")
)

// KeyDerivationMethods lists the supported methods in display order.
func KeyDerivationMethods() []string {
	return []string{KeyDerivationArgon2Mod, KeyDerivationArgon2Int, KeyDerivationRaw}
}

// NewSalt returns a random salt for wallet key derivation.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveWalletKey turns a user supplied key into a 32-byte wallet key.
// Caller is responsible for zeroing the returned key when done.
func DeriveWalletKey(method, key string, salt []byte) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	switch method {
	case KeyDerivationArgon2Mod:
		return argon2.IDKey([]byte(key), salt, argon2mTime, argon2mMemory, argon2mThreads, walletKeyLen), nil
	case KeyDerivationArgon2Int:
		return argon2.Key([]byte(key), salt, argon2iTime, argon2iMemory, argon2iThreads, walletKeyLen), nil
	case KeyDerivationRaw:
		raw, err := base58.Decode(key)
		if err != nil || len(raw) != walletKeyLen {
			return nil, ErrInvalidRawKey
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDerivation, method)
}

// KeyCheck returns the verification value stored next to the salt.
func KeyCheck(derived []byte) []byte {
	h := sha256.New()
	h.Write([]byte(checkDomain))
	h.Write(derived)
	return h.Sum(nil)
}

// VerifyKeyCheck compares a derived key against a stored check in constant time.
func VerifyKeyCheck(derived, check []byte) bool {
	return subtle.ConstantTimeCompare(KeyCheck(derived), check) == 1
}
