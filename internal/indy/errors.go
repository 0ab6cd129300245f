// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package indy

import "errors"

// SDK error sentinels. Operations wrap them with context using %w.
var (
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidKey       = errors.New("invalid wallet key")
	ErrInvalidHandle    = errors.New("invalid handle")
	ErrInvalidStructure = errors.New("invalid structure")
	ErrIO               = errors.New("io error")
)
