// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package fsutil provides filesystem helpers for the shell data directory.
// Pool configs, wallet configs and wallet storage are private to the user
// (0600 files, 0700 dirs).
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirPerm is the permission mode for data directories.
const DataDirPerm os.FileMode = 0700

// DataFilePerm is the permission mode for data files.
const DataFilePerm os.FileMode = 0600

// MkdirAll creates a directory and all parents with data permissions.
// Unlike os.MkdirAll, this explicitly sets permissions after creation to
// bypass umask restrictions.
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, DataDirPerm); err != nil {
		return err
	}
	return os.Chmod(path, DataDirPerm)
}

// WriteFile atomically replaces path with data: it writes a temp file in the
// same directory and renames it over the target.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Chmod(DataFilePerm); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// CopyFile copies src to dst with data permissions.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return WriteFile(dst, data)
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
