// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package indy

import (
	"fmt"
	"strings"
)

// validateName rejects names that would escape their directory.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid name %q", ErrInvalidStructure, name)
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: name %q must not contain path separators", ErrInvalidStructure, name)
	}
	return nil
}
