// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"
)

// Params maps parameter names to raw values for a single invocation.
// A present key with an empty value is distinct from an absent key.
type Params map[string]string

var qualifiedDidPattern = regexp.MustCompile(`^did:[a-z0-9]+:[A-Za-z0-9._:%-]+$`)

// GetStrParam returns a required string parameter.
func GetStrParam(name string, params Params) (string, error) {
	value, ok := params[name]
	if !ok {
		return "", MissingParameter(name)
	}
	return value, nil
}

// GetOptStrParam returns an optional string parameter; absence is not an error.
func GetOptStrParam(name string, params Params) (string, bool) {
	value, ok := params[name]
	return value, ok
}

// GetOptStrArrayParam splits an optional comma-separated parameter.
// Surrounding whitespace and empty items are dropped.
func GetOptStrArrayParam(name string, params Params) ([]string, bool) {
	value, ok := params[name]
	if !ok {
		return nil, false
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items, true
}

func GetBoolParam(name string, params Params) (bool, error) {
	value, ok, err := GetOptBoolParam(name, params)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, MissingParameter(name)
	}
	return value, nil
}

// GetOptBoolParam parses an optional true/false parameter.
func GetOptBoolParam(name string, params Params) (bool, bool, error) {
	raw, ok := params[name]
	if !ok {
		return false, false, nil
	}
	switch strings.ToLower(raw) {
	case "true":
		return true, true, nil
	case "false":
		return false, true, nil
	}
	return false, true, InvalidParameter("Can't parse %q parameter as boolean: %q", name, raw)
}

func GetNumberParam(name string, params Params) (uint64, error) {
	value, ok, err := GetOptNumberParam(name, params)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, MissingParameter(name)
	}
	return value, nil
}

// GetOptNumberParam parses an optional unsigned decimal parameter.
func GetOptNumberParam(name string, params Params) (uint64, bool, error) {
	raw, ok := params[name]
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, true, InvalidParameter("Can't parse %q parameter as number: %q", name, raw)
	}
	return value, true, nil
}

// GetDidParam returns a required DID parameter after validating its shape.
func GetDidParam(name string, params Params) (string, error) {
	value, ok, err := GetOptDidParam(name, params)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", MissingParameter(name)
	}
	return value, nil
}

func GetOptDidParam(name string, params Params) (string, bool, error) {
	raw, ok := params[name]
	if !ok {
		return "", false, nil
	}
	if !IsValidDid(raw) {
		return "", true, InvalidParameter("Invalid DID in %q parameter: %q", name, raw)
	}
	return raw, true, nil
}

// IsValidDid accepts either a fully qualified did:<method>:<id> or an
// unqualified base58 identifier decoding to 16 or 32 bytes.
func IsValidDid(did string) bool {
	if strings.HasPrefix(did, "did:") {
		return qualifiedDidPattern.MatchString(did)
	}
	decoded, err := base58.Decode(did)
	if err != nil {
		return false
	}
	return len(decoded) == 16 || len(decoded) == 32
}
