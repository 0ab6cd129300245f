// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// configdoc generates markdown documentation from Go struct tags.
// Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md
package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/aplane-algo/indyshell/internal/util"
)

// EnvVar represents an environment variable configuration
type EnvVar struct {
	Name        string
	Description string
}

var envVars = []EnvVar{
	{"INDYSHELL_DATA", "Data directory (config, history, pools, wallets) when `-d` is not given"},
	{"INDYSHELL_DEBUG", "Set to any value to enable debug logging on stderr"},
	{"NO_COLOR", "Set to any value to disable colored output"},
}

func main() {
	if err := writeReference(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "configdoc: %v\n", err)
		os.Exit(1)
	}
}

func writeReference(w io.Writer) error {
	var b strings.Builder
	b.WriteString("# Configuration Reference\n\n")
	b.WriteString("Auto-generated from Go struct tags. Do not edit manually.\n\n---\n\n")

	b.WriteString("## indyshell Configuration\n\n")
	fmt.Fprintf(&b, "File: `config.yaml` in the data directory (`-d`, `INDYSHELL_DATA` or `%s`)\n\n", util.DefaultDataDir)
	writeStructTable(&b, reflect.TypeOf(util.Config{}))
	b.WriteString("\n## Environment Variables\n\n")
	writeEnvVars(&b)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeStructTable(b *strings.Builder, t reflect.Type) {
	b.WriteString("| Field | Type | Default | Description |\n")
	b.WriteString("|-------|------|---------|-------------|\n")

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		// Handle tag options like "omitempty"
		fieldName := strings.Split(tag, ",")[0]

		desc := field.Tag.Get("description")
		if desc == "" {
			desc = "(no description)"
		}
		def := field.Tag.Get("default")
		switch def {
		case "":
			def = "(none)"
		case `""`:
			def = "(empty string)"
		}

		fmt.Fprintf(b, "| `%s` | %s | `%s` | %s |\n", fieldName, formatType(field.Type), def, desc)
	}
}

func formatType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "[]" + formatType(t.Elem())
	case reflect.Ptr:
		return "*" + formatType(t.Elem())
	default:
		return t.String()
	}
}

func writeEnvVars(b *strings.Builder) {
	b.WriteString("| Variable | Description |\n")
	b.WriteString("|----------|-------------|\n")
	for _, env := range envVars {
		fmt.Fprintf(b, "| `%s` | %s |\n", env.Name, env.Description)
	}
}
