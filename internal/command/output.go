// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	SuccessPrefix = "✓ "
	ErrorPrefix   = "Error: "
)

// Reporter formats command output. Every command ends with exactly one
// Success line or one Error line; Println and Table may precede it.
type Reporter struct {
	w     io.Writer
	color bool

	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	headerStyle  lipgloss.Style
}

// NewReporter creates a reporter writing to w. Styling is applied only when
// color is true (callers decide via util.SupportsColor and config).
func NewReporter(w io.Writer, color bool) *Reporter {
	renderer := lipgloss.NewRenderer(w)
	return &Reporter{
		w:            w,
		color:        color,
		successStyle: renderer.NewStyle().Foreground(lipgloss.Color("2")),
		errorStyle:   renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		headerStyle:  renderer.NewStyle().Bold(true).Padding(0, 1),
	}
}

func (r *Reporter) Writer() io.Writer {
	return r.w
}

func (r *Reporter) styled(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

func (r *Reporter) Success(format string, args ...any) {
	_, _ = fmt.Fprintln(r.w, r.styled(r.successStyle, SuccessPrefix+fmt.Sprintf(format, args...)))
}

func (r *Reporter) Println(format string, args ...any) {
	_, _ = fmt.Fprintln(r.w, fmt.Sprintf(format, args...))
}

// Error prints the terminal error line for a failed command.
func (r *Reporter) Error(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintln(r.w, r.styled(r.errorStyle, ErrorPrefix+err.Error()))
}

// Table renders rows under the given headers.
func (r *Reporter) Table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	if r.color {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	} else {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}
	_, _ = fmt.Fprintln(r.w, strings.TrimRight(t.Render(), "\n"))
}
