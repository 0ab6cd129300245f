// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"regexp"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Word is one token of a command line after quote removal.
type Word struct {
	Text string // Token text with quotes removed
	Key  string // Parameter name when the token is name=value
	// Named is true when the token starts with a parameter name and '='.
	Named bool
}

// Value returns the parameter value of a named word, or the whole text otherwise.
func (w Word) Value() string {
	if !w.Named {
		return w.Text
	}
	return w.Text[len(w.Key)+1:]
}

var paramKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

func classify(args []string) []Word {
	if len(args) == 0 {
		return nil
	}
	words := make([]Word, 0, len(args))
	for _, arg := range args {
		w := Word{Text: arg}
		if key := paramKeyPattern.FindString(arg); key != "" {
			w.Named = true
			w.Key = key[:len(key)-1]
		}
		words = append(words, w)
	}
	return words
}

// split runs the shell-word parser without environment or backtick
// expansion. operator is true when an unquoted ; & | < or > cut the line
// short.
func split(line string) (args []string, operator bool, err error) {
	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false
	args, err = p.Parse(line)
	if err != nil {
		return nil, false, err
	}
	return args, p.Position >= 0, nil
}

// Tokenize splits a command line into words honoring single and double
// quotes and backslash escapes. Unbalanced quotes and unquoted shell
// operators are reported as an invalid parameter format.
func Tokenize(line string) ([]Word, error) {
	args, operator, err := split(line)
	if err != nil {
		return nil, InvalidParameter("Unterminated quote in command line")
	}
	if operator {
		return nil, InvalidParameter("Unquoted shell operator in command line; quote values containing ; & | < or >")
	}
	return classify(args), nil
}

// TokenizePartial splits a line that is still being typed. It never fails:
// an open quote or a dangling backslash is closed before splitting, so the
// unfinished word is returned as the last word. trailingSpace reports
// whether the cursor sits after a completed word.
func TokenizePartial(line string) (words []Word, trailingSpace bool) {
	for _, base := range []string{line, strings.TrimSuffix(line, `\`)} {
		for _, closing := range []string{"", `"`, `'`} {
			args, operator, err := split(base + closing)
			if err != nil {
				continue
			}
			trailingSpace = base == line && closing == "" && !operator && endsWithBlank(line)
			return classify(args), trailingSpace
		}
	}
	return nil, false
}

func endsWithBlank(line string) bool {
	n := len(line)
	if n == 0 || (line[n-1] != ' ' && line[n-1] != '\t') {
		return false
	}
	return n < 2 || line[n-2] != '\\'
}
