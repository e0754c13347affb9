package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

// Recursive rewrites already-folded input, collapsing maximal runs of
// identical adjacent frames into a single occurrence. "a;b;b;b;c 7" becomes
// "a;b;c 7".
type Recursive struct{}

func NewRecursive() *Recursive {
	return &Recursive{}
}

func (c *Recursive) Collapse(r io.Reader, w io.Writer) error {
	occ := NewOccurrences()
	warnedFractional := false
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanBufferSize), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if isBlank(line) {
			continue
		}
		stack, count, fractional, ok := SplitStackCount(line)
		if !ok {
			return &MalformedInputError{Format: "folded", Line: lineNo,
				Msg: "expected \"stack count\""}
		}
		if fractional && !warnedFractional {
			warnedFractional = true
			slog.Warn("folded input has fractional counts; truncating")
		}
		occ.Add(collapseRuns(stack), count)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading folded input")
	}
	_, err := occ.WriteTo(w)
	return err
}

// collapseRuns removes adjacent duplicate frames from a semicolon-joined
// stack.
func collapseRuns(stack string) string {
	frames := strings.Split(stack, ";")
	out := frames[:1]
	for _, f := range frames[1:] {
		if f != out[len(out)-1] {
			out = append(out, f)
		}
	}
	return strings.Join(out, ";")
}

// IsApplicable accepts input whose leading non-blank lines all look like
// folded "stack count" records.
func (c *Recursive) IsApplicable(sample []byte) bool {
	checked := 0
	for line := range strings.Lines(string(sample)) {
		line = strings.TrimRight(line, "\r\n")
		if isBlank(line) {
			continue
		}
		stack, _, _, ok := SplitStackCount(line)
		if !ok || stack == "" || startsIndented(line) {
			return false
		}
		checked++
		if checked >= 8 {
			break
		}
	}
	return checked > 0
}
