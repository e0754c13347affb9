// Package collapse turns the output of stack-sampling profilers into folded
// stacks: one line per unique call stack of the form
// "frame1;frame2;...;frameN count".
package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Collapser consumes one profiler's output and produces folded stacks.
type Collapser interface {
	// Collapse reads profiler output from r until EOF and writes folded
	// output to w. The input is processed as a stream; it is never loaded
	// into memory as a whole.
	Collapse(r io.Reader, w io.Writer) error

	// IsApplicable reports whether sample, a prefix of the input, looks
	// like this collapser's format. It is a cheap sniff used by the guess
	// collapser and must not require the full input.
	IsApplicable(sample []byte) bool
}

// ErrUnknownFormat is returned by the guess collapser when no concrete
// collapser recognizes the input.
var ErrUnknownFormat = errors.New("unable to detect profile format")

// MalformedInputError reports a structural violation that would desynchronize
// a collapser's state machine. Line numbers are 1-based.
type MalformedInputError struct {
	Format string
	Line   int
	Msg    string
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed %s input at line %d: %s", e.Format, e.Line, e.Msg)
	}
	return fmt.Sprintf("malformed %s input: %s", e.Format, e.Msg)
}

// scanBufferSize is the initial line buffer size. Perf and DTrace lines are
// normally well under 8 KiB; the scanner grows up to maxLineSize for
// pathological symbol names.
const (
	scanBufferSize = 8 * 1024
	maxLineSize    = 1024 * 1024
)
