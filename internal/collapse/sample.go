package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// SampleOptions controls folding of macOS `sample` call-graph output.
type SampleOptions struct {
	// NoModules strips the "(in <module>)" suffix from frame names.
	NoModules bool
}

// Sample folds the indentation-based call graph printed by macOS `sample`.
// Each line carries the subtree's sample count; a line is a leaf when the
// next line is at the same or a lesser depth.
type Sample struct {
	opts SampleOptions
}

func NewSample(opts SampleOptions) *Sample {
	return &Sample{opts: opts}
}

// sampleIndentChars are the characters `sample` uses to draw the call-graph tree.
// Two of them make up one depth level.
const sampleIndentChars = " +!:|"

func (c *Sample) Collapse(r io.Reader, w io.Writer) error {
	occ := NewOccurrences()
	var (
		stack     []string
		lastCount uint64
		lastDepth = -1
		inGraph   bool
	)
	flushLeaf := func() {
		if lastDepth >= 0 && len(stack) > 0 {
			occ.Add(strings.Join(stack, ";"), lastCount)
		}
		lastDepth = -1
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanBufferSize), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if !inGraph {
			inGraph = strings.HasPrefix(line, "Call graph")
			continue
		}
		if isBlank(line) || strings.HasPrefix(line, "Total number") {
			// End of the call graph section.
			break
		}
		depth, count, sym, ok := c.parseLine(line)
		if !ok {
			continue
		}
		if lastDepth >= 0 && depth <= lastDepth {
			// The previous line had no children: it was a leaf.
			occ.Add(strings.Join(stack, ";"), lastCount)
		}
		if depth-1 <= len(stack) {
			stack = stack[:depth-1]
		}
		stack = append(stack, sym)
		lastDepth = depth
		lastCount = count
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading sample output")
	}
	flushLeaf()
	_, err := occ.WriteTo(w)
	return err
}

// parseLine splits "<indent><count> <symbol>  (in <module>) + <off>  [<addr>]".
// Depth is derived from the indent width: the thread line sits at four
// columns, each level below adds two.
func (c *Sample) parseLine(line string) (depth int, count uint64, sym string, ok bool) {
	indent := 0
	for indent < len(line) && strings.IndexByte(sampleIndentChars, line[indent]) >= 0 {
		indent++
	}
	if indent < 4 || indent%2 != 0 {
		return 0, 0, "", false
	}
	depth = indent/2 - 1
	countTok, rest := cutFirstToken(line[indent:])
	if !isUint(countTok) || rest == "" {
		return 0, 0, "", false
	}
	count = parseUintSaturating(countTok)
	sym = rest
	// Trim the trailing return address and offset.
	if i := strings.LastIndex(sym, "  ["); i >= 0 && strings.HasSuffix(sym, "]") {
		sym = strings.TrimRight(sym[:i], " ")
	}
	if i := strings.LastIndex(sym, " + "); i >= 0 && isUint(sym[i+3:]) {
		sym = strings.TrimRight(sym[:i], " ")
	}
	if c.opts.NoModules {
		if i := strings.LastIndex(sym, "  (in "); i >= 0 && strings.HasSuffix(sym, ")") {
			sym = strings.TrimRight(sym[:i], " ")
		}
	}
	sym = strings.ReplaceAll(sym, ";", ":")
	if sym == "" {
		return 0, 0, "", false
	}
	return depth, count, sym, true
}

// IsApplicable looks for the "Call graph" section header that `sample` and
// the Instruments text exporter both emit.
func (c *Sample) IsApplicable(sample []byte) bool {
	return bytes.Contains(sample, []byte("Call graph")) ||
		bytes.Contains(sample, []byte("Analysis of sampling"))
}
