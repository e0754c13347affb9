package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"flamegraph/internal/collapse"
)

// frameTree is an arena of frames addressed by index. Children are indices
// in insertion order, which reflects the order of first occurrence in the
// folded input. Index 0 is the synthetic root.
type frameTree struct {
	nodes []frameNode
	diff  bool
	// maxDelta is the largest |delta| across nodes, the scale for the
	// differential color ramp.
	maxDelta float64
}

type frameNode struct {
	name     string
	value    uint64
	delta    int64
	children []int
	// childIndex is nil in flamechart mode, where only adjacent identical
	// stacks merge.
	childIndex map[string]int
}

const rootIndex = 0

func newFrameTree() *frameTree {
	t := &frameTree{}
	t.nodes = append(t.nodes, frameNode{name: "root"})
	return t
}

func (t *frameTree) root() *frameNode {
	return &t.nodes[rootIndex]
}

// child finds or creates the named child, respecting flamechart mode's
// adjacent-only merging.
func (t *frameTree) child(parent int, name string, flamechart bool) int {
	p := &t.nodes[parent]
	if flamechart {
		if n := len(p.children); n > 0 {
			last := p.children[n-1]
			if t.nodes[last].name == name {
				return last
			}
		}
	} else {
		if p.childIndex == nil {
			p.childIndex = make(map[string]int)
		}
		if idx, ok := p.childIndex[name]; ok {
			return idx
		}
	}
	idx := len(t.nodes)
	t.nodes = append(t.nodes, frameNode{name: name})
	p = &t.nodes[parent] // re-take: append may have moved the arena
	p.children = append(p.children, idx)
	if !flamechart {
		p.childIndex[name] = idx
	}
	return idx
}

// insert adds one folded entry: value accumulates along the whole path so a
// node's value always equals the samples passing through it.
func (t *frameTree) insert(frames []string, value uint64, delta int64, flamechart bool) {
	node := rootIndex
	t.nodes[node].value += value
	t.nodes[node].delta += delta
	for _, name := range frames {
		node = t.child(node, name, flamechart)
		t.nodes[node].value += value
		t.nodes[node].delta += delta
	}
}

func (t *frameTree) computeMaxDelta() {
	for i := range t.nodes {
		d := t.nodes[i].delta
		if d < 0 {
			d = -d
		}
		if float64(d) > t.maxDelta {
			t.maxDelta = float64(d)
		}
	}
}

// buildTree parses folded input and builds the frame tree. Lines may carry a
// second count column (differential input); widths then follow the second
// profile and delta colors encode the difference.
func buildTree(r io.Reader, opts *Options) (*frameTree, error) {
	t := newFrameTree()
	warnedFractional := false
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 8*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		stack, count, count2, isDiff, fractional, ok := parseFoldedLine(line)
		if !ok {
			return nil, &collapse.MalformedInputError{Format: "folded", Line: lineNo,
				Msg: "expected \"stack count\" or \"stack count count\""}
		}
		if fractional && !warnedFractional {
			warnedFractional = true
			slog.Warn("folded input has fractional counts; truncating")
		}
		frames := strings.Split(stack, ";")
		for i, f := range frames {
			frames[i] = tidyName(f, opts.TidyGeneric)
		}
		if opts.ReverseStackOrder {
			for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
				frames[i], frames[j] = frames[j], frames[i]
			}
		}
		value := count
		var delta int64
		if isDiff {
			t.diff = true
			value = count2
			delta = int64(count2) - int64(count)
		}
		value = uint64(float64(value) * opts.Factor)
		t.insert(frames, value, delta, opts.Flamechart)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading folded input")
	}
	if t.diff {
		t.computeMaxDelta()
	}
	return t, nil
}

// parseFoldedLine strips the trailing count; if the remainder also ends in a
// count the line is differential ("stack before after").
func parseFoldedLine(line string) (stack string, count, count2 uint64, isDiff, fractional, ok bool) {
	stack, last, frac1, ok := collapse.SplitStackCount(line)
	if !ok {
		return "", 0, 0, false, false, false
	}
	if s2, first, frac2, ok2 := collapse.SplitStackCount(stack); ok2 && !endsInSeparator(s2) {
		return s2, first, last, true, frac1 || frac2, true
	}
	return stack, last, 0, false, frac1, true
}

// endsInSeparator guards against reading a last frame that is only digits
// after a space as a count: "a; 3 5" stays a single-count line of stack
// "a; 3" instead of becoming a differential of the empty-ended stack "a;".
func endsInSeparator(stack string) bool {
	return strings.HasSuffix(stack, ";")
}

// formatCount renders a count for tooltips.
func formatCount(v uint64) string {
	return strconv.FormatUint(v, 10)
}
