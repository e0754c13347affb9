// Package diff joins two folded profiles taken before and after a change
// into three-column differential folded output: "stack before after".
package diff

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"

	"github.com/pkg/errors"

	"flamegraph/internal/collapse"
)

// Options controls the merge.
type Options struct {
	// Normalize scales the first profile's counts so its total matches the
	// second profile's, making the two comparable when sample totals differ.
	Normalize bool
	// StripHex masks hex addresses inside frame names as "0x..." before
	// joining, so addresses that differ between runs do not split entries.
	StripHex bool
}

type counts struct {
	first  uint64
	second uint64
}

var hexRun = regexp.MustCompile(`0x[0-9a-fA-F]+`)

// Folded merges the two folded streams and writes differential output.
// Stacks present in only one input get a zero in the missing column.
func Folded(before, after io.Reader, w io.Writer, opts Options) error {
	merged := make(map[string]*counts)
	warnedFractional := false
	load := func(r io.Reader, label string, assign func(*counts, uint64)) error {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 8*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if line == "" {
				continue
			}
			stack, count, fractional, ok := collapse.SplitStackCount(line)
			if !ok {
				return &collapse.MalformedInputError{Format: "folded", Line: lineNo,
					Msg: "expected \"stack count\""}
			}
			if fractional && !warnedFractional {
				warnedFractional = true
				slog.Warn("folded input has fractional counts; truncating")
			}
			if opts.StripHex {
				stack = hexRun.ReplaceAllString(stack, "0x...")
			}
			c := merged[stack]
			if c == nil {
				c = &counts{}
				merged[stack] = c
			}
			assign(c, count)
		}
		return errors.Wrapf(scanner.Err(), "reading %s profile", label)
	}
	if err := load(before, "before", func(c *counts, n uint64) { c.first += n }); err != nil {
		return err
	}
	if err := load(after, "after", func(c *counts, n uint64) { c.second += n }); err != nil {
		return err
	}

	if opts.Normalize {
		normalize(merged)
	}

	stacks := make([]string, 0, len(merged))
	for stack := range merged {
		stacks = append(stacks, stack)
	}
	sort.Strings(stacks)
	bw := bufio.NewWriter(w)
	for _, stack := range stacks {
		c := merged[stack]
		if _, err := fmt.Fprintf(bw, "%s %d %d\n", stack, c.first, c.second); err != nil {
			return errors.Wrap(err, "writing differential output")
		}
	}
	return bw.Flush()
}

// normalize scales every first count by total2/total1. Integer truncation
// per row means the scaled total can undershoot by at most one per row.
func normalize(merged map[string]*counts) {
	var total1, total2 uint64
	for _, c := range merged {
		total1 += c.first
		total2 += c.second
	}
	if total1 == 0 || total1 == total2 {
		return
	}
	ratio := float64(total2) / float64(total1)
	for _, c := range merged {
		c.first = uint64(float64(c.first) * ratio)
	}
}
