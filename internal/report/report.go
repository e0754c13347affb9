// Package report writes per-function aggregate tables derived from folded
// stacks, as plain text or as a spreadsheet.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"flamegraph/internal/collapse"
)

// Entry aggregates one function across every stack it appears in. Self
// counts samples where the function is the leaf; Total counts samples of
// every stack containing it (once per stack, recursion included).
type Entry struct {
	Name  string
	Self  uint64
	Total uint64
}

// FromFolded aggregates folded input into per-function entries, ordered by
// Self descending, Total descending, then name.
func FromFolded(r io.Reader) ([]Entry, error) {
	type agg struct {
		self  uint64
		total uint64
	}
	byName := make(map[string]*agg)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 8*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		stack, count, _, ok := collapse.SplitStackCount(line)
		if !ok {
			return nil, &collapse.MalformedInputError{Format: "folded", Line: lineNo,
				Msg: "expected \"stack count\""}
		}
		frames := strings.Split(stack, ";")
		seen := make(map[string]bool, len(frames))
		for i, f := range frames {
			a := byName[f]
			if a == nil {
				a = &agg{}
				byName[f] = a
			}
			if !seen[f] {
				a.total += count
				seen[f] = true
			}
			if i == len(frames)-1 {
				a.self += count
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading folded input")
	}
	entries := make([]Entry, 0, len(byName))
	for name, a := range byName {
		entries = append(entries, Entry{Name: name, Self: a.self, Total: a.total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Self != entries[j].Self {
			return entries[i].Self > entries[j].Self
		}
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func writeWholeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
