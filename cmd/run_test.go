package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"testing"
)

func TestParseFactor(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		wantErr  bool
	}{
		{"1", 1, false},
		{"0.5", 0.5, false},
		{"1000/997", 1000.0 / 997.0, false},
		{"2*3", 6, false},
		{"not a number", 0, true},
	}
	for _, test := range tests {
		got, err := parseFactor(test.in)
		if test.wantErr {
			if err == nil {
				t.Errorf("parseFactor(%q): expected error", test.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseFactor(%q): unexpected error %v", test.in, err)
			continue
		}
		if got != test.expected {
			t.Errorf("parseFactor(%q) = %v, expected %v", test.in, got, test.expected)
		}
	}
}

func TestNewCollapserHonorsFormat(t *testing.T) {
	orig := flagFormat
	defer func() { flagFormat = orig }()
	expected := map[string]string{
		"perf":      "*collapse.Perf",
		"dtrace":    "*collapse.Dtrace",
		"sample":    "*collapse.Sample",
		"vtune":     "*collapse.VTune",
		"xctrace":   "*collapse.XCTrace",
		"recursive": "*collapse.Recursive",
		"guess":     "*collapse.Guess",
	}
	for _, format := range formatOptions {
		flagFormat = format
		c := newCollapser()
		if c == nil {
			t.Errorf("no collapser for format %q", format)
			continue
		}
		if got := fmt.Sprintf("%T", c); got != expected[format] {
			t.Errorf("format %q: got collapser %s, expected %s", format, got, expected[format])
		}
	}
}
