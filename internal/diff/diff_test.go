package diff

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"
)

func diffString(t *testing.T, before, after string, opts Options) string {
	t.Helper()
	var sb strings.Builder
	if err := Folded(strings.NewReader(before), strings.NewReader(after), &sb, opts); err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	return sb.String()
}

func TestDiffBothColumnsAlwaysPresent(t *testing.T) {
	got := diffString(t, "a;b 3\n", "a;b 5\nc 2\n", Options{})
	expected := "a;b 3 5\nc 0 2\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDiffSymmetry(t *testing.T) {
	before := "a 10\nb 5\n"
	after := "a 7\nc 2\n"
	ab := diffString(t, before, after, Options{})
	ba := diffString(t, after, before, Options{})
	// swapping the inputs swaps the two count columns
	var swapped strings.Builder
	for line := range strings.Lines(ba) {
		line = strings.TrimRight(line, "\n")
		fields := strings.Fields(line)
		stack := strings.Join(fields[:len(fields)-2], " ")
		swapped.WriteString(stack + " " + fields[len(fields)-1] + " " + fields[len(fields)-2] + "\n")
	}
	if ab != swapped.String() {
		t.Errorf("diff(A,B) != column-swapped diff(B,A):\n%q\n%q", ab, swapped.String())
	}
}

func TestDiffNormalize(t *testing.T) {
	got := diffString(t, "a 100\nb 50\n", "a 200\n", Options{Normalize: true})
	expected := "a 133 200\nb 66 0\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDiffNormalizeTotalsMatchWithinRounding(t *testing.T) {
	before := "a 33\nb 33\nc 34\n"
	after := "a 10\nb 10\nc 13\n"
	got := diffString(t, before, after, Options{Normalize: true})
	var t1, t2 uint64
	rows := 0
	for line := range strings.Lines(got) {
		fields := strings.Fields(strings.TrimRight(line, "\n"))
		if len(fields) < 3 {
			continue
		}
		t1 += parseU(t, fields[len(fields)-2])
		t2 += parseU(t, fields[len(fields)-1])
		rows++
	}
	if t1 > t2 || t2-t1 > uint64(rows) {
		t.Errorf("normalized totals differ by more than row count: %d vs %d", t1, t2)
	}
}

func parseU(t *testing.T, s string) uint64 {
	t.Helper()
	var v uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			t.Fatalf("not a count: %q", s)
		}
		v = v*10 + uint64(s[i]-'0')
	}
	return v
}

func TestDiffStripHexJoins(t *testing.T) {
	got := diffString(t, "foo;0x7f00abcd 3\n", "foo;0x7f00ef12 5\n", Options{StripHex: true})
	expected := "foo;0x... 3 5\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDiffStripHexSumsWithinOneInput(t *testing.T) {
	got := diffString(t, "foo;0xaa 3\nfoo;0xbb 4\n", "", Options{StripHex: true})
	expected := "foo;0x... 7 0\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDiffMalformedLineIsFatal(t *testing.T) {
	var sb strings.Builder
	err := Folded(strings.NewReader("not folded\n"), strings.NewReader(""), &sb, Options{})
	if err == nil {
		t.Fatal("expected error for malformed folded input")
	}
}
