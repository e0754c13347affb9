package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"
)

func TestRecursiveCollapsesAdjacentRepeats(t *testing.T) {
	got := collapseString(t, NewRecursive(), "a;b;b;b;c 7\n")
	expected := "a;b;c 7\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestRecursiveMergesAfterCollapse(t *testing.T) {
	got := collapseString(t, NewRecursive(), "a;b;b 2\na;b 3\n")
	expected := "a;b 5\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestRecursiveIdempotence(t *testing.T) {
	canonical := "a;b;c 7\nx 1\ny;z 2\n"
	once := collapseString(t, NewRecursive(), canonical)
	twice := collapseString(t, NewRecursive(), once)
	if once != twice {
		t.Errorf("recursive collapse is not idempotent: %q vs %q", once, twice)
	}
	if once != canonical {
		t.Errorf("canonical input changed: %q", once)
	}
}

func TestRecursiveKeepsNonAdjacentRepeats(t *testing.T) {
	got := collapseString(t, NewRecursive(), "a;b;a 4\n")
	expected := "a;b;a 4\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestRecursiveMalformedLineIsFatal(t *testing.T) {
	var sb strings.Builder
	err := NewRecursive().Collapse(strings.NewReader("no count here\nand this\n"), &sb)
	if err == nil {
		t.Fatal("expected error for malformed folded line")
	}
}

func TestRecursiveIsApplicable(t *testing.T) {
	if !NewRecursive().IsApplicable([]byte("a;b 1\nc;d 2\n")) {
		t.Error("recursive sniff rejected folded input")
	}
	if NewRecursive().IsApplicable([]byte(perfBasic)) {
		t.Error("recursive sniff accepted perf input")
	}
}
