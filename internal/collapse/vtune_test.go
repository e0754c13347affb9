package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"
)

const vtuneBasic = `Function Stack,CPU Time:Self
main->run->compute,1200
main->run->idle,300.75
main->log,0
`

func TestVTuneBasic(t *testing.T) {
	got := collapseString(t, NewVTune(), vtuneBasic)
	expected := "main;run;compute 1200\nmain;run;idle 300\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestVTuneQuotedPaths(t *testing.T) {
	input := "Function Stack,CPU Time:Self\n\"operator new->malloc, tiny\",5\n"
	got := collapseString(t, NewVTune(), input)
	expected := "operator new;malloc, tiny 5\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestVTuneWrongColumnCountIsFatal(t *testing.T) {
	var sb strings.Builder
	err := NewVTune().Collapse(strings.NewReader("Function Stack,CPU Time:Self\nmain,1,extra\n"), &sb)
	if err == nil {
		t.Fatal("expected error for wrong column count")
	}
	if _, ok := err.(*MalformedInputError); !ok {
		t.Errorf("expected MalformedInputError, got %T", err)
	}
}

func TestVTuneBadSelfTimeIsFatal(t *testing.T) {
	var sb strings.Builder
	err := NewVTune().Collapse(strings.NewReader("Function Stack,CPU Time:Self\nmain,abc\n"), &sb)
	if err == nil {
		t.Fatal("expected error for non-numeric self time")
	}
}

func TestVTuneIsApplicable(t *testing.T) {
	if !NewVTune().IsApplicable([]byte(vtuneBasic)) {
		t.Error("vtune sniff rejected vtune input")
	}
	if !NewVTune().IsApplicable([]byte("a->b,12\n")) {
		t.Error("vtune sniff rejected headerless csv with arrow path")
	}
	if NewVTune().IsApplicable([]byte(perfBasic)) {
		t.Error("vtune sniff accepted perf input")
	}
	if NewVTune().IsApplicable([]byte("a;b 1\n")) {
		t.Error("vtune sniff accepted folded input")
	}
}
