package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"
)

const sampleBasic = `Analysis of sampling app (pid 999) every 1 millisecond
Call graph:
    2207 Thread_1
    + 2207 start  (in libdyld.dylib) + 1  [0x7fff685bd015]
    +   2000 main  (in app) + 28  [0x10a2dc0fc]
    +   200 helper  (in app) + 10  [0x10a2dc1f0]
    7 Thread_2
    + 7 worker  (in app) + 4  [0x10a2dd000]

Total number in stack (recursive counted multiple, when >=5):
`

func TestSampleBasic(t *testing.T) {
	got := collapseString(t, NewSample(SampleOptions{NoModules: true}), sampleBasic)
	expected := "Thread_1;start;helper 200\n" +
		"Thread_1;start;main 2000\n" +
		"Thread_2;worker 7\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSampleKeepsModulesByDefault(t *testing.T) {
	got := collapseString(t, NewSample(SampleOptions{}), sampleBasic)
	if !strings.Contains(got, "start  (in libdyld.dylib)") {
		t.Errorf("module suffix missing: %q", got)
	}
}

func TestSampleCountConservation(t *testing.T) {
	// leaves only: 2000 + 200 + 7
	got := collapseString(t, NewSample(SampleOptions{NoModules: true}), sampleBasic)
	var total uint64
	for line := range strings.Lines(got) {
		_, count, _, ok := SplitStackCount(strings.TrimRight(line, "\n"))
		if !ok {
			t.Fatalf("bad output line %q", line)
		}
		total += count
	}
	if total != 2207 {
		t.Errorf("expected 2207 leaf samples, got %d", total)
	}
}

func TestSampleIsApplicable(t *testing.T) {
	if !NewSample(SampleOptions{}).IsApplicable([]byte(sampleBasic)) {
		t.Error("sample sniff rejected sample input")
	}
	if NewSample(SampleOptions{}).IsApplicable([]byte(perfBasic)) {
		t.Error("sample sniff accepted perf input")
	}
}
