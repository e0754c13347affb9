package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"
)

const dtraceBasic = `dtrace: description 'profile-97 ' matched 1 probe

              app` + "`" + `do_work+0x70
              app` + "`" + `main+0x14
              app` + "`" + `_start
                12

              genunix` + "`" + `cv_wait+0x70
              unix` + "`" + `thread_start+0x8
                 3

`

func TestDtraceBasic(t *testing.T) {
	got := collapseString(t, NewDtrace(DtraceOptions{}), dtraceBasic)
	expected := "_start;main;do_work 12\nthread_start;cv_wait 3\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDtraceKernelAnnotation(t *testing.T) {
	got := collapseString(t, NewDtrace(DtraceOptions{AnnotateKernel: true}), dtraceBasic)
	if !strings.Contains(got, "thread_start_[k];cv_wait_[k] 3") {
		t.Errorf("kernel frames not annotated: %q", got)
	}
	if strings.Contains(got, "main_[k]") {
		t.Errorf("user frames must not be annotated: %q", got)
	}
}

func TestDtraceKernelModuleSuffix(t *testing.T) {
	input := "              nvme.ko`nvme_irq+0x10\n                 2\n"
	got := collapseString(t, NewDtrace(DtraceOptions{AnnotateKernel: true}), input)
	expected := "nvme_irq_[k] 2\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDtraceMergesIdenticalStacks(t *testing.T) {
	block := "              app`main\n                 2\n"
	got := collapseString(t, NewDtrace(DtraceOptions{}), block+block)
	expected := "main 4\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDtraceRawAddressFrame(t *testing.T) {
	input := "              0x7f2a00000010\n              app`main\n                 1\n"
	got := collapseString(t, NewDtrace(DtraceOptions{}), input)
	expected := "main;0x7f2a00000010 1\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDtraceCommFromBegin(t *testing.T) {
	input := "dtrace:::BEGIN myapp\n              app`main\n                 5\n"
	got := collapseString(t, NewDtrace(DtraceOptions{IncludePName: true}), input)
	expected := "myapp;main 5\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDtraceUnterminatedBlockIsFatal(t *testing.T) {
	var sb strings.Builder
	err := NewDtrace(DtraceOptions{}).Collapse(strings.NewReader("              app`main\n"), &sb)
	if err == nil {
		t.Fatal("expected error for unterminated stack block")
	}
	if _, ok := err.(*MalformedInputError); !ok {
		t.Errorf("expected MalformedInputError, got %T", err)
	}
}

func TestDtraceIsApplicable(t *testing.T) {
	if !NewDtrace(DtraceOptions{}).IsApplicable([]byte(dtraceBasic)) {
		t.Error("dtrace sniff rejected dtrace input")
	}
	if NewDtrace(DtraceOptions{}).IsApplicable([]byte(perfBasic)) {
		t.Error("dtrace sniff accepted perf input")
	}
}
