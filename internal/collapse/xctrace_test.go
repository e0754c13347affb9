package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"
)

const xctraceBasic = `<?xml version="1.0"?>
<trace-query-result>
<node>
<row sample-count="3">
<backtrace>
<frame name="compute"/>
<frame name="run"/>
<frame name="main"/>
</backtrace>
</row>
<row>
<backtrace>
<frame name="operator&lt;&lt;"/>
<frame name="main"/>
</backtrace>
</row>
</node>
</trace-query-result>
`

func TestXCTraceBasic(t *testing.T) {
	got := collapseString(t, NewXCTrace(), xctraceBasic)
	expected := "main;operator<< 1\nmain;run;compute 3\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestXCTraceMalformedXMLIsFatal(t *testing.T) {
	var sb strings.Builder
	err := NewXCTrace().Collapse(strings.NewReader("<trace-query-result><row>"), &sb)
	if err == nil {
		t.Fatal("expected error for truncated XML")
	}
	if _, ok := err.(*MalformedInputError); !ok {
		t.Errorf("expected MalformedInputError, got %T", err)
	}
}

func TestXCTraceIsApplicable(t *testing.T) {
	if !NewXCTrace().IsApplicable([]byte(xctraceBasic)) {
		t.Error("xctrace sniff rejected xctrace input")
	}
	if NewXCTrace().IsApplicable([]byte(perfBasic)) {
		t.Error("xctrace sniff accepted perf input")
	}
}
