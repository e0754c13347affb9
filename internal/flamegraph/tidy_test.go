package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "testing"

func TestTidyName(t *testing.T) {
	tests := []struct {
		in       string
		generic  bool
		expected string
	}{
		{"func+0x1a", false, "func"},
		{"func+0xZZ", false, "func+0xZZ"},
		{"(anonymous namespace)::helper", false, "helper"},
		{"vec<int>::push_back", true, "vec<>::push_back"},
		{"vec<int>::push_back", false, "vec<int>::push_back"},
		{"map<pair<int,int>,string>", true, "map<>"},
		{"operator<", true, "operator<"},
		{"unbalanced<pair", true, "unbalanced<pair"},
		{"<built-in method>", true, "<built-in method>"},
	}
	for _, test := range tests {
		if got := tidyName(test.in, test.generic); got != test.expected {
			t.Errorf("tidyName(%q, %v) = %q, expected %q", test.in, test.generic, got, test.expected)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	if got := escapeXML(`a<b>&"c"`); got != "a&lt;b&gt;&amp;&quot;c&quot;" {
		t.Errorf("unexpected escape: %q", got)
	}
	if got := escapeXML("plain"); got != "plain" {
		t.Errorf("plain text must pass through, got %q", got)
	}
}

func TestFitLabel(t *testing.T) {
	opts := DefaultOptions()
	// 12px font * 0.59 width: about 7 px per character
	if got := fitLabel("main", 1000, &opts); got != "main" {
		t.Errorf("wide frame must keep the whole label, got %q", got)
	}
	if got := fitLabel("averyveryverylongfunctionname", 70, &opts); got == "averyveryverylongfunctionname" || got == "" {
		t.Errorf("mid-width frame must truncate, got %q", got)
	}
	// default keeps the rightmost characters
	got := fitLabel("abcdefghij", 7*7.08, &opts)
	if len(got) == 0 || got[:2] != ".." {
		t.Errorf("expected leading .., got %q", got)
	}
	if got := fitLabel("main", 10, &opts); got != "" {
		t.Errorf("tiny frame must drop the label, got %q", got)
	}
	opts.TruncateText = TruncateRight
	got = fitLabel("abcdefghij", 7*7.08, &opts)
	if len(got) == 0 || got[len(got)-2:] != ".." {
		t.Errorf("expected trailing .., got %q", got)
	}
}
