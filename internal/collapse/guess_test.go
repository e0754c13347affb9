package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuess() *Guess {
	return NewGuess(DefaultPerfOptions(), DtraceOptions{}, SampleOptions{})
}

func TestGuessDispatchesPerFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"perf", perfBasic, "app;funcB;funcA 2"},
		{"dtrace", dtraceBasic, "_start;main;do_work 12"},
		{"sample", sampleBasic, "Thread_1;start"},
		{"vtune", vtuneBasic, "main;run;compute 1200"},
		{"xctrace", xctraceBasic, "main;run;compute 3"},
		{"recursive", "a;b;b 4\n", "a;b 4"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var sb strings.Builder
			err := newTestGuess().Collapse(strings.NewReader(test.input), &sb)
			require.NoError(t, err)
			assert.Contains(t, sb.String(), test.contains)
		})
	}
}

func TestGuessUnknownFormat(t *testing.T) {
	var sb strings.Builder
	err := newTestGuess().Collapse(strings.NewReader("complete nonsense\nmore nonsense\n"), &sb)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestGuessSeesFullInputAfterSniff(t *testing.T) {
	// Build an input longer than the sniff buffer so the chosen collapser
	// must receive the prefix plus the remainder.
	var b strings.Builder
	for len(b.String()) < sniffSize {
		b.WriteString("deep;stack;frames 1\n")
	}
	b.WriteString("tail;marker 9\n")
	var sb strings.Builder
	err := newTestGuess().Collapse(strings.NewReader(b.String()), &sb)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "tail;marker 9")
}
