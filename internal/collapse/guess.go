package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// sniffSize bounds the prefix the guess collapser buffers before deciding.
const sniffSize = 64 * 1024

// candidate pairs a collapser with the format name reported on failure.
type candidate struct {
	name string
	c    Collapser
}

// Guess autodetects the input format and delegates to the first collapser
// whose sniff accepts it. Ordering matters: the distinctive formats (XML,
// CSV) are tried before the looser line-oriented ones, and already-folded
// input is the fallback.
type Guess struct {
	candidates []candidate
}

// NewGuess builds a guess collapser over the concrete collapsers. The perf
// options are threaded through so detection and folding agree.
func NewGuess(perfOpts PerfOptions, dtraceOpts DtraceOptions, sampleOpts SampleOptions) *Guess {
	return &Guess{candidates: []candidate{
		{"xctrace", NewXCTrace()},
		{"vtune", NewVTune()},
		{"perf", NewPerf(perfOpts)},
		{"dtrace", NewDtrace(dtraceOpts)},
		{"sample", NewSample(sampleOpts)},
		{"recursive", NewRecursive()},
	}}
}

func (g *Guess) Collapse(r io.Reader, w io.Writer) error {
	sniff := make([]byte, sniffSize)
	n, err := io.ReadFull(r, sniff)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errors.Wrap(err, "reading input prefix")
	}
	sniff = sniff[:n]
	tried := mapset.NewThreadUnsafeSet[string]()
	for _, cand := range g.candidates {
		tried.Add(cand.name)
		if !cand.c.IsApplicable(sniff) {
			continue
		}
		slog.Debug("detected profile format", slog.String("format", cand.name))
		// The chosen collapser must see the sniffed prefix again.
		return cand.c.Collapse(io.MultiReader(bytes.NewReader(sniff), r), w)
	}
	formats := tried.ToSlice()
	slog.Debug("no collapser matched", slog.String("tried", strings.Join(formats, ",")))
	return ErrUnknownFormat
}

func (g *Guess) IsApplicable(sample []byte) bool {
	for _, cand := range g.candidates {
		if cand.c.IsApplicable(sample) {
			return true
		}
	}
	return false
}
