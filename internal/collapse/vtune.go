package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// VTune folds Intel VTune CSV exports. Each record holds a "->"-separated
// function path and a floating-point self time in microseconds.
type VTune struct{}

func NewVTune() *VTune {
	return &VTune{}
}

func (c *VTune) Collapse(r io.Reader, w io.Writer) error {
	occ := NewOccurrences()
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	warnedFractional := false
	lineNo := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "reading vtune csv")
		}
		lineNo++
		if lineNo == 1 && strings.HasPrefix(record[0], "Function Stack") {
			continue
		}
		if len(record) != 2 {
			return &MalformedInputError{Format: "vtune", Line: lineNo,
				Msg: "expected 2 columns, got " + strconv.Itoa(len(record))}
		}
		micros, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil || micros < 0 {
			return &MalformedInputError{Format: "vtune", Line: lineNo,
				Msg: "invalid self-time column: " + record[1]}
		}
		count := uint64(micros)
		if float64(count) != micros && !warnedFractional {
			warnedFractional = true
			slog.Warn("vtune self-time has fractional microseconds; truncating")
		}
		if count == 0 {
			continue
		}
		occ.Add(vtunePathToStack(record[0]), count)
	}
	_, err := occ.WriteTo(w)
	return err
}

// vtunePathToStack rewrites "a->b->c" into "a;b;c".
func vtunePathToStack(path string) string {
	parts := strings.Split(path, "->")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.TrimSpace(p), ";", ":")
	}
	return strings.Join(parts, ";")
}

// IsApplicable recognizes the VTune export header or a comma-separated
// record carrying a "->" function path.
func (c *VTune) IsApplicable(sample []byte) bool {
	for line := range strings.Lines(string(sample)) {
		line = strings.TrimRight(line, "\r\n")
		if isBlank(line) {
			continue
		}
		if strings.HasPrefix(line, "Function Stack") {
			return true
		}
		if i := strings.IndexByte(line, ','); i > 0 {
			return strings.Contains(line[:i], "->")
		}
		return false
	}
	return false
}
