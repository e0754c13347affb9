package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// XCTrace folds the XML exported by `xctrace export`. Each <row> holds a
// <backtrace> whose <frame> children run leaf to root; the row's
// sample-count attribute weights the stack.
type XCTrace struct{}

func NewXCTrace() *XCTrace {
	return &XCTrace{}
}

func (c *XCTrace) Collapse(r io.Reader, w io.Writer) error {
	occ := NewOccurrences()
	dec := xml.NewDecoder(r)
	var (
		rowWeight   uint64 = 1
		inBacktrace bool
		frames      []string // leaf-first, entity references already decoded
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &MalformedInputError{Format: "xctrace",
				Msg: fmt.Sprintf("at byte %d: %v", dec.InputOffset(), err)}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				rowWeight = 1
				for _, attr := range t.Attr {
					if attr.Name.Local == "sample-count" && isUint(attr.Value) {
						rowWeight = parseUintSaturating(attr.Value)
					}
				}
			case "backtrace":
				inBacktrace = true
				frames = frames[:0]
			case "frame":
				if !inBacktrace {
					continue
				}
				for _, attr := range t.Attr {
					if attr.Name.Local == "name" && attr.Value != "" {
						frames = append(frames, strings.ReplaceAll(attr.Value, ";", ":"))
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "backtrace" {
				inBacktrace = false
				if len(frames) > 0 {
					var sb strings.Builder
					for i := len(frames) - 1; i >= 0; i-- {
						sb.WriteString(frames[i])
						if i > 0 {
							sb.WriteByte(';')
						}
					}
					occ.Add(sb.String(), rowWeight)
				}
			}
		}
	}
	_, err := occ.WriteTo(w)
	return err
}

func (c *XCTrace) IsApplicable(sample []byte) bool {
	if bytes.Contains(sample, []byte("<backtrace")) {
		return true
	}
	trimmed := bytes.TrimLeft(sample, " \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("<?xml")) &&
		bytes.Contains(sample, []byte("trace-query-result"))
}
