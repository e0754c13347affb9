package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// DtraceOptions controls folding of DTrace ustack()/stack() aggregate output.
type DtraceOptions struct {
	// IncludePName prepends the process name when one was announced by the
	// script's BEGIN clause.
	IncludePName bool
	// AnnotateKernel appends "_[k]" to kernel frames.
	AnnotateKernel bool
	// IncludeOffsets keeps "+0x..." instruction offsets on frames.
	IncludeOffsets bool
}

// Dtrace folds DTrace aggregation output: blocks of symbol lines (leaf
// first), an optional blank line, then an indented integer count.
type Dtrace struct {
	opts DtraceOptions
}

func NewDtrace(opts DtraceOptions) *Dtrace {
	return &Dtrace{opts: opts}
}

// kernelModules lists module names DTrace reports for kernel code on
// illumos/Solaris derivatives. Loadable modules end in ".ko".
var kernelModules = map[string]bool{
	"unix": true, "genunix": true, "specfs": true, "dtrace": true,
	"ufs": true, "zfs": true, "procfs": true, "sockfs": true,
	"ip": true, "tcp": true, "udp": true, "hook": true, "mac": true,
}

func (c *Dtrace) Collapse(r io.Reader, w io.Writer) error {
	occ := NewOccurrences()
	var (
		stack []string // leaf-first
		comm  string
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanBufferSize), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.HasPrefix(line, "dtrace:") {
			// Runtime chatter, e.g. "dtrace: description '...' matched 1
			// probe". A BEGIN announcement may carry the traced command.
			if i := strings.Index(line, ":::BEGIN"); i >= 0 {
				if name := strings.TrimSpace(line[i+len(":::BEGIN"):]); name != "" {
					comm = strings.ReplaceAll(name, " ", "_")
				}
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Blank lines may separate a stack from its count.
			continue
		}
		if isUint(trimmed) && startsIndented(line) {
			count := parseUintSaturating(trimmed)
			c.flush(occ, stack, comm, count)
			stack = stack[:0]
			continue
		}
		sym, ok := c.symbol(trimmed)
		if !ok {
			if len(stack) > 0 {
				return &MalformedInputError{Format: "dtrace", Line: lineNo,
					Msg: "stack block not terminated by a count"}
			}
			continue
		}
		stack = append(stack, sym)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading dtrace output")
	}
	if len(stack) > 0 {
		return &MalformedInputError{Format: "dtrace", Msg: "unterminated stack block at EOF"}
	}
	_, err := occ.WriteTo(w)
	return err
}

// symbol parses one stack frame: "module`function+0x1a", a bare function
// name, or a raw hex address.
func (c *Dtrace) symbol(s string) (string, bool) {
	module, sym, hasModule := strings.Cut(s, "`")
	if !hasModule {
		sym = s
		module = ""
	}
	if !c.opts.IncludeOffsets {
		sym = stripOffset(sym)
	}
	if sym == "" {
		sym = module
	}
	if sym == "" || strings.ContainsAny(sym, " \t") && !hasModule && !isHex(sym) {
		return "", false
	}
	sym = strings.ReplaceAll(sym, ";", ":")
	if c.opts.AnnotateKernel && isKernelModule(module) {
		sym += "_[k]"
	}
	return sym, true
}

func isKernelModule(module string) bool {
	return kernelModules[module] || strings.HasSuffix(module, ".ko")
}

func (c *Dtrace) flush(occ *Occurrences, stack []string, comm string, count uint64) {
	if len(stack) == 0 || count == 0 {
		return
	}
	var sb strings.Builder
	if c.opts.IncludePName && comm != "" {
		sb.WriteString(comm)
		sb.WriteByte(';')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteString(stack[i])
		if i > 0 {
			sb.WriteByte(';')
		}
	}
	occ.Add(sb.String(), count)
}

// IsApplicable looks for an indented symbol line followed by an indented
// pure-integer count line.
func (c *Dtrace) IsApplicable(sample []byte) bool {
	sawSymbol := false
	for line := range strings.Lines(string(sample)) {
		line = strings.TrimRight(line, "\r\n")
		if !startsIndented(line) || isBlank(line) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if isUint(trimmed) {
			if sawSymbol {
				return true
			}
			continue
		}
		if strings.ContainsRune(trimmed, '`') || isHex(trimmed) {
			sawSymbol = true
		}
	}
	return false
}
