package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ianlancetaylor/demangle"
	"github.com/pkg/errors"
)

// PerfOptions controls how `perf script` output is folded.
type PerfOptions struct {
	// IncludePName prepends the process name to each stack.
	IncludePName bool
	// IncludePID prepends "comm-pid" instead of "comm". IncludeTID prepends
	// "comm-pid/tid". TID wins when both are set.
	IncludePID bool
	IncludeTID bool
	// IncludeAddrs substitutes the sampled address for "[unknown]" frames.
	IncludeAddrs bool
	// AnnotateKernel appends "_[k]" to kernel frames, AnnotateJIT "_[j]" to
	// JIT frames.
	AnnotateKernel bool
	AnnotateJIT    bool
	// Demangle rewrites mangled C++ symbols into readable form.
	Demangle bool
	// TidyGeneric cleans up function names: argument lists are stripped
	// (except the anonymous-namespace marker) and stray quotes removed.
	TidyGeneric bool
	// EventFilter restricts folding to one perf event. When empty, the first
	// event seen is adopted.
	EventFilter string
	// SkipAfter drops a matched frame and everything rootward of it.
	SkipAfter []string
}

// DefaultPerfOptions matches the conventional stackcollapse behavior:
// process names are included and names are tidied, nothing else.
func DefaultPerfOptions() PerfOptions {
	return PerfOptions{IncludePName: true, TidyGeneric: true}
}

// Perf folds the line-oriented output of `perf script`.
type Perf struct {
	opts PerfOptions
}

func NewPerf(opts PerfOptions) *Perf {
	return &Perf{opts: opts}
}

// perfState tracks one Collapse invocation. Samples arrive as an event
// header line, frame lines (leaf first), and a terminating blank line.
type perfState struct {
	opts PerfOptions
	occ  *Occurrences

	eventFilter string
	comm        string
	pid         string
	tid         string

	// stack holds the current sample's frames in input (leaf-first) order.
	stack     []string
	inSample  bool
	skipStack bool

	skippedEvents mapset.Set[string]
}

func (c *Perf) Collapse(r io.Reader, w io.Writer) error {
	s := &perfState{
		opts:          c.opts,
		occ:           NewOccurrences(),
		eventFilter:   c.opts.EventFilter,
		skippedEvents: mapset.NewThreadUnsafeSet[string](),
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanBufferSize), maxLineSize)
	for scanner.Scan() {
		s.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading perf script output")
	}
	s.flush()
	if s.skippedEvents.Cardinality() > 0 {
		slog.Warn("skipped samples with non-matching events",
			slog.String("filter", s.eventFilter),
			slog.String("events", strings.Join(s.skippedEvents.ToSlice(), ",")))
	}
	_, err := s.occ.WriteTo(w)
	return err
}

func (s *perfState) line(line string) {
	if isBlank(line) {
		s.flush()
		return
	}
	if strings.HasPrefix(line, "#") {
		s.comment(line)
		return
	}
	if startsIndented(line) {
		if s.inSample && !s.skipStack {
			s.frame(line)
		}
		return
	}
	// A non-indented, non-comment line starts a new sample.
	s.flush()
	s.eventHeader(line)
}

// comment handles `perf script --header` comment lines. The profiled command
// is recovered from the cmdline record.
func (s *perfState) comment(line string) {
	rest, ok := strings.CutPrefix(line, "# cmdline : ")
	if !ok {
		return
	}
	for tok := range strings.FieldsSeq(rest) {
		if strings.HasPrefix(tok, "-") {
			continue
		}
		s.comm = strings.ReplaceAll(filepath.Base(tok), " ", "_")
		return
	}
}

// eventHeader parses a line of the shape
//
//	comm pid/tid [cpu] timestamp: [period] event-name:
//
// The cpu, tid, and period fields are optional; comm may contain spaces.
func (s *perfState) eventHeader(line string) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return
	}
	last := fields[len(fields)-1]
	if !strings.HasSuffix(last, ":") {
		return
	}
	event := strings.TrimSuffix(last, ":")
	// Find the pid (or pid/tid) field; everything before it is the comm.
	pidIdx := -1
	for i := 1; i < len(fields); i++ {
		if pid, tid, ok := splitPidTid(fields[i]); ok {
			s.pid, s.tid = pid, tid
			pidIdx = i
			break
		}
	}
	if pidIdx < 1 {
		return
	}
	s.comm = strings.ReplaceAll(strings.Join(fields[:pidIdx], " "), " ", "_")
	s.inSample = true
	s.stack = s.stack[:0]
	s.skipStack = false
	if s.eventFilter == "" {
		s.eventFilter = event
	} else if event != s.eventFilter {
		s.skipStack = true
		s.skippedEvents.Add(event)
	}
}

func splitPidTid(tok string) (pid, tid string, ok bool) {
	if pid, tid, found := strings.Cut(tok, "/"); found {
		if isUint(pid) && isUint(tid) {
			return pid, tid, true
		}
		return "", "", false
	}
	if isUint(tok) {
		return tok, tok, true
	}
	return "", "", false
}

// frame parses one stack line:
//
//	ffffffff8104f45a native_write_msr_safe+0xa ([kernel.kallsyms])
func (s *perfState) frame(line string) {
	addr, rest := cutFirstToken(line)
	if rest == "" {
		return
	}
	sym := strings.TrimRight(rest, " \t")
	var module string
	if strings.HasSuffix(sym, ")") {
		if i := strings.LastIndex(sym, " ("); i >= 0 {
			module = sym[i+2 : len(sym)-1]
			sym = strings.TrimRight(sym[:i], " \t")
		}
	}
	sym = stripOffset(sym)
	kernel := strings.Contains(module, "[kernel") || strings.Contains(module, "[unknown")
	jit := strings.HasSuffix(module, ".js") || strings.HasSuffix(module, ".ts") ||
		strings.HasSuffix(module, ".mjs") || strings.Contains(module, "jitted-") ||
		strings.Contains(module, "/tmp/perf-")
	if sym == "[unknown]" && s.opts.IncludeAddrs {
		if strings.HasPrefix(addr, "0x") {
			sym = addr
		} else {
			sym = "0x" + addr
		}
	}
	// Inlined frames arrive joined with "->"; all but the innermost get the
	// inline annotation.
	for i, name := range strings.Split(sym, "->") {
		name = s.tidySymbol(name)
		if name == "" {
			continue
		}
		if i > 0 && !strings.HasSuffix(name, "_[i]") {
			name += "_[i]"
		} else if kernel && s.opts.AnnotateKernel {
			name += "_[k]"
		} else if jit && s.opts.AnnotateJIT {
			name += "_[j]"
		}
		s.stack = append(s.stack, name)
	}
}

// tidySymbol canonicalizes a raw symbol. Semicolons are reserved as the
// frame separator and must never survive into a frame name.
func (s *perfState) tidySymbol(sym string) string {
	if s.opts.Demangle && strings.HasPrefix(sym, "_Z") {
		sym = demangle.Filter(sym, demangle.NoParams, demangle.NoTemplateParams)
	}
	sym = strings.ReplaceAll(sym, ";", ":")
	if s.opts.TidyGeneric {
		// Go method symbols look like "pkg.(*Type).Method"; their parens
		// are not argument lists.
		if !isGoMethod(sym) {
			sym = stripParenArgs(sym)
		}
		sym = strings.ReplaceAll(sym, "\"", "")
		sym = strings.ReplaceAll(sym, "'", "")
	}
	return strings.TrimSpace(sym)
}

func isGoMethod(sym string) bool {
	i := strings.Index(sym, ".(")
	return i >= 0 && strings.Contains(sym[i:], ").")
}

// stripParenArgs removes everything from the first '(' on, unless it opens
// an anonymous-namespace marker.
func stripParenArgs(sym string) string {
	i := strings.IndexByte(sym, '(')
	if i < 0 || strings.HasPrefix(sym[i:], "(anonymous namespace") {
		return sym
	}
	return sym[:i]
}

// flush records the pending sample, if any. Frames were collected leaf-first
// and are emitted root-first.
func (s *perfState) flush() {
	if !s.inSample {
		return
	}
	s.inSample = false
	if s.skipStack || len(s.stack) == 0 {
		s.stack = s.stack[:0]
		return
	}
	stack := s.stack
	// skip_after: drop the rootmost matching frame and everything rootward
	// of it. Frames are leaf-first here, so the rootmost match has the
	// highest index.
	if len(s.opts.SkipAfter) > 0 {
		for i := len(stack) - 1; i >= 0; i-- {
			if matchesAny(stack[i], s.opts.SkipAfter) {
				stack = stack[:i]
				break
			}
		}
		if len(stack) == 0 {
			s.stack = s.stack[:0]
			return
		}
	}
	var sb strings.Builder
	if prefix := s.prefix(); prefix != "" {
		sb.WriteString(prefix)
		sb.WriteByte(';')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteString(stack[i])
		if i > 0 {
			sb.WriteByte(';')
		}
	}
	s.occ.Add(sb.String(), 1)
	s.stack = s.stack[:0]
}

func (s *perfState) prefix() string {
	comm := s.comm
	if comm == "" {
		comm = "[unknown]"
	}
	switch {
	case s.opts.IncludeTID:
		return comm + "-" + s.pid + "/" + s.tid
	case s.opts.IncludePID:
		return comm + "-" + s.pid
	case s.opts.IncludePName:
		return comm
	}
	return ""
}

func matchesAny(sym string, patterns []string) bool {
	for _, p := range patterns {
		if sym == p {
			return true
		}
	}
	return false
}

// IsApplicable looks for an event header line followed by an indented frame
// line whose first token is an address.
func (c *Perf) IsApplicable(sample []byte) bool {
	sawHeader := false
	for line := range strings.Lines(string(sample)) {
		line = strings.TrimRight(line, "\r\n")
		if isBlank(line) || strings.HasPrefix(line, "#") {
			continue
		}
		if !startsIndented(line) {
			fields := strings.Fields(line)
			sawHeader = len(fields) >= 3 && strings.HasSuffix(fields[len(fields)-1], ":")
			continue
		}
		if sawHeader {
			tok, rest := cutFirstToken(line)
			if isHex(tok) && rest != "" {
				return true
			}
		}
	}
	return false
}
