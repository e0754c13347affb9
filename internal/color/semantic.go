package color

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "strings"

// Semantic classifiers map a frame name to a basic palette. They are pure
// functions of the name; annotation suffixes added by the collapsers
// ("_[k]" kernel, "_[j]" JIT, "_[i]" inlined) take precedence.

func classifyJava(name string) Basic {
	switch {
	case strings.HasSuffix(name, "_[k]"):
		return Orange
	case strings.HasSuffix(name, "_[i]"):
		return Aqua
	case strings.HasSuffix(name, "_[j]"):
		return Green
	case strings.Contains(name, "::"), strings.HasPrefix(name, "-["), strings.HasPrefix(name, "+["):
		// C++ or Objective-C
		return Yellow
	}
	java := strings.TrimPrefix(name, "L")
	if strings.ContainsRune(java, '/') ||
		(strings.ContainsRune(java, '.') && !strings.HasPrefix(java, "[")) {
		return Green
	}
	if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
		return Green
	}
	return Red
}

func classifyPerl(name string) Basic {
	switch {
	case strings.HasSuffix(name, "_[k]"):
		return Orange
	case strings.Contains(name, "Perl"), strings.Contains(name, ".pl"):
		return Green
	case strings.Contains(name, "::"):
		return Yellow
	}
	return Red
}

func classifyPython(name string) Basic {
	switch {
	case strings.Contains(name, "site-packages"):
		return Aqua
	case strings.Contains(name, "python"), strings.Contains(name, "Python"),
		strings.HasPrefix(name, "<built-in"), strings.HasPrefix(name, "<method"),
		strings.HasPrefix(name, "<frozen"):
		return Yellow
	}
	return Red
}

func classifyJS(name string) Basic {
	switch {
	case strings.TrimSpace(name) == "":
		return Green
	case strings.HasSuffix(name, "_[k]"):
		return Orange
	case strings.HasSuffix(name, "_[j]"):
		if strings.ContainsRune(name, '/') {
			return Green
		}
		return Aqua
	case strings.Contains(name, "::"):
		return Yellow
	case strings.ContainsRune(name, ':'):
		return Aqua
	case strings.Contains(name, "node_modules/"):
		return Purple
	case strings.HasSuffix(name, ".js"):
		return Green
	}
	return Red
}

// rustSystemPrefixes mark frames from the standard distribution. The
// async-lowering shim from_generator::GenFuture is user code in disguise
// and is excluded.
var rustSystemPrefixes = []string{
	"core::", "std::", "alloc::", "<core::", "<std::", "<alloc::",
}

func classifyRust(name string) Basic {
	// Symbols may carry a "module`" prefix from stack tooling.
	if i := strings.IndexRune(name, '`'); i >= 0 {
		name = name[i+1:]
	}
	for _, prefix := range rustSystemPrefixes {
		if strings.HasPrefix(name, prefix) &&
			!strings.HasPrefix(name, "<core::future::from_generator::GenFuture<") {
			return Orange
		}
	}
	if strings.Contains(name, "::") {
		return Aqua
	}
	return Yellow
}
