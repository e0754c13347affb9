package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "strings"

// tidyName canonicalizes a frame name for display: instruction offsets go,
// the anonymous-namespace wrapper is unwrapped, and with generic set, C++
// template bodies are elided. Escaping for SVG happens at emission, not
// here.
func tidyName(name string, generic bool) string {
	name = stripTrailingOffset(name)
	name = strings.ReplaceAll(name, "(anonymous namespace)::", "")
	// Names that begin with '<' ("<module>", Rust trait impls) are not
	// template instantiations.
	if generic && !strings.HasPrefix(name, "<") {
		name = elideTemplates(name)
	}
	return name
}

func stripTrailingOffset(name string) string {
	i := strings.LastIndex(name, "+0x")
	if i <= 0 {
		return name
	}
	for _, c := range []byte(name[i+3:]) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return name
		}
	}
	return name[:i]
}

// elideTemplates drops matched top-level angle-bracket bodies: "vec<int>"
// becomes "vec<>". Conservative: "operator<" and unbalanced brackets are
// left alone.
func elideTemplates(name string) string {
	if strings.Contains(name, "operator<") || strings.Contains(name, "operator>") {
		return name
	}
	var sb strings.Builder
	depth := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch c {
		case '<':
			if depth == 0 {
				sb.WriteByte('<')
			}
			depth++
		case '>':
			if depth == 0 {
				// Unbalanced: give up and keep the original.
				return name
			}
			depth--
			if depth == 0 {
				sb.WriteByte('>')
			}
		default:
			if depth == 0 {
				sb.WriteByte(c)
			}
		}
	}
	if depth != 0 {
		return name
	}
	return sb.String()
}

// escapeXML escapes the characters SVG text cannot carry verbatim.
func escapeXML(s string) string {
	if !strings.ContainsAny(s, `&<>"`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '"':
			sb.WriteString("&quot;")
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// fitLabel truncates a label to the number of characters that fit widthPx,
// marking the cut with "..". Labels that cannot fit three characters are
// dropped entirely.
func fitLabel(name string, widthPx float64, opts *Options) string {
	chars := int(widthPx / (float64(opts.FontSize) * opts.FontWidth))
	if chars < 3 {
		return ""
	}
	if len(name) <= chars {
		return name
	}
	if opts.TruncateText == TruncateRight {
		return name[:chars-2] + ".."
	}
	return ".." + name[len(name)-(chars-2):]
}
