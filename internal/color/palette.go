// Package color resolves flame-graph frame colors: basic palettes with
// randomized variance, semantic palettes that classify frame names per
// language convention, deterministic hashing modes, and the differential
// scale.
package color

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// RGB is a frame fill color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Basic palettes are RGB centerpoints plus per-component variance.
type Basic int

const (
	Hot Basic = iota
	Mem
	IO
	Red
	Green
	Blue
	Aqua
	Yellow
	Purple
	Orange
)

// Semantic palettes classify the frame name into a basic palette first.
type Semantic int

const (
	Java Semantic = iota
	JS
	Perl
	Python
	Rust
	Wakeup
)

// Palette is a tagged variant: either a basic color family or a semantic
// classifier.
type Palette struct {
	basic    Basic
	semantic Semantic
	isSem    bool
}

func BasicPalette(b Basic) Palette       { return Palette{basic: b} }
func SemanticPalette(s Semantic) Palette { return Palette{semantic: s, isSem: true} }

// DefaultPalette is Basic(hot).
func DefaultPalette() Palette { return BasicPalette(Hot) }

var basicNames = map[string]Basic{
	"hot": Hot, "mem": Mem, "io": IO, "red": Red, "green": Green,
	"blue": Blue, "aqua": Aqua, "yellow": Yellow, "purple": Purple,
	"orange": Orange,
}

var semanticNames = map[string]Semantic{
	"java": Java, "js": JS, "perl": Perl, "python": Python, "rust": Rust,
	"wakeup": Wakeup,
}

// ParsePalette resolves a palette name from the CLI.
func ParsePalette(name string) (Palette, error) {
	if b, ok := basicNames[name]; ok {
		return BasicPalette(b), nil
	}
	if s, ok := semanticNames[name]; ok {
		return SemanticPalette(s), nil
	}
	return Palette{}, errors.Errorf("unknown palette %q", name)
}

// resolve maps the palette to the basic palette used for a given frame name.
func (p Palette) resolve(name string) Basic {
	if !p.isSem {
		return p.basic
	}
	switch p.semantic {
	case Java:
		return classifyJava(name)
	case JS:
		return classifyJS(name)
	case Perl:
		return classifyPerl(name)
	case Python:
		return classifyPython(name)
	case Rust:
		return classifyRust(name)
	default: // Wakeup
		return Aqua
	}
}

// Variance draws on up to three scalars in [0,1]. The component function is
// base + floor(scale*v); which scalar feeds which component is fixed per
// palette.
func basicColor(b Basic, v1, v2, v3 float64) RGB {
	t := func(base, scale int, v float64) uint8 {
		return uint8(base + int(float64(scale)*v))
	}
	switch b {
	case Hot:
		return RGB{t(205, 50, v3), t(0, 230, v1), t(0, 55, v2)}
	case Mem:
		return RGB{0, t(190, 50, v2), t(0, 210, v1)}
	case IO:
		x := t(80, 60, v1)
		return RGB{x, x, t(190, 55, v2)}
	case Red:
		x := t(50, 80, v1)
		return RGB{t(200, 55, v1), x, x}
	case Green:
		x := t(50, 60, v1)
		return RGB{x, t(200, 55, v1), x}
	case Blue:
		x := t(80, 60, v1)
		return RGB{x, x, t(205, 50, v1)}
	case Aqua:
		x := t(165, 55, v1)
		return RGB{t(50, 60, v1), x, x}
	case Yellow:
		y := t(175, 55, v1)
		return RGB{y, y, t(50, 20, v1)}
	case Purple:
		p := t(190, 65, v1)
		return RGB{p, t(80, 60, v1), p}
	case Orange:
		return RGB{t(190, 65, v1), t(90, 65, v1), 0}
	}
	return RGB{0, 0, 0}
}

// Background is the SVG gradient behind the graph.
type Background struct {
	From string
	To   string
}

// Background variants selectable with --bgcolors.
const (
	BgYellow = "yellow"
	BgBlue   = "blue"
	BgGreen  = "green"
	BgGrey   = "grey"
)

var backgrounds = map[string]Background{
	BgYellow: {"#eeeeee", "#eeeeb0"},
	BgBlue:   {"#eeeeee", "#e0e0ff"},
	BgGreen:  {"#eef2ee", "#e0ffe0"},
	BgGrey:   {"#f8f8f8", "#e8e8e8"},
}

// DefaultBackground returns the background family a palette implies.
func DefaultBackground(p Palette) Background {
	if p.isSem {
		if p.semantic == Wakeup {
			return backgrounds[BgBlue]
		}
		return backgrounds[BgYellow]
	}
	switch p.basic {
	case Mem:
		return backgrounds[BgGreen]
	case IO:
		return backgrounds[BgBlue]
	case Red, Green, Blue, Aqua, Yellow, Purple, Orange:
		return backgrounds[BgGrey]
	default:
		return backgrounds[BgYellow]
	}
}

// ParseBackground resolves --bgcolors: a named variant or a flat "#rrggbb".
func ParseBackground(name string, p Palette) (Background, error) {
	if name == "" {
		return DefaultBackground(p), nil
	}
	if bg, ok := backgrounds[name]; ok {
		return bg, nil
	}
	if flat, err := parseHexColor(name); err == nil {
		return Background{From: flat, To: flat}, nil
	}
	return Background{}, errors.Errorf("unknown background %q", name)
}

func parseHexColor(s string) (string, error) {
	if len(s) != 7 || s[0] != '#' {
		return "", errors.Errorf("invalid hex color %q", s)
	}
	for i := 1; i < 7; i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return "", errors.Errorf("invalid hex color %q", s)
		}
	}
	return strings.ToLower(s), nil
}

// DiffColor encodes a count delta as blue (shrank) through white (flat) to
// red (grew). maxDelta is the largest absolute delta in the graph; negate
// flips the direction so "after minus before" reads as the improvement.
func DiffColor(delta, maxDelta float64, negate bool) RGB {
	if negate {
		delta = -delta
	}
	r, g, b := 255, 255, 255
	if maxDelta > 0 {
		if delta > 0 {
			c := int(210 * (maxDelta - delta) / maxDelta)
			g, b = c, c
		} else if delta < 0 {
			c := int(210 * (maxDelta + delta) / maxDelta)
			r, g = c, c
		}
	}
	return RGB{uint8(r), uint8(g), uint8(b)}
}
