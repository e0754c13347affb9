package color

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "strings"

// Generator assigns colors to frames for one render pass.
type Generator struct {
	palette Palette
	mode    Mode
	rng     *lcg
	pmap    *PaletteMap
}

// NewGenerator seeds the random mode's LCG; the seed is ignored by the
// deterministic modes.
func NewGenerator(palette Palette, mode Mode, seed uint32) *Generator {
	return &Generator{palette: palette, mode: mode, rng: newLCG(seed)}
}

// SetPaletteMap attaches a consistency map. Mapped names bypass palette
// computation entirely; unmapped names get a computed color which is then
// recorded.
func (g *Generator) SetPaletteMap(m *PaletteMap) {
	g.pmap = m
}

// FrameColor picks the fill color for a frame name.
func (g *Generator) FrameColor(name string) RGB {
	if g.pmap != nil {
		return g.pmap.Color(name, func() RGB { return g.compute(name) })
	}
	return g.compute(name)
}

func (g *Generator) compute(name string) RGB {
	basic := g.palette.resolve(name)
	// Hashing ignores annotation suffixes so "foo" and "foo_[k]" vary
	// together.
	hashName := stripAnnotation(name)
	var v1, v2, v3 float64
	switch g.mode {
	case ModeHash:
		v1 = namehash([]byte(hashName))
		v2 = namehash(reverseBytes([]byte(hashName)))
		v3 = v2
	case ModeDeterministic:
		v1 = fnvUnit(hashName)
		v2 = v1
		v3 = v1
	default:
		v1 = g.rng.next()
		v2 = g.rng.next()
		v3 = g.rng.next()
	}
	return basicColor(basic, v1, v2, v3)
}

// FrameColorAt derives the scalars from a horizontal position in [0,1],
// spreading the palette across the graph (color diffusion).
func (g *Generator) FrameColorAt(name string, position float64) RGB {
	basic := g.palette.resolve(name)
	return basicColor(basic, position, position, position)
}

var annotations = []string{"_[k]", "_[j]", "_[i]", "_[w]"}

func stripAnnotation(name string) string {
	for _, a := range annotations {
		if strings.HasSuffix(name, a) {
			return name[:len(name)-len(a)]
		}
	}
	return name
}
