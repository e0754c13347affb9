// Package flamegraph renders folded stacks as a self-contained interactive
// SVG document.
package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"github.com/pkg/errors"

	"flamegraph/internal/color"
)

// Direction selects flame (root at the bottom) or icicle (root at the top)
// layout.
type Direction int

const (
	DirectionNormal Direction = iota
	DirectionInverted
)

// TruncateDirection selects which end of a label survives when it does not
// fit its frame.
type TruncateDirection int

const (
	// TruncateLeft drops the left end, keeping the rightmost identifier.
	TruncateLeft TruncateDirection = iota
	// TruncateRight drops the right end.
	TruncateRight
)

// Options configures one render pass.
type Options struct {
	Palette    color.Palette
	BgColors   string // named variant or flat "#rrggbb"; empty follows the palette
	Direction  Direction
	ImageWidth int // pixels; 0 renders fluid at 100% of the viewport

	FrameHeight int
	MinWidth    float64 // pixels below which a frame is elided
	FontType    string
	FontSize    int
	FontWidth   float64 // average glyph width as a fraction of FontSize

	Title    string
	Subtitle string
	Notes    string

	CountName string // unit word in tooltips, e.g. "samples" or "bytes"
	NameType  string // details-bar label prefix, e.g. "Function:"

	SearchColor string
	UIColor     string
	StrokeColor string

	// Color scalar derivation: HashColors beats Deterministic beats the
	// seeded random default. ColorDiffusion spreads the palette across the
	// horizontal axis instead.
	HashColors     bool
	Deterministic  bool
	ColorDiffusion bool
	Seed           uint32

	Factor            float64 // multiplies every count
	TidyGeneric       bool    // elide C++ template bodies from frame names
	ReverseStackOrder bool
	Flamechart        bool // keep input order, merge only adjacent stacks
	Negate            bool // flip differential colors
	SearchText        string
	TruncateText      TruncateDirection

	PaletteMap *color.PaletteMap
}

// DefaultOptions mirrors the established flame-graph defaults.
func DefaultOptions() Options {
	return Options{
		Palette:     color.DefaultPalette(),
		FrameHeight: 16,
		MinWidth:    0.1,
		FontType:    "Verdana",
		FontSize:    12,
		FontWidth:   0.59,
		Title:       "",
		CountName:   "samples",
		NameType:    "Function:",
		SearchColor: "rgb(230,0,230)",
		UIColor:     "rgb(0,0,0)",
		StrokeColor: "none",
		Factor:      1,
	}
}

// Validate rejects option combinations the renderer cannot honor.
func (o *Options) Validate() error {
	if o.MinWidth < 0 {
		return errors.New("min width must not be negative")
	}
	if o.ImageWidth < 0 {
		return errors.New("image width must not be negative")
	}
	if o.FrameHeight <= 0 {
		return errors.New("frame height must be positive")
	}
	if o.FontSize <= 0 {
		return errors.New("font size must be positive")
	}
	if o.FontWidth <= 0 {
		return errors.New("font width must be positive")
	}
	if o.Factor <= 0 {
		return errors.New("factor must be positive")
	}
	return nil
}

// title resolves the document title from the mode when none was given.
func (o *Options) title() string {
	if o.Title != "" {
		return o.Title
	}
	if o.Flamechart {
		return "Flame Chart"
	}
	if o.Direction == DirectionInverted {
		return "Icicle Graph"
	}
	return "Flame Graph"
}
