package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"io"

	"github.com/pkg/errors"

	"flamegraph/internal/color"
)

// ErrEmptyProfile is returned when the folded input carries no samples; an
// empty SVG is never produced.
var ErrEmptyProfile = errors.New("no stacks with positive sample counts")

// virtualWidth is the layout width used when no pixel width is configured
// and coordinates are emitted as percentages (fluid layout).
const virtualWidth = 1200

// xpad is the horizontal padding around the frame area.
const xpad = 10.0

// geometry fixes the pixel arithmetic for one render.
type geometry struct {
	fluid       bool
	imageWidth  float64
	imageHeight float64
	ypadTop     float64
	ypadBottom  float64
	drawable    float64 // imageWidth minus both pads
}

func newGeometry(opts *Options, maxDepth int) geometry {
	g := geometry{fluid: opts.ImageWidth == 0}
	if g.fluid {
		g.imageWidth = virtualWidth
	} else {
		g.imageWidth = float64(opts.ImageWidth)
	}
	g.drawable = g.imageWidth - 2*xpad
	g.ypadTop = float64(opts.FontSize) * 3
	if opts.Subtitle != "" {
		g.ypadTop = float64(opts.FontSize) * 5
	}
	g.ypadBottom = float64(opts.FontSize)*2 + 10
	g.imageHeight = float64(maxDepth+1)*float64(opts.FrameHeight) + g.ypadTop + g.ypadBottom
	return g
}

// frameY places a frame row. Flames grow up from the bottom; icicles grow
// down from the top.
func (g geometry) frameY(opts *Options, depth int) float64 {
	if opts.Direction == DirectionInverted {
		return g.ypadTop + float64(depth)*float64(opts.FrameHeight)
	}
	return g.imageHeight - g.ypadBottom - float64(depth+1)*float64(opts.FrameHeight)
}

// placedFrame is one emitted rectangle. x and width are pixels relative to
// the frame area's left edge.
type placedFrame struct {
	node  int
	depth int
	x     float64
	width float64
}

// layout walks the tree depth-first, assigning horizontal extents and
// pruning subtrees narrower than the configured minimum. Pruned subtrees
// still occupy their horizontal share of the parent. Siblings keep
// insertion order, so the output is stable for identical input.
func layout(t *frameTree, opts *Options, drawable float64) (frames []placedFrame, maxDepth int) {
	total := float64(t.root().value)
	pxPerSample := drawable / total

	type walkItem struct {
		node  int
		depth int
		x     float64
	}
	stack := []walkItem{{node: rootIndex, depth: 0, x: 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[it.node]
		width := float64(n.value) * pxPerSample
		if width < opts.MinWidth {
			continue
		}
		frames = append(frames, placedFrame{node: it.node, depth: it.depth, x: it.x, width: width})
		if it.depth > maxDepth {
			maxDepth = it.depth
		}
		// Push children in reverse so they pop in insertion order; the
		// emitted document then lists siblings left to right.
		x := it.x
		offsets := make([]float64, len(n.children))
		for i, c := range n.children {
			offsets[i] = x
			x += float64(t.nodes[c].value) * pxPerSample
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, walkItem{node: n.children[i], depth: it.depth + 1, x: offsets[i]})
		}
	}
	return frames, maxDepth
}

// Render reads folded input, builds the frame tree, and writes a complete
// SVG document. Nothing is written when an error is returned before
// emission starts.
func Render(folded io.Reader, w io.Writer, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	tree, err := buildTree(folded, &opts)
	if err != nil {
		return err
	}
	if tree.root().value == 0 {
		return ErrEmptyProfile
	}

	// A throwaway geometry provides the drawable width for pruning; the
	// height needs the post-prune depth.
	probe := newGeometry(&opts, 0)
	frames, maxDepth := layout(tree, &opts, probe.drawable)
	geom := newGeometry(&opts, maxDepth)

	bg, err := color.ParseBackground(opts.BgColors, opts.Palette)
	if err != nil {
		return err
	}
	mode := color.ModeRandom
	if opts.HashColors {
		mode = color.ModeHash
	} else if opts.Deterministic {
		mode = color.ModeDeterministic
	}
	gen := color.NewGenerator(opts.Palette, mode, opts.Seed)
	if opts.PaletteMap != nil {
		gen.SetPaletteMap(opts.PaletteMap)
	}

	sw := newSVGWriter(w, &opts, geom, bg)
	if err := sw.writeHeader(tree.root().value); err != nil {
		return err
	}
	total := float64(tree.root().value)
	for _, pf := range frames {
		n := &tree.nodes[pf.node]
		var fill color.RGB
		switch {
		case tree.diff:
			fill = color.DiffColor(float64(n.delta), tree.maxDelta, opts.Negate)
		case opts.ColorDiffusion:
			fill = gen.FrameColorAt(n.name, (pf.x+pf.width/2)/geom.drawable)
		default:
			fill = gen.FrameColor(frameColorName(n, pf))
		}
		if err := sw.writeFrame(pf, n, total, fill); err != nil {
			return err
		}
	}
	return sw.writeFooter()
}

// frameColorName colors the root frame under its display name, "all", rather
// than the tree's internal "root" name.
func frameColorName(n *frameNode, pf placedFrame) string {
	if pf.depth == 0 {
		return "all"
	}
	return n.name
}

// displayName is what tooltips and labels show.
func displayName(n *frameNode, depth int) string {
	if depth == 0 {
		return "all"
	}
	return n.name
}
