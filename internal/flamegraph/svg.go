package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"flamegraph/internal/color"
)

// svgWriter emits the SVG document. All draw coordinates inside the frame
// area are relative to the inner <svg id="frames"> element; in fluid layout
// they are percentages of it, otherwise pixels.
type svgWriter struct {
	w    *bufio.Writer
	opts *Options
	geom geometry
	bg   color.Background
	err  error
}

func newSVGWriter(w io.Writer, opts *Options, geom geometry, bg color.Background) *svgWriter {
	return &svgWriter{w: bufio.NewWriter(w), opts: opts, geom: geom, bg: bg}
}

func (s *svgWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

// frameCoord formats a coordinate within the frame area.
func (s *svgWriter) frameCoord(px float64) string {
	if s.geom.fluid {
		return fmt.Sprintf("%.4f%%", px/s.geom.drawable*100)
	}
	return fmt.Sprintf("%.1f", px)
}

// docX formats a horizontal position within the whole document.
func (s *svgWriter) docX(px float64) string {
	if s.geom.fluid {
		return fmt.Sprintf("%.4f%%", px/s.geom.imageWidth*100)
	}
	return fmt.Sprintf("%.1f", px)
}

func (s *svgWriter) writeHeader(totalSamples uint64) error {
	o := s.opts
	g := s.geom
	fs := o.FontSize

	s.printf("<?xml version=\"1.0\" standalone=\"no\"?>\n")
	s.printf("<!DOCTYPE svg PUBLIC \"-//W3C//DTD SVG 1.1//EN\" \"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd\">\n")
	if o.Notes != "" {
		s.printf("<!-- %s -->\n", strings.ReplaceAll(escapeXML(o.Notes), "--", "&#45;&#45;"))
	}
	if g.fluid {
		s.printf("<svg version=\"1.1\" width=\"100%%\" height=\"%.0f\" onload=\"init(evt)\" xmlns=\"http://www.w3.org/2000/svg\" xmlns:xlink=\"http://www.w3.org/1999/xlink\" xmlns:fg=\"urn:flamegraph\">\n", g.imageHeight)
	} else {
		s.printf("<svg version=\"1.1\" width=\"%.0f\" height=\"%.0f\" viewBox=\"0 0 %.0f %.0f\" onload=\"init(evt)\" xmlns=\"http://www.w3.org/2000/svg\" xmlns:xlink=\"http://www.w3.org/1999/xlink\" xmlns:fg=\"urn:flamegraph\">\n",
			g.imageWidth, g.imageHeight, g.imageWidth, g.imageHeight)
	}

	s.printf("<defs>\n\t<linearGradient id=\"background\" y1=\"0\" y2=\"1\" x1=\"0\" x2=\"0\">\n\t\t<stop stop-color=\"%s\" offset=\"5%%\"/>\n\t\t<stop stop-color=\"%s\" offset=\"95%%\"/>\n\t</linearGradient>\n</defs>\n",
		s.bg.From, s.bg.To)

	s.printf("<style type=\"text/css\">\n")
	s.printf("\ttext { font-family:%s; font-size:%dpx; fill:%s; }\n", o.FontType, fs, o.UIColor)
	s.printf("\t.func_g { cursor:pointer; }\n")
	s.printf("\t.func_g:hover { stroke:black; stroke-width:0.5; }\n")
	s.printf("\t#details { fill:%s; }\n", o.UIColor)
	s.printf("\t#unzoom { cursor:pointer; }\n")
	s.printf("\t#search, #ignorecase { opacity:0.1; cursor:pointer; }\n")
	s.printf("\t#search:hover, #search.show, #ignorecase:hover, #ignorecase.show { opacity:1; }\n")
	s.printf("\t#title { text-anchor:middle; font-size:%dpx; }\n", fs+5)
	s.printf("\t#subtitle { text-anchor:middle; fill:rgb(160,160,160); }\n")
	s.printf("\t#matched { text-anchor:end; }\n")
	s.printf("\t.hide { display:none; }\n")
	s.printf("\t.parent { opacity:0.5; }\n")
	s.printf("</style>\n")

	s.printf("<script type=\"text/ecmascript\">\n<![CDATA[\n")
	s.printf("var fg = { fontsize:%d, fontwidth:%f, frameheight:%d, inverted:%t, searchcolor:%q, nametype:%q, searchterm:%q, truncateright:%t };\n",
		fs, o.FontWidth, o.FrameHeight, o.Direction == DirectionInverted, o.SearchColor, o.NameType, o.SearchText, o.TruncateText == TruncateRight)
	s.printf("%s", interactiveScript)
	s.printf("]]>\n</script>\n")

	// Background and fixed chrome.
	if g.fluid {
		s.printf("<rect x=\"0\" y=\"0\" width=\"100%%\" height=\"%.0f\" fill=\"url(#background)\"/>\n", g.imageHeight)
		s.printf("<text id=\"title\" x=\"50%%\" y=\"%d\">%s</text>\n", fs*2, escapeXML(o.title()))
	} else {
		s.printf("<rect x=\"0\" y=\"0\" width=\"%.0f\" height=\"%.0f\" fill=\"url(#background)\"/>\n", g.imageWidth, g.imageHeight)
		s.printf("<text id=\"title\" x=\"%.0f\" y=\"%d\">%s</text>\n", g.imageWidth/2, fs*2, escapeXML(o.title()))
	}
	if o.Subtitle != "" {
		s.printf("<text id=\"subtitle\" x=\"%s\" y=\"%d\">%s</text>\n", s.docX(g.imageWidth/2), fs*4, escapeXML(o.Subtitle))
	}
	s.printf("<text id=\"details\" x=\"%s\" y=\"%.0f\"> </text>\n", s.docX(xpad), g.imageHeight-g.ypadBottom/2)
	s.printf("<text id=\"unzoom\" x=\"%s\" y=\"%d\" class=\"hide\">Reset Zoom</text>\n", s.docX(xpad), fs*2)
	s.printf("<text id=\"search\" x=\"%s\" y=\"%d\" text-anchor=\"end\">Search</text>\n", s.docX(g.imageWidth-xpad-26), fs*2)
	s.printf("<text id=\"ignorecase\" x=\"%s\" y=\"%d\" text-anchor=\"end\">ic</text>\n", s.docX(g.imageWidth-xpad), fs*2)
	s.printf("<text id=\"matched\" x=\"%s\" y=\"%.0f\"> </text>\n", s.docX(g.imageWidth-xpad), g.imageHeight-g.ypadBottom/2)

	if g.fluid {
		s.printf("<svg id=\"frames\" x=\"%.4f%%\" width=\"%.4f%%\" total_samples=\"%d\">\n",
			xpad/g.imageWidth*100, g.drawable/g.imageWidth*100, totalSamples)
	} else {
		s.printf("<svg id=\"frames\" x=\"%.0f\" width=\"%.0f\" total_samples=\"%d\">\n", xpad, g.drawable, totalSamples)
	}
	return s.err
}

func (s *svgWriter) writeFrame(pf placedFrame, n *frameNode, total float64, fill color.RGB) error {
	o := s.opts
	name := displayName(n, pf.depth)
	y := s.geom.frameY(o, pf.depth)
	pct := float64(n.value) / total * 100

	s.printf("<g class=\"func_g\">\n")
	s.printf("<title>%s (%s %s, %.2f%%)</title>", escapeXML(name), formatCount(n.value), o.CountName, pct)
	if o.StrokeColor != "" && o.StrokeColor != "none" {
		s.printf("<rect x=\"%s\" y=\"%.1f\" width=\"%s\" height=\"%.1f\" fill=\"%s\" stroke=\"%s\"/>\n",
			s.frameCoord(pf.x), y, s.frameCoord(pf.width), float64(o.FrameHeight)-1, fill, o.StrokeColor)
	} else {
		s.printf("<rect x=\"%s\" y=\"%.1f\" width=\"%s\" height=\"%.1f\" fill=\"%s\"/>\n",
			s.frameCoord(pf.x), y, s.frameCoord(pf.width), float64(o.FrameHeight)-1, fill)
	}
	label := fitLabel(name, pf.width, o)
	ty := y + (float64(o.FrameHeight)+float64(o.FontSize))/2 - 2
	s.printf("<text x=\"%s\" y=\"%.2f\">%s</text>\n", s.frameCoord(pf.x+3), ty, escapeXML(label))
	s.printf("</g>\n")
	return s.err
}

func (s *svgWriter) writeFooter() error {
	s.printf("</svg>\n")
	s.printf("</svg>\n")
	if s.err != nil {
		return s.err
	}
	return s.w.Flush()
}
