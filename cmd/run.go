package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/casbin/govaluate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flamegraph/internal/collapse"
	"flamegraph/internal/color"
	"flamegraph/internal/flamegraph"
	"flamegraph/internal/report"
	"flamegraph/internal/util"
)

func validateFlags(cmd *cobra.Command, args []string) error {
	if !slices.Contains(formatOptions, flagFormat) {
		return flagValidationError(fmt.Sprintf("format options are: %s", strings.Join(formatOptions, ", ")))
	}
	if !slices.Contains(annotateOptions, flagAnnotate) {
		return flagValidationError(fmt.Sprintf("annotate options are: %s", strings.Join(annotateOptions, ", ")))
	}
	if _, err := color.ParsePalette(flagColors); err != nil {
		return flagValidationError(err.Error())
	}
	if flagBgColors != "" {
		palette, _ := color.ParsePalette(flagColors)
		if _, err := color.ParseBackground(flagBgColors, palette); err != nil {
			return flagValidationError(err.Error())
		}
	}
	if cmd.Flags().Changed(flagWidthName) && flagWidth <= 0 {
		return flagValidationError("width must be positive")
	}
	if flagHeight <= 0 {
		return flagValidationError("height must be positive")
	}
	if flagMinWidth < 0 {
		return flagValidationError("minwidth must be 0 or greater")
	}
	if flagFontSize <= 0 {
		return flagValidationError("fontsize must be positive")
	}
	if flagFontWidth <= 0 {
		return flagValidationError("fontwidth must be positive")
	}
	factor, err := parseFactor(flagFactor)
	if err != nil {
		return flagValidationError(fmt.Sprintf("invalid factor %q: %v", flagFactor, err))
	}
	if factor <= 0 {
		return flagValidationError("factor must be positive")
	}
	if len(args) == 1 && args[0] != "-" {
		path, err := util.AbsPath(args[0])
		if err != nil {
			return flagValidationError(err.Error())
		}
		exists, err := util.FileExists(path)
		if err != nil {
			return flagValidationError(err.Error())
		}
		if !exists {
			return flagValidationError(fmt.Sprintf("input file %s does not exist", args[0]))
		}
	}
	return nil
}

// parseFactor accepts a plain float or an arithmetic expression such as
// "1000/997".
func parseFactor(s string) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	expr, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return 0, err
	}
	v, err := expr.Evaluate(nil)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, errors.Errorf("expression %q is not numeric", s)
	}
	return f, nil
}

func newCollapser() collapse.Collapser {
	perfOpts := collapse.DefaultPerfOptions()
	perfOpts.IncludePID = flagPid
	perfOpts.IncludeTID = flagTid
	perfOpts.IncludeAddrs = flagAddrs
	perfOpts.AnnotateKernel = flagAnnotate == "kernel" || flagAnnotate == "all"
	perfOpts.AnnotateJIT = flagAnnotate == "jit" || flagAnnotate == "all"
	perfOpts.Demangle = flagDemangle
	perfOpts.EventFilter = flagEventFilter
	perfOpts.SkipAfter = flagSkipAfter
	dtraceOpts := collapse.DtraceOptions{
		IncludePName:   true,
		AnnotateKernel: perfOpts.AnnotateKernel,
	}
	sampleOpts := collapse.SampleOptions{NoModules: flagNoModules}
	switch flagFormat {
	case "perf":
		return collapse.NewPerf(perfOpts)
	case "dtrace":
		return collapse.NewDtrace(dtraceOpts)
	case "sample":
		return collapse.NewSample(sampleOpts)
	case "vtune":
		return collapse.NewVTune()
	case "xctrace":
		return collapse.NewXCTrace()
	case "recursive":
		return collapse.NewRecursive()
	default:
		return collapse.NewGuess(perfOpts, dtraceOpts, sampleOpts)
	}
}

func renderOptions() (flamegraph.Options, error) {
	opts := flamegraph.DefaultOptions()
	palette, err := color.ParsePalette(flagColors)
	if err != nil {
		return opts, err
	}
	opts.Palette = palette
	opts.BgColors = flagBgColors
	if flagInverted {
		opts.Direction = flamegraph.DirectionInverted
	}
	opts.ImageWidth = flagWidth
	opts.FrameHeight = flagHeight
	opts.MinWidth = flagMinWidth
	opts.FontType = flagFontType
	opts.FontSize = flagFontSize
	opts.FontWidth = flagFontWidth
	opts.Title = flagTitle
	opts.Subtitle = flagSubtitle
	opts.Notes = flagNotes
	opts.CountName = flagCountName
	opts.NameType = flagNameType
	opts.HashColors = flagHash
	opts.Deterministic = flagCp
	opts.ColorDiffusion = flagDiffusion
	opts.Seed = uint32(time.Now().UnixNano())
	opts.Factor, err = parseFactor(flagFactor)
	if err != nil {
		return opts, err
	}
	opts.TidyGeneric = flagTidyGeneric
	opts.ReverseStackOrder = flagReverse
	opts.Flamechart = flagFlamechart
	opts.Negate = flagNegate
	opts.SearchText = flagSearch
	if flagPaletteMap != "" {
		pm, err := color.LoadPaletteMap(flagPaletteMap)
		if err != nil {
			return opts, err
		}
		opts.PaletteMap = pm
	}
	return opts, nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	input := os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "opening input")
		}
		defer f.Close()
		input = f
	}
	if flagOutput == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write SVG to a terminal; redirect stdout or use --output")
	}

	start := time.Now()
	var folded bytes.Buffer
	if err := newCollapser().Collapse(input, &folded); err != nil {
		return err
	}
	slog.Debug("collapsed profiler output",
		slog.String("format", flagFormat),
		slog.Int("bytes", folded.Len()),
		slog.String("elapsed", time.Since(start).String()))

	if flagReport != "" {
		entries, err := report.FromFolded(bytes.NewReader(folded.Bytes()))
		if err != nil {
			return err
		}
		if err := report.WriteFile(flagReport, entries, flagCountName); err != nil {
			return err
		}
	}

	opts, err := renderOptions()
	if err != nil {
		return err
	}
	// Render into memory first: a failed render must not leave partial SVG
	// behind.
	var svg bytes.Buffer
	if err := flamegraph.Render(bytes.NewReader(folded.Bytes()), &svg, opts); err != nil {
		return err
	}
	if opts.PaletteMap != nil {
		if err := opts.PaletteMap.Save(); err != nil {
			return err
		}
	}
	out := io.Writer(os.Stdout)
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer f.Close()
		out = f
	}
	_, err = out.Write(svg.Bytes())
	return errors.Wrap(err, "writing SVG")
}
