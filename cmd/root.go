// Package cmd provides the command line interface for the flamegraph tool.
package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var gVersion = "9.9.9" // overwritten at build time via -ldflags -X

const appName = "flamegraph"

var examples = []string{
	fmt.Sprintf("  Flamegraph from perf:             $ perf script | %s > flame.svg", appName),
	fmt.Sprintf("  Flamegraph from a capture file:   $ %s --format dtrace out.stacks > flame.svg", appName),
	fmt.Sprintf("  Icicle graph with hashed colors:  $ %s --inverted --hash perf.txt --output flame.svg", appName),
	fmt.Sprintf("  Differential flamegraph:          $ diff-folded before.folded after.folded | %s --output diff.svg", appName),
}

var rootCmd = &cobra.Command{
	Use:           appName + " [flags] [input]",
	Short:         "Render stack-sampling profiler output as a flame graph SVG",
	Example:       strings.Join(examples, "\n"),
	Args:          argCount(cobra.MaximumNArgs(1)),
	PreRunE:       validateFlags,
	RunE:          runCmd,
	Version:       gVersion,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var (
	// input handling
	flagFormat string
	flagOutput string
	// collapse
	flagPid         bool
	flagTid         bool
	flagAddrs       bool
	flagAnnotate    string
	flagDemangle    bool
	flagEventFilter string
	flagSkipAfter   []string
	flagNoModules   bool
	// render
	flagTitle       string
	flagSubtitle    string
	flagNotes       string
	flagCountName   string
	flagNameType    string
	flagWidth       int
	flagHeight      int
	flagMinWidth    float64
	flagFontType    string
	flagFontSize    int
	flagFontWidth   float64
	flagColors      string
	flagBgColors    string
	flagHash        bool
	flagCp          bool
	flagDiffusion   bool
	flagReverse     bool
	flagInverted    bool
	flagFlamechart  bool
	flagNegate      bool
	flagFactor      string
	flagSearch      string
	flagTidyGeneric bool
	flagPaletteMap  string
	flagReport      string
	// logging
	flagDebug bool
)

const (
	flagFormatName      = "format"
	flagOutputName      = "output"
	flagPidName         = "pid"
	flagTidName         = "tid"
	flagAddrsName       = "addrs"
	flagAnnotateName    = "annotate"
	flagDemangleName    = "demangle"
	flagEventFilterName = "event-filter"
	flagSkipAfterName   = "skip-after"
	flagNoModulesName   = "no-modules"
	flagTitleName       = "title"
	flagSubtitleName    = "subtitle"
	flagNotesName       = "notes"
	flagCountNameName   = "countname"
	flagNameTypeName    = "nametype"
	flagWidthName       = "width"
	flagHeightName      = "height"
	flagMinWidthName    = "minwidth"
	flagFontTypeName    = "fonttype"
	flagFontSizeName    = "fontsize"
	flagFontWidthName   = "fontwidth"
	flagColorsName      = "colors"
	flagBgColorsName    = "bgcolors"
	flagHashName        = "hash"
	flagCpName          = "cp"
	flagDiffusionName   = "color-diffusion"
	flagReverseName     = "reverse"
	flagInvertedName    = "inverted"
	flagFlamechartName  = "flamechart"
	flagNegateName      = "negate"
	flagFactorName      = "factor"
	flagSearchName      = "search"
	flagTidyGenericName = "tidy-generic"
	flagPaletteMapName  = "palette-map"
	flagReportName      = "report"
	flagDebugName       = "debug"
)

var formatOptions = []string{"perf", "dtrace", "sample", "vtune", "xctrace", "recursive", "guess"}

var annotateOptions = []string{"none", "kernel", "jit", "all"}

func init() {
	rootCmd.Flags().StringVar(&flagFormat, flagFormatName, "guess", "")
	rootCmd.Flags().StringVar(&flagOutput, flagOutputName, "", "")
	rootCmd.Flags().BoolVar(&flagPid, flagPidName, false, "")
	rootCmd.Flags().BoolVar(&flagTid, flagTidName, false, "")
	rootCmd.Flags().BoolVar(&flagAddrs, flagAddrsName, false, "")
	rootCmd.Flags().StringVar(&flagAnnotate, flagAnnotateName, "none", "")
	rootCmd.Flags().BoolVar(&flagDemangle, flagDemangleName, false, "")
	rootCmd.Flags().StringVar(&flagEventFilter, flagEventFilterName, "", "")
	rootCmd.Flags().StringSliceVar(&flagSkipAfter, flagSkipAfterName, nil, "")
	rootCmd.Flags().BoolVar(&flagNoModules, flagNoModulesName, false, "")
	rootCmd.Flags().StringVar(&flagTitle, flagTitleName, "", "")
	rootCmd.Flags().StringVar(&flagSubtitle, flagSubtitleName, "", "")
	rootCmd.Flags().StringVar(&flagNotes, flagNotesName, "", "")
	rootCmd.Flags().StringVar(&flagCountName, flagCountNameName, "samples", "")
	rootCmd.Flags().StringVar(&flagNameType, flagNameTypeName, "Function:", "")
	rootCmd.Flags().IntVar(&flagWidth, flagWidthName, 0, "")
	rootCmd.Flags().IntVar(&flagHeight, flagHeightName, 16, "")
	rootCmd.Flags().Float64Var(&flagMinWidth, flagMinWidthName, 0.1, "")
	rootCmd.Flags().StringVar(&flagFontType, flagFontTypeName, "Verdana", "")
	rootCmd.Flags().IntVar(&flagFontSize, flagFontSizeName, 12, "")
	rootCmd.Flags().Float64Var(&flagFontWidth, flagFontWidthName, 0.59, "")
	rootCmd.Flags().StringVar(&flagColors, flagColorsName, "hot", "")
	rootCmd.Flags().StringVar(&flagBgColors, flagBgColorsName, "", "")
	rootCmd.Flags().BoolVar(&flagHash, flagHashName, false, "")
	rootCmd.Flags().BoolVar(&flagCp, flagCpName, false, "")
	rootCmd.Flags().BoolVar(&flagDiffusion, flagDiffusionName, false, "")
	rootCmd.Flags().BoolVar(&flagReverse, flagReverseName, false, "")
	rootCmd.Flags().BoolVar(&flagInverted, flagInvertedName, false, "")
	rootCmd.Flags().BoolVar(&flagFlamechart, flagFlamechartName, false, "")
	rootCmd.Flags().BoolVar(&flagNegate, flagNegateName, false, "")
	rootCmd.Flags().StringVar(&flagFactor, flagFactorName, "1", "")
	rootCmd.Flags().StringVar(&flagSearch, flagSearchName, "", "")
	rootCmd.Flags().BoolVar(&flagTidyGeneric, flagTidyGenericName, false, "")
	rootCmd.Flags().StringVar(&flagPaletteMap, flagPaletteMapName, "", "")
	rootCmd.Flags().StringVar(&flagReport, flagReportName, "", "")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, flagDebugName, false, "enable debug logging")

	rootCmd.SetUsageFunc(usageFunc)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &argError{err}
	})
}

// argError marks argument and option failures so Execute can exit 2 instead
// of 1.
type argError struct {
	err error
}

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

func flagValidationError(msg string) error {
	return &argError{fmt.Errorf("%s", msg)}
}

// argCount wraps a cobra positional-argument validator so its failures are
// reported as argument errors.
func argCount(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &argError{err}
		}
		return nil
	}
}

type flagHelp struct {
	Name string
	Help string
}

type flagGroup struct {
	GroupName string
	Flags     []flagHelp
}

func getFlagGroups() []flagGroup {
	var groups []flagGroup
	groups = append(groups, flagGroup{
		GroupName: "Input",
		Flags: []flagHelp{
			{Name: flagFormatName, Help: fmt.Sprintf("input format, one of: %s", strings.Join(formatOptions, ", "))},
			{Name: flagOutputName, Help: "write the SVG to a file instead of stdout"},
		},
	})
	groups = append(groups, flagGroup{
		GroupName: "Stack Collapsing",
		Flags: []flagHelp{
			{Name: flagPidName, Help: "include PID with process names"},
			{Name: flagTidName, Help: "include TID and PID with process names"},
			{Name: flagAddrsName, Help: "include raw addresses for unknown frames"},
			{Name: flagAnnotateName, Help: fmt.Sprintf("annotate frames, one of: %s", strings.Join(annotateOptions, ", "))},
			{Name: flagDemangleName, Help: "demangle C++ symbol names"},
			{Name: flagEventFilterName, Help: "fold only samples of this perf event (default: first event seen)"},
			{Name: flagSkipAfterName, Help: "drop a matched frame and everything toward the root"},
			{Name: flagNoModulesName, Help: "strip module names from macOS sample frames"},
		},
	})
	groups = append(groups, flagGroup{
		GroupName: "Layout",
		Flags: []flagHelp{
			{Name: flagWidthName, Help: "image width in pixels; when unset, renders fluid at 100% of the viewport"},
			{Name: flagHeightName, Help: "height of each frame in pixels"},
			{Name: flagMinWidthName, Help: "omit frames narrower than this many pixels"},
			{Name: flagFontTypeName, Help: "font family"},
			{Name: flagFontSizeName, Help: "font size in pixels"},
			{Name: flagFontWidthName, Help: "average glyph width relative to font size"},
			{Name: flagInvertedName, Help: "icicle graph: root at the top"},
			{Name: flagReverseName, Help: "reverse stack order, generating a leaf-merged graph"},
			{Name: flagFlamechartName, Help: "flame chart: keep stack input order, merge only adjacent identical frames"},
		},
	})
	groups = append(groups, flagGroup{
		GroupName: "Colors",
		Flags: []flagHelp{
			{Name: flagColorsName, Help: "palette: hot, mem, io, red, green, blue, aqua, yellow, purple, orange, java, js, perl, python, rust, wakeup"},
			{Name: flagBgColorsName, Help: "background: yellow, blue, green, grey, or flat #rrggbb"},
			{Name: flagHashName, Help: "derive colors from function name hashes"},
			{Name: flagCpName, Help: "consistent palette: fully deterministic name-derived colors"},
			{Name: flagDiffusionName, Help: "spread the palette across the horizontal axis"},
			{Name: flagNegateName, Help: "negate the differential color scale"},
			{Name: flagPaletteMapName, Help: "keep name to color assignments consistent across runs via this file"},
		},
	})
	groups = append(groups, flagGroup{
		GroupName: "Labels",
		Flags: []flagHelp{
			{Name: flagTitleName, Help: "document title"},
			{Name: flagSubtitleName, Help: "document subtitle"},
			{Name: flagNotesName, Help: "free-form notes embedded as an SVG comment"},
			{Name: flagCountNameName, Help: "count unit shown in tooltips, e.g. samples, bytes"},
			{Name: flagNameTypeName, Help: "label prefix in the details bar"},
			{Name: flagSearchName, Help: "highlight frames matching this regex on load"},
			{Name: flagTidyGenericName, Help: "elide C++ template parameters from frame names"},
		},
	})
	groups = append(groups, flagGroup{
		GroupName: "Advanced",
		Flags: []flagHelp{
			{Name: flagFactorName, Help: "multiply all counts by this factor; accepts an expression, e.g. 1000/997"},
			{Name: flagReportName, Help: "also write a per-function table (.xlsx or text) to this file"},
		},
	})
	return groups
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s\n\n", cmd.UseLine())
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, f := range group.Flags {
			flagDefault := ""
			if cmd.Flags().Lookup(f.Name).DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(f.Name).DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", f.Name, f.Help, flagDefault)
		}
	}
	cmd.Println("\nGlobal Flags:")
	cmd.PersistentFlags().VisitAll(func(pf *pflag.Flag) {
		cmd.Printf("  --%-20s %s\n", pf.Name, pf.Usage)
	})
	return nil
}

// Execute runs the root command. Argument errors exit 2, runtime errors 1.
func Execute() {
	initLogging()
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var ae *argError
	if isArgError(err, &ae) {
		os.Exit(2)
	}
	os.Exit(1)
}

func isArgError(err error, target **argError) bool {
	for err != nil {
		if ae, ok := err.(*argError); ok {
			*target = ae
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func initLogging() {
	logOpts := slog.HandlerOptions{Level: slog.LevelInfo}
	for _, arg := range os.Args[1:] {
		if arg == "--"+flagDebugName {
			logOpts.Level = slog.LevelDebug
			logOpts.AddSource = true
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &logOpts)))
}
