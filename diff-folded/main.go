// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// diff-folded joins two folded profiles taken before and after a change into
// three-column differential folded output suitable for the flamegraph tool.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"flamegraph/internal/diff"
	"flamegraph/internal/util"
)

var gVersion = "9.9.9" // overwritten at build time via -ldflags -X

const cmdName = "diff-folded"

var examples = []string{
	fmt.Sprintf("  Differential folded output:  $ %s before.folded after.folded > diff.folded", cmdName),
	fmt.Sprintf("  Normalized, address-masked:  $ %s --normalize --strip-hex before.folded after.folded", cmdName),
}

var (
	flagNormalize bool
	flagStripHex  bool
	flagOutput    string
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:           cmdName + " [flags] BEFORE_FILE AFTER_FILE",
	Short:         "Join two folded profiles into differential folded output",
	Example:       strings.Join(examples, "\n"),
	Args:          argCount(cobra.ExactArgs(2)),
	PreRunE:       validateFlags,
	RunE:          runCmd,
	Version:       gVersion,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.Flags().BoolVar(&flagNormalize, "normalize", false, "scale the first profile's counts so the totals match")
	rootCmd.Flags().BoolVar(&flagStripHex, "strip-hex", false, "mask hex addresses so they do not split stacks")
	rootCmd.Flags().StringVar(&flagOutput, "output", "", "write to a file instead of stdout")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

func validateFlags(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		path, err := util.AbsPath(arg)
		if err != nil {
			return usageError(err.Error())
		}
		exists, err := util.FileExists(path)
		if err != nil {
			return usageError(err.Error())
		}
		if !exists {
			return usageError(fmt.Sprintf("input file %s does not exist", arg))
		}
	}
	return nil
}

type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

func usageError(msg string) error { return &argError{msg: msg} }

func argCount(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err.Error())
		}
		return nil
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	before, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "opening before profile")
	}
	defer before.Close()
	after, err := os.Open(args[1])
	if err != nil {
		return errors.Wrap(err, "opening after profile")
	}
	defer after.Close()
	out := io.Writer(os.Stdout)
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer f.Close()
		out = f
	}
	return diff.Folded(before, after, out, diff.Options{
		Normalize: flagNormalize,
		StripHex:  flagStripHex,
	})
}

func main() {
	logOpts := slog.HandlerOptions{Level: slog.LevelInfo}
	for _, arg := range os.Args[1:] {
		if arg == "--debug" {
			logOpts.Level = slog.LevelDebug
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &logOpts)))
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err.Error())
	})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if _, ok := err.(*argError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
