package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"goat/internal/ast"
	"goat/internal/diagfmt"
	"goat/internal/driver"
	"goat/internal/lower"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <unit.json>",
	Short: "Check a compilation unit and emit its desugared form",
	Long:  `Run the analysis pipeline and, when the unit is clean, print the lowered tree with builtins rewritten, enums expanded and error propagation desugared. Diagnostics go to stderr and suppress output`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLower,
}

func init() {
	lowerCmd.Flags().String("format", "json", "output format (json|text)")
	lowerCmd.Flags().Int("jobs", 0, "max parallel per-file workers (0=auto)")
	lowerCmd.Flags().Bool("no-cache", false, "bypass the disk cache for this run")
	lowerCmd.Flags().String("output", "", "write the lowered tree to a file instead of stdout")
}

func runLower(cmd *cobra.Command, args []string) error {
	treePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	opts, err := pipelineOptions(cmd, treePath, noCache)
	if err != nil {
		return err
	}

	result, fileSet, err := driver.AnalyzeTreeFile(cmd.Context(), treePath, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if result.Bag.HasErrors() {
		colored, err := useColor(cmd)
		if err != nil {
			return err
		}
		diagfmt.Pretty(os.Stderr, result.Bag, fileSet, diagfmt.PrettyOpts{
			Color:     colored,
			ShowNotes: true,
		})
		os.Exit(1)
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		if err := ast.EncodeUnit(out, result.Lowered); err != nil {
			return fmt.Errorf("failed to encode lowered tree: %w", err)
		}
	case "text":
		fmt.Fprint(out, lower.Dump(result.Lowered))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
