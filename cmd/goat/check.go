package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"goat/internal/diagfmt"
	"goat/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <unit.json>",
	Short: "Run the full analysis pipeline over a parsed compilation unit",
	Long:  `Run symbol collection, visibility resolution, builtin, enum and error-propagation checks over a serialized compilation unit and report every diagnostic found`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("preview", false, "show source previews with carets")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Int("jobs", 0, "max parallel per-file workers (0=auto)")
	checkCmd.Flags().Bool("no-cache", false, "bypass the disk cache for this run")
	checkCmd.Flags().Bool("report-unobserved", false, "report fire-and-forget launches that discard errors")
}

func runCheck(cmd *cobra.Command, args []string) error {
	treePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	reportUnobserved, err := cmd.Flags().GetBool("report-unobserved")
	if err != nil {
		return fmt.Errorf("failed to get report-unobserved flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	opts, err := pipelineOptions(cmd, treePath, noCache)
	if err != nil {
		return err
	}
	if reportUnobserved {
		opts.ReportUnobservedPromises = true
	}

	result, fileSet, err := driver.AnalyzeTreeFile(cmd.Context(), treePath, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch format {
	case "pretty":
		colored, err := useColor(cmd)
		if err != nil {
			return err
		}
		if result.Bag.Len() > 0 || !quiet {
			diagfmt.Pretty(os.Stdout, result.Bag, fileSet, diagfmt.PrettyOpts{
				Color:       colored,
				PathMode:    pathMode,
				ShowNotes:   withNotes,
				ShowPreview: preview,
			})
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			Max:              opts.MaxDiagnostics,
		}
		if err := diagfmt.JSON(os.Stdout, result.Bag, fileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if result.Bag.HasErrors() {
		os.Exit(1)
	}
	return nil
}
