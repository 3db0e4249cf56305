package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"goat/internal/driver"
	"goat/internal/project"
)

// pipelineOptions resolves the manifest for the tree file's directory and
// folds command-line overrides on top of it. Flags win over goat.toml.
func pipelineOptions(cmd *cobra.Command, treePath string, noCache bool) (driver.Options, error) {
	var opts driver.Options

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}

	abs, err := filepath.Abs(treePath)
	if err != nil {
		return opts, fmt.Errorf("failed to resolve path: %w", err)
	}

	cfg, root, err := project.LoadFromDir(filepath.Dir(abs))
	if err != nil {
		return opts, err
	}

	opts.Jobs = cfg.Check.Jobs
	if jobs > 0 {
		opts.Jobs = jobs
	}
	opts.MaxDiagnostics = cfg.Check.MaxDiagnostics
	if cmd.Root().PersistentFlags().Changed("max-diagnostics") || opts.MaxDiagnostics == 0 {
		opts.MaxDiagnostics = maxDiagnostics
	}
	opts.ReportUnobservedPromises = cfg.Check.UnobservedErrors == project.UnobservedReport

	if dir := cfg.ResolveCacheDir(root); dir != "" && !noCache {
		cache, err := driver.OpenDiskCache("goat", dir)
		if err != nil {
			return opts, fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}
	return opts, nil
}

// useColor resolves the persistent --color flag against the terminal.
func useColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("unknown color value: %s", colorFlag)
	}
}
