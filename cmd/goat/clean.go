package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"goat/internal/driver"
	"goat/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove the analysis disk cache",
	Long:  "Remove the per-run analysis cache of the project whose manifest governs the given path.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func runClean(_ *cobra.Command, args []string) error {
	baseDir := "."
	if len(args) > 0 && args[0] != "" {
		baseDir = args[0]
	}
	info, err := os.Stat(baseDir)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", baseDir, err)
	}
	if !info.IsDir() {
		baseDir = filepath.Dir(baseDir)
	}

	cfg, root, err := project.LoadFromDir(baseDir)
	if err != nil {
		return err
	}
	dir := cfg.ResolveCacheDir(root)
	if dir == "" {
		fmt.Fprintln(os.Stdout, "no cache configured")
		return nil
	}

	cache, err := driver.OpenDiskCache("goat", dir)
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to remove cache: %w", err)
	}
	fmt.Fprintf(os.Stdout, "removed %s\n", dir)
	return nil
}
