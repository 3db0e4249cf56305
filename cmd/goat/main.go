package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"goat/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "goat",
	Short: "Goat static analyzer and desugaring pipeline",
	Long:  `Goat checks parsed compilation units for visibility, builtin, enum and error-propagation violations, then lowers the extended constructs to plain declarations`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
