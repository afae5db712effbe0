package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "lexigen",
		Short: "Lexigen - vocabulary to image dataset pipeline",
		Long: `Lexigen turns a vocabulary CSV into a labeled image dataset.
It drafts one generation prompt per word, synthesizes images for each
prompt, scores prompt/image similarity and exports a normalized CSV.
Completed stages are cached on disk and skipped on re-runs.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to JSON config file (default: $LEXIGEN_CONFIG)")

	rootCmd.AddCommand(
		runCmd(),
		validateCmd(),
		configCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd shows version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Lexigen %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)
		},
	}
}

// maskSecret masks an API key for display
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
