package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"vscoscraper/pkg/ui"
)

var (
	// Version information, overridden at build time via -ldflags
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vscoscraper",
	Short: "A fast VSCO gallery downloader with concurrent full-resolution extraction",
	Long: `VSCO Scraper is a command-line tool for archiving public VSCO profiles
at full resolution.

Features:
  - Headless browser extraction of original-quality media URLs
  - Concurrent downloads through a pooled browser context fleet
  - Batched scheduling with configurable pacing between batches
  - Automatic retry with exponential backoff
  - Skips media already on disk, so interrupted runs resume for free
  - JSON manifest describing every archived item
  - Interactive terminal dashboard (--tui)

For more information and examples, visit: https://github.com/marcusziade/vscoscraper`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColorsEnabled(false)
		}

		// --verbose lowers the log floor, --quiet raises it. An explicit
		// --log-level wins over both.
		if !cmd.Flags().Changed("log-level") {
			if verbose {
				logLevel = "debug"
			} else if quiet {
				logLevel = "error"
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.vscoscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Version template
	rootCmd.SetVersionTemplate(`VSCO Scraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
