package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"vscoscraper/pkg/config"
	"vscoscraper/pkg/logger"
	"vscoscraper/pkg/scraper"
	"vscoscraper/pkg/ui"
	"vscoscraper/pkg/ui/tui"
)

var (
	// Download command flags
	outputDir  string
	concurrent int
	batchSize  int
	noBatching bool
	batchDelay time.Duration
	maxRetries int
	timeout    time.Duration
	dryRun     bool
	limit      int
	rateLimit  int
	headful    bool
	useTUI     bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download <username>",
	Short: "Download all media from a public VSCO profile",
	Long: `Download every photo and video from a public VSCO profile at full
resolution.

The scraper opens the profile gallery in a headless browser, scrolls until
the whole gallery is loaded, then visits each media page to extract the
original-quality download URL. Media already present on disk is skipped, so
rerunning the same profile only fetches what is new.

Downloads run concurrently in batches, with a configurable pause between
batches to stay polite to the site.`,
	Example: `  # Download a profile with default settings
  vscoscraper download johndoe

  # The subcommand is optional, a bare username works too
  vscoscraper johndoe

  # Download to a specific directory with five parallel downloads
  vscoscraper download johndoe --output ./archive --concurrent 5

  # Fire the whole queue at once, limited only by concurrency
  vscoscraper download johndoe --no-batching

  # Preview the run without downloading anything
  vscoscraper download johndoe --dry-run --limit 20

  # Watch the run in the interactive dashboard
  vscoscraper download johndoe --tui`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runDownload(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	// Local flags for download command
	downloadCmd.Flags().StringVarP(&outputDir, "output", "o", "", "base directory for downloads (default ./downloads)")
	downloadCmd.Flags().IntVar(&concurrent, "concurrent", 3, "number of concurrent downloads (1-10)")
	downloadCmd.Flags().IntVar(&batchSize, "batch-size", 0, "items per batch (0 follows --concurrent)")
	downloadCmd.Flags().BoolVar(&noBatching, "no-batching", false, "disable batching, only the concurrency limit throttles work")
	downloadCmd.Flags().DurationVar(&batchDelay, "batch-delay", time.Second, "pause between batches")
	downloadCmd.Flags().IntVar(&maxRetries, "retries", 3, "attempts per item before giving up")
	downloadCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout per navigation or media fetch")
	downloadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "walk the pipeline without downloading anything")
	downloadCmd.Flags().IntVar(&limit, "limit", 0, "stop discovery after this many items (0 means all)")
	downloadCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute (0 disables pacing)")
	downloadCmd.Flags().BoolVar(&headful, "headful", false, "run the browser with a visible window")
	downloadCmd.Flags().BoolVar(&useTUI, "tui", false, "interactive terminal dashboard with live progress")

	// Mirror the flags on the root command so a bare
	// `vscoscraper <username>` accepts them as well.
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "base directory for downloads (default ./downloads)")
	rootCmd.Flags().IntVar(&concurrent, "concurrent", 3, "number of concurrent downloads (1-10)")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 0, "items per batch (0 follows --concurrent)")
	rootCmd.Flags().BoolVar(&noBatching, "no-batching", false, "disable batching, only the concurrency limit throttles work")
	rootCmd.Flags().DurationVar(&batchDelay, "batch-delay", time.Second, "pause between batches")
	rootCmd.Flags().IntVar(&maxRetries, "retries", 3, "attempts per item before giving up")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout per navigation or media fetch")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "walk the pipeline without downloading anything")
	rootCmd.Flags().IntVar(&limit, "limit", 0, "stop discovery after this many items (0 means all)")
	rootCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute (0 disables pacing)")
	rootCmd.Flags().BoolVar(&headful, "headful", false, "run the browser with a visible window")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "interactive terminal dashboard with live progress")
}

func runDownload(cmd *cobra.Command, args []string) {
	username := strings.TrimSpace(args[0])

	// Build flags map from command line. Only values that differ from the
	// flag defaults are passed on, so config file and environment settings
	// survive unless the user overrides them.
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if concurrent != 3 {
		flags["concurrent"] = concurrent
	}
	if batchSize != 0 {
		flags["batch-size"] = batchSize
	}
	if noBatching {
		flags["no-batching"] = true
	}
	if batchDelay != time.Second {
		flags["batch-delay"] = batchDelay
	}
	if maxRetries != 3 {
		flags["retries"] = maxRetries
	}
	if timeout != 30*time.Second {
		flags["timeout"] = timeout
	}
	if dryRun {
		flags["dry-run"] = true
	}
	if limit > 0 {
		flags["limit"] = limit
	}
	if rateLimit > 0 {
		flags["rate-limit"] = rateLimit
	}
	if headful {
		flags["headless"] = false
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("VSCO Scraper starting")

	// Ctrl-C cancels the run. In-flight downloads finish their current
	// attempt and the checkpoint keeps what completed, so the next run
	// picks up where this one stopped.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}
	if quiet {
		s.SetQuiet(true)
	}

	if useTUI {
		runWithTUI(ctx, s, username)
		return
	}

	if !quiet {
		ui.PrintLogo()
	}

	if err := s.Run(ctx, username); err != nil {
		log.WithError(err).WithField("username", username).Error("Download run failed")
		ui.PrintError("DOWNLOAD FAILED", err.Error())
		os.Exit(1)
	}

	log.WithField("username", username).Info("Download run completed")
}

// runWithTUI drives the scraper underneath the interactive dashboard.
// Quitting the dashboard cancels the run; the run finishing tears the
// dashboard down.
func runWithTUI(ctx context.Context, s *scraper.Scraper, username string) {
	log := logger.GetLogger()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	terminal := tui.NewTUI()
	terminal.Start()
	s.SetTUI(terminal)

	runDone := make(chan error, 1)
	go func() {
		runDone <- s.Run(ctx, username)
	}()

	tuiDone := make(chan error, 1)
	go func() {
		tuiDone <- terminal.Wait()
	}()

	var runErr error
	select {
	case runErr = <-runDone:
		terminal.Stop()
		<-tuiDone
	case err := <-tuiDone:
		// The user quit the dashboard before the run finished.
		if err != nil {
			log.WithError(err).Error("Dashboard exited with an error")
		}
		cancel()
		runErr = <-runDone
	}

	// A run that ended because the user quit the dashboard is not a
	// failure.
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.WithError(runErr).WithField("username", username).Error("Download run failed")
		ui.PrintError("DOWNLOAD FAILED", runErr.Error())
		os.Exit(1)
	}

	log.WithField("username", username).Info("Download run completed")
}

// Make download the default command when no subcommand is specified
func init() {
	origRunE := rootCmd.RunE
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if origRunE != nil {
			return origRunE(cmd, args)
		}
		if len(args) > 0 && !isKnownCommand(args[0]) {
			// Treat a bare first argument as a username. The flag
			// variables are shared with downloadCmd, so nothing needs
			// to be copied over.
			return downloadCmd.RunE(downloadCmd, args)
		}
		return cmd.Help()
	}

	rootCmd.Args = cobra.ArbitraryArgs
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
