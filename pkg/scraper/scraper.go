package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"vscoscraper/internal/downloader"
	"vscoscraper/pkg/browser"
	"vscoscraper/pkg/checkpoint"
	"vscoscraper/pkg/config"
	"vscoscraper/pkg/errors"
	"vscoscraper/pkg/logger"
	"vscoscraper/pkg/metadata"
	"vscoscraper/pkg/models"
	"vscoscraper/pkg/ratelimit"
	"vscoscraper/pkg/storage"
	"vscoscraper/pkg/ui"
	"vscoscraper/pkg/vsco"
)

// Scraper orchestrates the VSCO gallery download process
type Scraper struct {
	cfg       *config.Config
	logger    logger.Logger
	pool      BrowserPool
	producer  WorkQueueProducer
	extractor downloader.Extractor
	fetcher   downloader.MediaFetcher
	notifier  *ui.Notifier
	tui       ui.TUI
	quiet     bool
}

// New creates a new Scraper instance
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	limiter := ratelimit.FromConfig(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
	client := vsco.NewClient(cfg.Download.Timeout.Duration(), cfg.VSCO.UserAgent, limiter, log)

	return &Scraper{
		cfg:       cfg,
		logger:    log,
		pool:      browser.NewPool(cfg, log),
		producer:  vsco.NewProfileScraper(cfg, log),
		extractor: vsco.NewMediaExtractor(cfg, log),
		fetcher:   client,
		notifier:  ui.NewNotifier(),
	}, nil
}

// SetTUI sets the terminal UI for the scraper
func (s *Scraper) SetTUI(tui ui.TUI) {
	s.tui = tui
}

// SetQuiet suppresses the plain-terminal progress output. The TUI, when
// attached, is unaffected.
func (s *Scraper) SetQuiet(quiet bool) {
	s.quiet = quiet
}

// Run scrapes every media item on a user's public gallery and downloads it
// through the orchestrator. Partial work survives cancellation: a later run
// resumes through the on-disk skip check and the checkpoint.
func (s *Scraper) Run(ctx context.Context, username string) error {
	username = vsco.SanitizeUsername(username)
	if !vsco.IsValidUsername(username) {
		return &errors.Error{
			Type:    errors.ErrorTypeConfig,
			Message: fmt.Sprintf("invalid VSCO username %q", username),
		}
	}

	log := s.logger.WithField("username", username)
	s.announceStart(username)

	store, err := storage.NewManager(s.outputDir(username))
	if err != nil {
		log.WithError(err).Error("failed to create storage manager")
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	var (
		checkpointMgr *checkpoint.Manager
		state         *checkpoint.RunState
	)
	if !s.cfg.Download.DryRun {
		checkpointMgr, state = s.loadRunState(username)
	}

	if err := s.pool.Initialize(); err != nil {
		log.WithError(err).Error("failed to initialize browser pool")
		return fmt.Errorf("failed to initialize browser pool: %w", err)
	}
	defer s.pool.Cleanup()

	items, err := s.discoverQueue(ctx, username)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		log.Info("no public media found")
		if s.tui != nil {
			s.tui.LogWarning("No public media found for @%s", username)
		} else if !s.quiet {
			ui.PrintWarning("No public media found", "@"+username)
		}
		return nil
	}

	log.InfoWithFields("work queue ready", map[string]interface{}{
		"items":   len(items),
		"dry_run": s.cfg.Download.DryRun,
	})

	var tracker *ui.DownloadTracker
	if s.tui != nil {
		s.tui.SetQueue(username, len(items))
	} else {
		tracker = ui.NewDownloadTracker(username, len(items), s.quiet)
	}

	if checkpointMgr != nil {
		state.TotalQueued = len(items)
		if err := checkpointMgr.Save(state); err != nil {
			log.WithError(err).Warn("failed to save checkpoint")
		}
	}

	dl := downloader.NewDownloader(s.extractor, s.fetcher, store, s.cfg, s.logger)
	orc, err := downloader.NewOrchestrator(s.pool, dl, s.cfg, s.logger)
	if err != nil {
		return err
	}

	orc.SetResultHandler(func(result models.DownloadResult) {
		if s.tui != nil {
			s.tui.RecordResult(result)
		} else if tracker != nil {
			tracker.RecordResult(result)
		}

		if checkpointMgr == nil || result.DryRun {
			return
		}
		if result.Success {
			if err := checkpointMgr.RecordSuccess(state, result.WorkItemID, filepath.Base(result.Filepath)); err != nil {
				log.WithError(err).Warn("failed to record success in checkpoint")
			}
		} else {
			if err := checkpointMgr.RecordFailure(state, result.WorkItemID, result.Error); err != nil {
				log.WithError(err).Warn("failed to record failure in checkpoint")
			}
		}
	})

	start := time.Now()
	results, runErr := orc.DownloadConcurrently(ctx, items)
	elapsed := time.Since(start)

	if s.cfg.Output.SaveManifest && !s.cfg.Download.DryRun && len(results) > 0 {
		s.writeManifest(username, store.OutputDir(), items, results)
	}

	stats := orc.Stats()
	log.InfoWithFields("scrape finished", map[string]interface{}{
		"downloaded": stats.Downloaded,
		"skipped":    stats.Skipped,
		"failed":     stats.Failed,
		"duration":   elapsed.String(),
	})

	if runErr != nil {
		if s.tui != nil {
			s.tui.LogError("Run aborted: %v", runErr)
		} else if !s.quiet {
			ui.PrintError("\nRun aborted", runErr)
		}
		return fmt.Errorf("download run aborted: %w", runErr)
	}

	if checkpointMgr != nil && stats.Failed == 0 {
		if err := checkpointMgr.Delete(); err != nil {
			log.WithError(err).Warn("failed to delete checkpoint")
		}
	}

	s.announceFinish(username, tracker, stats)
	return nil
}

// outputDir determines the output directory for a username
func (s *Scraper) outputDir(username string) string {
	if s.cfg.Output.CreateUserFolders {
		return filepath.Join(s.cfg.Output.BaseDirectory, username)
	}
	return s.cfg.Output.BaseDirectory
}

// loadRunState opens the previous checkpoint for username or starts a fresh
// one. It never fails the run: when the checkpoint cannot be used the
// returned manager is nil and recording is skipped.
func (s *Scraper) loadRunState(username string) (*checkpoint.Manager, *checkpoint.RunState) {
	mgr, err := checkpoint.NewManager(username)
	if err != nil {
		s.logger.WithError(err).Warn("checkpoint unavailable, run will not be resumable")
		return nil, nil
	}

	state, err := mgr.Load()
	if err != nil {
		s.logger.WithError(err).Warn("could not read previous checkpoint, starting fresh")
	}
	if state == nil {
		state, err = mgr.Create(username)
		if err != nil {
			s.logger.WithError(err).Warn("could not create checkpoint, run will not be resumable")
			return nil, nil
		}
	}

	return mgr, state
}

// discoverQueue leases a browser context and walks the profile gallery.
func (s *Scraper) discoverQueue(ctx context.Context, username string) ([]models.WorkItem, error) {
	pc, err := s.pool.Acquire()
	if err != nil {
		s.logger.WithError(err).Error("failed to acquire browser context for profile scrape")
		return nil, fmt.Errorf("failed to acquire browser context: %w", err)
	}
	defer s.pool.Release(pc)

	items, err := s.producer.FetchWorkQueue(ctx, pc, username, s.cfg.Download.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape profile gallery: %w", err)
	}
	return items, nil
}

// writeManifest persists run metadata next to the downloaded files. Failures
// are logged, never fatal: the downloads themselves already happened.
func (s *Scraper) writeManifest(username, dir string, items []models.WorkItem, results []models.DownloadResult) {
	manifest := metadata.Build(username, items, results)
	path := filepath.Join(dir, s.cfg.Output.ManifestFilename)

	if prev, err := metadata.Load(path); err == nil {
		manifest.MergePrevious(prev)
	}

	if err := manifest.Save(path); err != nil {
		s.logger.WithError(err).WithField("path", path).Error("failed to save manifest")
		return
	}
	s.logger.WithField("path", path).Debug("manifest saved")
}

func (s *Scraper) announceStart(username string) {
	if s.tui != nil {
		s.tui.LogInfo("Starting gallery scrape for @%s", username)
		return
	}
	if s.quiet {
		return
	}
	if s.cfg.Download.DryRun {
		ui.PrintInfo("Dry run", "no files will be written")
	}
	ui.PrintHighlight(fmt.Sprintf("\n[SCRAPING @%s]\n", username))
}

func (s *Scraper) announceFinish(username string, tracker *ui.DownloadTracker, stats models.Stats) {
	if s.cfg.Download.DryRun {
		summary := fmt.Sprintf("%d media would be downloaded, %d already on disk", stats.Downloaded, stats.Skipped)
		if s.tui != nil {
			s.tui.LogSuccess("Dry run finished: %s", summary)
		} else if !s.quiet {
			ui.PrintInfo("Dry run finished", summary)
		}
		return
	}

	if s.tui != nil {
		s.tui.LogSuccess("Finished @%s: %d downloaded, %d skipped, %d failed",
			username, stats.Downloaded, stats.Skipped, stats.Failed)
	} else if tracker != nil {
		tracker.Summary()
	}

	if stats.Failed > 0 {
		s.notifier.SendError("VSCO Scraper", fmt.Sprintf("@%s finished with %d failed downloads", username, stats.Failed))
		return
	}
	s.notifier.SendSuccess("VSCO Scraper", fmt.Sprintf("Downloaded %d media from @%s", stats.Downloaded, username))
}
