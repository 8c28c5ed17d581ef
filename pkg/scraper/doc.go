// Package scraper ties the pipeline together: it discovers a VSCO profile's
// public gallery, builds the download queue, and hands it to the concurrent
// download orchestrator.
//
// Architecture:
//
// A Run performs, in order:
//   - Username sanitizing and validation
//   - Storage setup with an on-disk dedup scan
//   - Checkpoint load-or-create, so interrupted runs keep their history
//   - Browser pool initialization
//   - Profile scraping with a leased browser context
//   - Concurrent downloading through internal/downloader
//   - Manifest write, checkpoint finalize, and a terminal summary
//
// Progress is reported through the plain-terminal tracker or, when a TUI has
// been attached with SetTUI, through the interactive dashboard.
//
// Usage:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := s.Run(context.Background(), "vsco_username"); err != nil {
//	    log.Fatal(err)
//	}
//
// Rate Limiting:
//
// Media fetches go through a token bucket limiter sized from the rate_limit
// config section. A zero requests_per_minute disables pacing; page
// navigations are already throttled by the batching scheduler's delays.
//
// Storage:
//
// Downloaded media land in the configured output directory, one folder per
// username when create_user_folders is set. Items whose files already exist
// are skipped without any network traffic, which is also what makes reruns
// and resumes cheap.
package scraper
