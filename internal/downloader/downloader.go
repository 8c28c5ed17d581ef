package downloader

import (
	"context"
	"fmt"
	"time"

	"vscoscraper/pkg/browser"
	"vscoscraper/pkg/config"
	"vscoscraper/pkg/errors"
	"vscoscraper/pkg/logger"
	"vscoscraper/pkg/models"
	"vscoscraper/pkg/retry"
)

// Extractor resolves a work item's media page into downloadable resources.
// The page is opened on the leased browser context the caller provides.
type Extractor interface {
	Extract(ctx context.Context, pc *browser.PooledContext, item models.WorkItem) (*models.ExtractedMedia, error)
}

// MediaFetcher downloads the raw bytes behind a resolved resource URL.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, mediaURL string) ([]byte, error)
}

// MediaStorage persists media bytes and answers dedup queries.
type MediaStorage interface {
	// Exists reports whether media with this id is already on disk,
	// returning its path and size when it is.
	Exists(id string) (string, int64, bool)
	// Save writes data atomically, picking the extension from sourceURL,
	// and returns the final path and byte count.
	Save(id string, data []byte, sourceURL string) (string, int64, error)
}

// Downloader runs the per-item pipeline: dedup check, extraction, fetch,
// persist. Every item gets its configured number of attempts with
// exponential backoff between them; the outcome is always a DownloadResult,
// never an error, so one bad item cannot abort a batch.
type Downloader struct {
	extractor Extractor
	fetcher   MediaFetcher
	storage   MediaStorage
	cfg       *config.Config
	backoff   retry.BackoffStrategy
	logger    logger.Logger
}

// NewDownloader wires the pipeline stages together. Backoff follows the
// retry section of cfg: BaseDelay doubling per attempt up to MaxDelay,
// without jitter so delays stay predictable.
func NewDownloader(extractor Extractor, fetcher MediaFetcher, storage MediaStorage, cfg *config.Config, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Downloader{
		extractor: extractor,
		fetcher:   fetcher,
		storage:   storage,
		cfg:       cfg,
		backoff: &retry.ExponentialBackoff{
			BaseDelay:    cfg.Retry.BaseDelay.Duration(),
			MaxDelay:     cfg.Retry.MaxDelay.Duration(),
			Multiplier:   cfg.Retry.Multiplier,
			JitterFactor: 0,
		},
		logger: log,
	}
}

// DownloadWithRetry processes one work item on the given browser context.
// Failures are retried up to cfg.Retry.MaxAttempts total attempts; when they
// are exhausted the last error is folded into the result. The context only
// stops the waiting between attempts and the network work inside one, it
// does not skip the result.
func (d *Downloader) DownloadWithRetry(ctx context.Context, item models.WorkItem, pc *browser.PooledContext) models.DownloadResult {
	start := time.Now()

	var lastErr error
	result, err := retry.DoWithResult(func() (models.DownloadResult, error) {
		res, attemptErr := d.attempt(ctx, item, pc)
		if attemptErr != nil {
			lastErr = attemptErr
		}
		return res, attemptErr
	}, &retry.Config{
		MaxAttempts: d.cfg.Retry.MaxAttempts,
		Backoff:     d.backoff,
		RetryIf:     retry.RetryAll,
		Context:     ctx,
		Logger:      d.logger.WithField("media_id", item.ID),
	})

	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		result = models.DownloadResult{
			WorkItemID: item.ID,
			Success:    false,
			Error:      lastErr.Error(),
		}
	}

	result.Duration = time.Since(start)
	return result
}

// attempt is a single pass through the pipeline. The skip check comes first
// so reruns never refetch: an existing file short-circuits to a successful
// skipped result, with extraction still run best-effort to keep the manifest
// complete. Dry runs stop before any network or disk work.
func (d *Downloader) attempt(ctx context.Context, item models.WorkItem, pc *browser.PooledContext) (models.DownloadResult, error) {
	if err := ctx.Err(); err != nil {
		return models.DownloadResult{}, err
	}

	if path, size, ok := d.storage.Exists(item.ID); ok {
		result := models.DownloadResult{
			WorkItemID: item.ID,
			Success:    true,
			Skipped:    true,
			Filepath:   path,
			SizeBytes:  size,
		}
		if !d.cfg.Download.DryRun {
			media, err := d.extractor.Extract(ctx, pc, item)
			if err != nil {
				d.logger.WarnWithFields("metadata extraction failed for existing file", map[string]interface{}{
					"media_id": item.ID,
					"error":    err.Error(),
				})
			} else {
				result.Media = media
			}
		}
		return result, nil
	}

	if d.cfg.Download.DryRun {
		return models.DownloadResult{
			WorkItemID: item.ID,
			Success:    true,
			DryRun:     true,
		}, nil
	}

	media, err := d.extractor.Extract(ctx, pc, item)
	if err != nil {
		return models.DownloadResult{}, err
	}
	if media.ResourceURL == "" {
		return models.DownloadResult{}, &errors.Error{
			Type:    errors.ErrorTypeExtraction,
			Message: "page yielded no downloadable resource",
		}
	}

	data, err := d.fetcher.FetchMedia(ctx, media.ResourceURL)
	if err != nil {
		return models.DownloadResult{}, err
	}
	if len(data) == 0 {
		return models.DownloadResult{}, &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: "fetched media was empty",
		}
	}

	path, size, err := d.storage.Save(item.ID, data, media.ResourceURL)
	if err != nil {
		return models.DownloadResult{}, &errors.Error{
			Type:    errors.ErrorTypeStorage,
			Message: fmt.Sprintf("failed to persist media: %v", err),
		}
	}

	d.logger.DebugWithFields("media downloaded", map[string]interface{}{
		"media_id": item.ID,
		"path":     path,
		"size":     size,
	})

	return models.DownloadResult{
		WorkItemID: item.ID,
		Success:    true,
		Filepath:   path,
		SizeBytes:  size,
		Media:      media,
	}, nil
}
