package downloader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"vscoscraper/pkg/browser"
	"vscoscraper/pkg/config"
	"vscoscraper/pkg/errors"
	"vscoscraper/pkg/logger"
	"vscoscraper/pkg/models"
	"vscoscraper/pkg/retry"
)

// ContextPool leases browser contexts to download tasks. *browser.Pool
// implements it; tests substitute lighter fakes.
type ContextPool interface {
	Acquire() (*browser.PooledContext, error)
	Release(pc *browser.PooledContext)
	Size() int
	Available() int
	Cleanup()
}

// ItemDownloader processes one work item on a leased browser context.
type ItemDownloader interface {
	DownloadWithRetry(ctx context.Context, item models.WorkItem, pc *browser.PooledContext) models.DownloadResult
}

// ResultHandler observes each finished item. Handlers are invoked serially,
// so they may touch shared state without their own locking.
type ResultHandler func(result models.DownloadResult)

// Orchestrator drives a download run: it slices the work queue into
// batches, bounds in-flight work with a concurrency gate, and pairs every
// in-flight task with a leased browser context. One result comes back per
// queued item, in queue order.
type Orchestrator struct {
	pool       ContextPool
	downloader ItemDownloader
	cfg        *config.Config
	logger     logger.Logger

	downloaded atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64

	handlerMu sync.Mutex
	onResult  ResultHandler
}

// NewOrchestrator validates the orchestration settings and builds the
// scheduler. A concurrency limit outside 1..10 or a browser pool smaller
// than the limit is a configuration bug and is rejected outright rather
// than surfacing later as stalled downloads.
func NewOrchestrator(pool ContextPool, dl ItemDownloader, cfg *config.Config, log logger.Logger) (*Orchestrator, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	maxConcurrency := cfg.Download.MaxConcurrency
	if maxConcurrency < 1 || maxConcurrency > 10 {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeConfig,
			Message: fmt.Sprintf("max concurrency must be between 1 and 10, got %d", maxConcurrency),
		}
	}
	if cfg.Browser.MaxPoolSize < maxConcurrency {
		return nil, &errors.Error{
			Type: errors.ErrorTypeConfig,
			Message: fmt.Sprintf("browser pool size %d cannot hold %d concurrent downloads",
				cfg.Browser.MaxPoolSize, maxConcurrency),
		}
	}

	return &Orchestrator{
		pool:       pool,
		downloader: dl,
		cfg:        cfg,
		logger:     log,
	}, nil
}

// SetResultHandler registers a callback for finished items. Call it before
// DownloadConcurrently; results already delivered are not replayed.
func (o *Orchestrator) SetResultHandler(handler ResultHandler) {
	o.handlerMu.Lock()
	defer o.handlerMu.Unlock()
	o.onResult = handler
}

// DownloadConcurrently processes the whole work queue and returns one
// result per item, positionally matched: results[i] belongs to items[i]
// no matter in which order the downloads finished. When batching is
// enabled the queue is cut into consecutive slices with a pause between
// them; otherwise the queue runs as a single batch and only the
// concurrency gate throttles it.
//
// Cancellation returns the results accumulated so far together with the
// context's error. Items of the interrupted batch still produce failed
// results, so completed batches are never lost.
func (o *Orchestrator) DownloadConcurrently(ctx context.Context, items []models.WorkItem) ([]models.DownloadResult, error) {
	if len(items) == 0 {
		return []models.DownloadResult{}, nil
	}

	batchSize := len(items)
	if o.cfg.Download.EnableBatching {
		batchSize = o.cfg.Download.EffectiveBatchSize()
	}
	if batchSize < 1 {
		batchSize = 1
	}
	totalBatches := (len(items) + batchSize - 1) / batchSize

	o.logger.InfoWithFields("starting download run", map[string]interface{}{
		"items":           len(items),
		"batch_size":      batchSize,
		"batches":         totalBatches,
		"max_concurrency": o.cfg.Download.MaxConcurrency,
	})

	results := make([]models.DownloadResult, 0, len(items))
	for start := 0; start < len(items); start += batchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}

		batchStart := time.Now()
		results = append(results, o.processBatch(ctx, items[start:end])...)
		logger.LogBatchProgress(start/batchSize+1, totalBatches, end-start, time.Since(batchStart))

		if end < len(items) {
			if err := retry.Wait(ctx, o.cfg.Download.DelayBetweenBatches.Duration()); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}

// Stats returns the counters accumulated across all runs of this
// orchestrator.
func (o *Orchestrator) Stats() models.Stats {
	return models.Stats{
		Downloaded: o.downloaded.Load(),
		Skipped:    o.skipped.Load(),
		Failed:     o.failed.Load(),
	}
}

// PoolSize reports how many browser contexts currently exist.
func (o *Orchestrator) PoolSize() int {
	return o.pool.Size()
}

// AvailableContexts reports how many browser contexts are free.
func (o *Orchestrator) AvailableContexts() int {
	return o.pool.Available()
}

// Cleanup tears down the browser pool.
func (o *Orchestrator) Cleanup() {
	o.pool.Cleanup()
}
