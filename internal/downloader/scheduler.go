package downloader

import (
	"context"

	"golang.org/x/sync/errgroup"

	"vscoscraper/pkg/models"
	"vscoscraper/pkg/semaphore"
)

// processBatch runs one batch with bounded concurrency and returns its
// results in batch order. Each item becomes a task that first claims a
// concurrency slot, then leases a browser context for the duration of the
// download. The semaphore admits waiters first-come first-served, so items
// start in queue order even when the batch is larger than the limit.
//
// Tasks never return errors: every failure is folded into the item's
// result, and a failing item never aborts its siblings.
func (o *Orchestrator) processBatch(ctx context.Context, batch []models.WorkItem) []models.DownloadResult {
	limit := o.cfg.Download.MaxConcurrency
	if len(batch) < limit {
		limit = len(batch)
	}
	sem := semaphore.New(limit)

	results := make([]models.DownloadResult, len(batch))
	g := new(errgroup.Group)
	for i, item := range batch {
		i, item := i, item // per-iteration copies; go directive < 1.22
		g.Go(func() error {
			results[i] = o.processItem(ctx, item, sem)
			o.record(results[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// processItem runs one item through the gate, the pool, and the download
// pipeline. Slot and context are both returned on every exit path.
func (o *Orchestrator) processItem(ctx context.Context, item models.WorkItem, sem *semaphore.Semaphore) models.DownloadResult {
	if err := sem.Acquire(ctx); err != nil {
		return failedResult(item, err)
	}
	defer sem.Release()

	pc, err := o.pool.Acquire()
	if err != nil {
		o.logger.ErrorWithFields("no browser context for download", map[string]interface{}{
			"media_id": item.ID,
			"error":    err.Error(),
		})
		return failedResult(item, err)
	}
	defer o.pool.Release(pc)

	return o.downloader.DownloadWithRetry(ctx, item, pc)
}

// record updates the run counters and notifies the result handler. Handler
// calls are serialized across tasks.
func (o *Orchestrator) record(result models.DownloadResult) {
	switch {
	case result.Skipped:
		o.skipped.Add(1)
	case result.Success:
		o.downloaded.Add(1)
	default:
		o.failed.Add(1)
	}

	o.handlerMu.Lock()
	handler := o.onResult
	if handler != nil {
		handler(result)
	}
	o.handlerMu.Unlock()
}

func failedResult(item models.WorkItem, err error) models.DownloadResult {
	return models.DownloadResult{
		WorkItemID: item.ID,
		Success:    false,
		Error:      err.Error(),
	}
}
