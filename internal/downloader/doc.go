// Package downloader contains the download engine: a per-item pipeline
// with retries and the orchestration that runs many items concurrently.
//
// The engine has three moving parts:
//
//   - Downloader runs one item through dedup check, page extraction, media
//     fetch, and persist, retrying the whole attempt with exponential
//     backoff. It reports an outcome per item instead of an error, so a
//     broken item never takes the run down.
//
//   - The batch scheduler (Orchestrator.processBatch) runs one slice of the
//     queue. A first-in first-out semaphore admits at most the configured
//     number of tasks, and every admitted task leases a browser context for
//     the duration of its download. Slots and contexts are released on all
//     exit paths.
//
//   - Orchestrator cuts the queue into batches, pauses between them, and
//     stitches per-batch results back together so the caller gets exactly
//     one result per queued item, positionally matched to the input.
//
// The concurrency limit and the browser pool size are validated together
// at construction: a pool smaller than the limit would make admitted tasks
// fail to lease a context, which is a configuration bug, not a runtime
// condition to tolerate.
//
// Typical wiring:
//
//	dl := downloader.NewDownloader(extractor, client, store, cfg, log)
//	orc, err := downloader.NewOrchestrator(pool, dl, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer orc.Cleanup()
//
//	results, err := orc.DownloadConcurrently(ctx, items)
package downloader
