// Package browser manages a pool of reusable headless browser contexts.
//
// Every download needs an isolated browser context to render VSCO's
// JavaScript-driven media pages, but launching a context per item is far too
// expensive. The pool keeps a small set of warm contexts and hands them out
// one lease at a time.
//
// Lifecycle:
//   - Initialize() launches the browser engine and warms one context
//   - Acquire() leases an idle context, growing the pool up to the
//     configured maximum
//   - Release() returns the lease and retires contexts that have hit
//     their use limit
//   - Cleanup() tears everything down
//
// Contexts are recycled once they exceed their configured lifetime or use
// count, so long scraping runs do not accumulate browser state.
//
// Acquire never blocks. When every context is leased it fails with a
// pool_exhausted error; callers are expected to bound their own concurrency
// (the download scheduler admits at most as many workers as the pool can
// hold) so a full pool indicates a bug rather than ordinary contention.
//
// Usage:
//
//	pool := browser.NewPool(cfg, log)
//	if err := pool.Initialize(); err != nil {
//	    return err
//	}
//	defer pool.Cleanup()
//
//	pc, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(pc)
//
//	page, err := pc.NewPage()
package browser
