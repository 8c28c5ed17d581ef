// Package retry provides exponential backoff and retry logic for handling
// transient failures in page navigations and media fetches.
//
// Features:
//   - Exponential and constant backoff strategies
//   - Optional jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Configurable retry predicates
//   - Integration with the scraper's typed errors
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return fetchGalleryPage(username)
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 5,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    2 * time.Second,
//			MaxDelay:     30 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// The default predicate consults the scraper's error taxonomy: network,
// rate limit, server and navigation errors retry; extraction and not-found
// errors do not. Pass retry.RetryAll to retry every failure uniformly.
package retry
