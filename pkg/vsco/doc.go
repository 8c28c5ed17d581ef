// Package vsco provides the site-specific pieces of the VSCO scraper.
//
// This package includes:
//   - URL builders and username validation for vsco.co
//   - A profile scraper that walks a user's gallery with a leased browser
//     context and assembles the download work queue
//   - A media extractor that pulls the full-size resource URL and auxiliary
//     metadata out of a media detail page
//   - An HTTP client for fetching media bytes with browser-like headers and
//     optional rate limiting
//
// The download orchestration layer consumes these through small interfaces,
// so everything VSCO-specific (DOM selectors, URL shapes, CDN quirks) stays
// in this package.
//
// Example usage:
//
//	scraper := vsco.NewProfileScraper(cfg, log)
//	items, err := scraper.FetchWorkQueue(ctx, leasedContext, "username", 0)
//	if err != nil {
//	    if scrapeErr, ok := err.(*errors.Error); ok {
//	        switch scrapeErr.Type {
//	        case errors.ErrorTypeNotFound:
//	            // Profile does not exist
//	        case errors.ErrorTypeNavigation:
//	            // Gallery would not load
//	        }
//	    }
//	}
package vsco
