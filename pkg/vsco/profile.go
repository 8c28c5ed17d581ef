package vsco

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"vscoscraper/pkg/browser"
	"vscoscraper/pkg/config"
	"vscoscraper/pkg/errors"
	"vscoscraper/pkg/logger"
	"vscoscraper/pkg/models"
	"vscoscraper/pkg/retry"
)

const (
	// maxScrollPasses caps how far an infinite gallery is walked
	maxScrollPasses = 40

	// scrollSettleDelay gives lazily loaded rows time to render
	scrollSettleDelay = 700 * time.Millisecond

	// stalePassLimit stops scrolling after this many passes without new media
	stalePassLimit = 3

	// galleryRetryAttempts covers flaky first loads of the gallery page
	galleryRetryAttempts = 3
)

// ProfileScraper discovers a user's media by walking their public gallery
// with a leased browser context.
type ProfileScraper struct {
	timeout time.Duration
	logger  logger.Logger
}

// NewProfileScraper creates a profile scraper using the configured
// navigation timeout.
func NewProfileScraper(cfg *config.Config, log logger.Logger) *ProfileScraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &ProfileScraper{
		timeout: cfg.Download.Timeout.Duration(),
		logger:  log,
	}
}

// FetchWorkQueue loads the user's gallery, scrolls until no new media
// appears (or limit is reached), and returns the work queue in gallery
// order. A limit of 0 means no limit.
func (s *ProfileScraper) FetchWorkQueue(ctx context.Context, pc *browser.PooledContext, username string, limit int) ([]models.WorkItem, error) {
	page, err := pc.NewPage()
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeBrowser,
			Message: fmt.Sprintf("failed to open page: %v", err),
		}
	}
	defer page.Close()

	if err := s.openGallery(ctx, page, username); err != nil {
		return nil, err
	}

	entries, err := s.scrollForMedia(ctx, page, username, limit)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeExtraction,
			Message: fmt.Sprintf("no media found for %s", username),
		}
	}

	items := ToWorkItems(entries)
	s.logger.InfoWithFields("work queue assembled", map[string]interface{}{
		"username": username,
		"items":    len(items),
	})

	return items, nil
}

// openGallery navigates to the gallery page, retrying flaky loads. A 404
// means the profile does not exist and is not retried.
func (s *ProfileScraper) openGallery(ctx context.Context, page playwright.Page, username string) error {
	galleryURL := GalleryURL(username)

	return retry.Do(func() error {
		resp, err := page.Goto(galleryURL, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(s.timeout.Milliseconds())),
		})
		if err != nil {
			return &errors.Error{
				Type:    errors.ErrorTypeNavigation,
				Message: fmt.Sprintf("failed to load gallery: %v", err),
			}
		}
		if resp != nil && resp.Status() == http.StatusNotFound {
			return &errors.Error{
				Type:    errors.ErrorTypeNotFound,
				Message: fmt.Sprintf("profile %s not found", username),
				Code:    http.StatusNotFound,
			}
		}
		return nil
	}, &retry.Config{
		MaxAttempts: galleryRetryAttempts,
		Backoff:     &retry.ConstantBackoff{Delay: time.Second},
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      s.logger,
	})
}

// scrollForMedia repeatedly scrolls the gallery to trigger lazy loading,
// parsing the page after each pass until the media list stops growing.
func (s *ProfileScraper) scrollForMedia(ctx context.Context, page playwright.Page, username string, limit int) ([]ProfileMedia, error) {
	var entries []ProfileMedia
	stale := 0

	for pass := 0; pass < maxScrollPasses; pass++ {
		html, err := page.Content()
		if err != nil {
			return nil, &errors.Error{
				Type:    errors.ErrorTypeExtraction,
				Message: fmt.Sprintf("failed to read gallery content: %v", err),
			}
		}

		found := ParseGallery(html, username)
		if len(found) > len(entries) {
			entries = found
			stale = 0
		} else {
			stale++
		}

		logger.LogScrapeProgress(username, len(entries), limit)

		if limit > 0 && len(entries) >= limit {
			break
		}
		if stale >= stalePassLimit {
			break
		}

		if _, err := page.Evaluate("window.scrollTo(0, document.body.scrollHeight)"); err != nil {
			s.logger.WarnWithFields("gallery scroll failed", map[string]interface{}{
				"username": username,
				"error":    err.Error(),
			})
			break
		}
		if err := retry.Wait(ctx, scrollSettleDelay); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// ParseGallery extracts media entries from gallery HTML, in render order.
// Links into other profiles (reposts, related media) are ignored.
func ParseGallery(html, username string) []ProfileMedia {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var entries []ProfileMedia

	doc.Find(`a[href*="/media/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		id := MediaIDFromURL(href)
		if id == "" || seen[id] {
			return
		}
		if username != "" && !strings.Contains(href, "/"+username+"/") {
			return
		}

		seen[id] = true
		entries = append(entries, ProfileMedia{
			ID:      id,
			PageURL: AbsoluteURL(href),
			IsVideo: sel.Find("video").Length() > 0 || sel.Find(`[class*="video"]`).Length() > 0,
		})
	})

	return entries
}
