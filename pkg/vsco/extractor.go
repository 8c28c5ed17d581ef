package vsco

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"vscoscraper/pkg/browser"
	"vscoscraper/pkg/config"
	"vscoscraper/pkg/errors"
	"vscoscraper/pkg/logger"
	"vscoscraper/pkg/models"
)

const (
	// fullSizeWidth is the rendition width requested from the image CDN in
	// place of the page's responsive one.
	fullSizeWidth = 4096

	// metaWaitTimeout bounds the best-effort wait for the page's meta tags.
	metaWaitTimeout = 3 * time.Second
)

// MediaExtractor pulls the downloadable resource URL and auxiliary metadata
// out of a media detail page, using a page opened on a leased browser
// context.
type MediaExtractor struct {
	timeout time.Duration
	logger  logger.Logger
}

// NewMediaExtractor creates an extractor using the configured navigation
// timeout.
func NewMediaExtractor(cfg *config.Config, log logger.Logger) *MediaExtractor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &MediaExtractor{
		timeout: cfg.Download.Timeout.Duration(),
		logger:  log,
	}
}

// Extract navigates to the item's detail page and parses out the resource
// URL plus whatever metadata the page exposes.
func (e *MediaExtractor) Extract(ctx context.Context, pc *browser.PooledContext, item models.WorkItem) (*models.ExtractedMedia, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := pc.NewPage()
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeBrowser,
			Message: fmt.Sprintf("failed to open page: %v", err),
		}
	}
	defer page.Close()

	if _, err := page.Goto(item.SourceURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(e.timeout.Milliseconds())),
	}); err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNavigation,
			Message: fmt.Sprintf("failed to navigate to %s: %v", item.SourceURL, err),
		}
	}

	// The og tags are server-rendered, but wait briefly in case the page is
	// still hydrating
	locator := page.Locator(`meta[property="og:image"]`)
	if err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(metaWaitTimeout.Milliseconds())),
	}); err != nil {
		e.logger.DebugWithFields("og:image tag not found before timeout", map[string]interface{}{
			"media_id": item.ID,
		})
	}

	html, err := page.Content()
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeExtraction,
			Message: fmt.Sprintf("failed to read page content: %v", err),
		}
	}

	media, err := ParseMediaPage(html)
	if err != nil {
		return nil, err
	}

	e.logger.DebugWithFields("media extracted", map[string]interface{}{
		"media_id":     item.ID,
		"resource_url": media.ResourceURL,
	})

	return media, nil
}

// ParseMediaPage extracts the downloadable resource from a media detail
// page's HTML. Videos advertise their clip via og:video; images come from
// og:image (upgraded to full size), with twitter:image and the largest
// srcset rendition as fallbacks.
func ParseMediaPage(html string) (*models.ExtractedMedia, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeExtraction,
			Message: fmt.Sprintf("failed to parse page: %v", err),
		}
	}

	media := &models.ExtractedMedia{}

	for _, property := range []string{"og:video", "og:video:url"} {
		if videoURL := metaContent(doc, property); videoURL != "" {
			media.ResourceURL = AbsoluteURL(videoURL)
			break
		}
	}

	if media.ResourceURL == "" {
		imageURL := metaContent(doc, "og:image")
		if imageURL == "" {
			imageURL = metaContent(doc, "twitter:image")
		}
		media.ResourceURL = UpgradeImageURL(imageURL)
	}

	media.Variants = parseSrcsetVariants(doc)
	if media.ResourceURL == "" && len(media.Variants) > 0 {
		best := media.Variants[0]
		for _, v := range media.Variants[1:] {
			if v.Width > best.Width {
				best = v
			}
		}
		media.ResourceURL = best.URL
	}

	if media.ResourceURL == "" {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeExtraction,
			Message: "no downloadable resource found on page",
		}
	}

	if w, ok := metaInt(doc, "og:image:width"); ok {
		media.Width = &w
	}
	if h, ok := metaInt(doc, "og:image:height"); ok {
		media.Height = &h
	}
	media.UploadedAt = parseUploadTime(doc)

	return media, nil
}

// UpgradeImageURL rewrites a responsive CDN URL to request the full-size
// rendition. URLs outside VSCO's CDN pass through untouched.
func UpgradeImageURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}

	u, err := url.Parse(imageURL)
	if err != nil || !strings.Contains(u.Host, "vsco.co") {
		return imageURL
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}

	q := u.Query()
	q.Set("w", strconv.Itoa(fullSizeWidth))
	q.Del("h")
	q.Del("dpr")
	u.RawQuery = q.Encode()

	return u.String()
}

// metaContent reads a page's meta tag by property or name attribute
func metaContent(doc *goquery.Document, property string) string {
	value, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	if value == "" {
		value, _ = doc.Find(fmt.Sprintf(`meta[name=%q]`, property)).First().Attr("content")
	}
	return strings.TrimSpace(value)
}

func metaInt(doc *goquery.Document, property string) (int, bool) {
	raw := metaContent(doc, property)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// parseUploadTime looks for a publish timestamp in the places VSCO has put
// it over the years.
func parseUploadTime(doc *goquery.Document) *time.Time {
	candidates := []string{
		metaContent(doc, "article:published_time"),
		metaContent(doc, "og:updated_time"),
	}
	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		candidates = append(candidates, datetime)
	}

	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if ts, err := time.Parse(layout, raw); err == nil {
				return &ts
			}
		}
	}
	return nil
}

// parseSrcsetVariants returns the renditions advertised by the first image
// on the page that carries a parseable srcset.
func parseSrcsetVariants(doc *goquery.Document) []models.SizeVariant {
	var variants []models.SizeVariant
	doc.Find("img[srcset]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		srcset, _ := s.Attr("srcset")
		variants = parseSrcset(srcset)
		return len(variants) == 0
	})
	return variants
}

// parseSrcset splits a srcset attribute into its width-annotated candidates
func parseSrcset(srcset string) []models.SizeVariant {
	var variants []models.SizeVariant
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(candidate))
		if len(fields) == 0 {
			continue
		}
		v := models.SizeVariant{URL: AbsoluteURL(fields[0])}
		if len(fields) > 1 && strings.HasSuffix(fields[1], "w") {
			if w, err := strconv.Atoi(strings.TrimSuffix(fields[1], "w")); err == nil {
				v.Width = w
			}
		}
		variants = append(variants, v)
	}
	return variants
}
