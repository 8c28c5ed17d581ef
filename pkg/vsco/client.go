package vsco

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"vscoscraper/pkg/errors"
	"vscoscraper/pkg/logger"
	"vscoscraper/pkg/ratelimit"
)

// defaultUserAgent is used when the configuration does not supply one
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client fetches media bytes from VSCO's CDN. Requests carry browser-like
// headers so they match the session the extractor's page established.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a media fetch client. A nil limiter disables pacing.
func NewClient(timeout time.Duration, userAgent string, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "image/avif,image/webp,image/apng,image/svg+xml,image/*,video/*;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         BaseURL + "/",
			"Sec-Fetch-Dest":  "image",
			"Sec-Fetch-Mode":  "no-cors",
			"Sec-Fetch-Site":  "same-site",
		},
		limiter: limiter,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// FetchMedia downloads the bytes behind a media resource URL.
func (c *Client) FetchMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	if c.limiter != nil {
		c.limiter.Wait()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("media request failed", map[string]interface{}{
			"url":      mediaURL,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	logger.LogRequest(http.MethodGet, mediaURL, resp.StatusCode, float64(duration.Milliseconds()))

	if err := checkResponseStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}
	if len(data) == 0 {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: "empty response body",
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("media fetched", map[string]interface{}{
		"url":      mediaURL,
		"size":     len(data),
		"duration": duration,
	})

	return data, nil
}

// checkResponseStatus maps HTTP statuses onto the scraper's error taxonomy.
// Only 200 counts as success for a media fetch.
func checkResponseStatus(statusCode int) error {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return &errors.Error{
			Type:    errors.ErrorTypeForbidden,
			Message: "access denied",
			Code:    statusCode,
		}
	case statusCode == http.StatusNotFound:
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    statusCode,
		}
	case statusCode == http.StatusTooManyRequests:
		return &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    statusCode,
		}
	case statusCode >= 500:
		return &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: "server error",
			Code:    statusCode,
		}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", statusCode),
			Code:    statusCode,
		}
	}
}
