package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies scraper failures so callers can decide whether an
// operation is worth retrying.
type ErrorType string

const (
	ErrorTypeNetwork       ErrorType = "network"
	ErrorTypeRateLimit     ErrorType = "rate_limit"
	ErrorTypeForbidden     ErrorType = "forbidden"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeServerError   ErrorType = "server_error"
	ErrorTypeNavigation    ErrorType = "navigation"
	ErrorTypeExtraction    ErrorType = "extraction"
	ErrorTypeBrowser       ErrorType = "browser"
	ErrorTypePoolExhausted ErrorType = "pool_exhausted"
	ErrorTypeStorage       ErrorType = "storage"
	ErrorTypeConfig        ErrorType = "config"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error is a scraper error with type information. Code carries the HTTP
// status when the failure came from a response.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// IsRetryable reports whether the error looks transient. Navigation timeouts
// count as transient because a fresh page load often succeeds.
func IsRetryable(err error) bool {
	var scrapeErr *Error
	if stderrors.As(err, &scrapeErr) {
		switch scrapeErr.Type {
		case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeNavigation:
			return true
		default:
			return false
		}
	}
	return false
}

// TypeOf returns the classification of err, or ErrorTypeUnknown for errors
// produced outside this package.
func TypeOf(err error) ErrorType {
	var scrapeErr *Error
	if stderrors.As(err, &scrapeErr) {
		return scrapeErr.Type
	}
	return ErrorTypeUnknown
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
