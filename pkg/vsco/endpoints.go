package vsco

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for VSCO
	BaseURL = "https://vsco.co"

	// GalleryPath is the path pattern for a user's public gallery
	GalleryPath = "/%s/gallery"

	// MediaPath is the path pattern for a single media detail page
	MediaPath = "/%s/media/%s"

	// MaxUsernameLength is the longest username VSCO issues
	MaxUsernameLength = 30
)

// GalleryURL constructs the URL for a user's public gallery
func GalleryURL(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf(BaseURL+GalleryPath, username)
}

// MediaPageURL constructs the URL for a single media detail page
func MediaPageURL(username, mediaID string) string {
	if username == "" || mediaID == "" {
		return ""
	}
	return fmt.Sprintf(BaseURL+MediaPath, username, mediaID)
}

// AbsoluteURL resolves a gallery href against the site root. Absolute URLs
// pass through unchanged.
func AbsoluteURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	// Protocol-relative URLs point at the CDN, not the site root
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return BaseURL + href
}

// MediaIDFromURL extracts the media identifier from a detail page URL or
// gallery href. Returns an empty string when the URL has no media segment.
func MediaIDFromURL(raw string) string {
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if part == "media" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

// IsValidUsername checks if a username is valid according to VSCO rules.
// VSCO usernames are lowercase; run SanitizeUsername first on raw input.
func IsValidUsername(username string) bool {
	if username == "" || len(username) > MaxUsernameLength {
		return false
	}

	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '-' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername normalizes raw user input into a bare username. It
// accepts a pasted profile URL, a leading @, stray spaces and trailing
// slashes, and folds everything to lowercase.
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return ""
	}

	// Accept a pasted profile URL like https://vsco.co/name/gallery
	if strings.Contains(username, "vsco.co") {
		candidate := username
		if !strings.Contains(candidate, "://") {
			candidate = "https://" + candidate
		}
		if u, err := url.Parse(candidate); err == nil {
			segments := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(segments) > 0 && segments[0] != "" {
				username = segments[0]
			}
		}
	}

	username = strings.TrimPrefix(username, "@")

	for len(username) > 0 && (username[len(username)-1] == '/' || username[len(username)-1] == ' ') {
		username = username[:len(username)-1]
	}

	return strings.ToLower(username)
}
