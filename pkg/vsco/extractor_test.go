package vsco

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vscoscraper/pkg/errors"
)

const imagePageHTML = `<!DOCTYPE html>
<html>
<head>
<meta property="og:image" content="https://im.vsco.co/aws-us-west-2/abc123/def456/media.jpg?w=640&dpr=2">
<meta property="og:image:width" content="1136">
<meta property="og:image:height" content="1515">
<meta property="article:published_time" content="2024-03-07T18:22:05.000Z">
</head>
<body>
<img srcset="//im.vsco.co/aws-us-west-2/abc123/def456/media.jpg?w=480 480w, //im.vsco.co/aws-us-west-2/abc123/def456/media.jpg?w=1136 1136w" src="x.jpg">
</body>
</html>`

const videoPageHTML = `<!DOCTYPE html>
<html>
<head>
<meta property="og:video" content="https://video.vsco.co/abc123/clip.mp4">
<meta property="og:image" content="https://im.vsco.co/abc123/poster.jpg?w=640">
</head>
<body></body>
</html>`

const twitterFallbackHTML = `<html><head>
<meta name="twitter:image" content="https://im.vsco.co/abc/fallback.jpg?w=300">
</head><body></body></html>`

const srcsetOnlyHTML = `<html><head></head><body>
<img srcset="https://cdn.example.com/small.jpg 480w, https://cdn.example.com/large.jpg 2048w, https://cdn.example.com/medium.jpg 1136w">
</body></html>`

const emptyPageHTML = `<html><head><title>VSCO</title></head><body><p>nothing here</p></body></html>`

func TestParseMediaPageImage(t *testing.T) {
	media, err := ParseMediaPage(imagePageHTML)
	require.NoError(t, err)

	// The responsive rendition is upgraded to full size
	assert.Equal(t, "https://im.vsco.co/aws-us-west-2/abc123/def456/media.jpg?w=4096", media.ResourceURL)

	require.NotNil(t, media.Width)
	require.NotNil(t, media.Height)
	assert.Equal(t, 1136, *media.Width)
	assert.Equal(t, 1515, *media.Height)

	require.NotNil(t, media.UploadedAt)
	expected := time.Date(2024, 3, 7, 18, 22, 5, 0, time.UTC)
	assert.True(t, media.UploadedAt.Equal(expected), "expected %v, got %v", expected, media.UploadedAt)

	require.Len(t, media.Variants, 2)
	assert.Equal(t, "https://im.vsco.co/aws-us-west-2/abc123/def456/media.jpg?w=480", media.Variants[0].URL)
	assert.Equal(t, 480, media.Variants[0].Width)
	assert.Equal(t, 1136, media.Variants[1].Width)
}

func TestParseMediaPageVideo(t *testing.T) {
	media, err := ParseMediaPage(videoPageHTML)
	require.NoError(t, err)

	// The clip wins over the poster image
	assert.Equal(t, "https://video.vsco.co/abc123/clip.mp4", media.ResourceURL)
}

func TestParseMediaPageTwitterFallback(t *testing.T) {
	media, err := ParseMediaPage(twitterFallbackHTML)
	require.NoError(t, err)

	assert.Equal(t, "https://im.vsco.co/abc/fallback.jpg?w=4096", media.ResourceURL)
}

func TestParseMediaPageSrcsetFallback(t *testing.T) {
	media, err := ParseMediaPage(srcsetOnlyHTML)
	require.NoError(t, err)

	// Largest advertised rendition wins
	assert.Equal(t, "https://cdn.example.com/large.jpg", media.ResourceURL)
}

func TestParseMediaPageNoResource(t *testing.T) {
	_, err := ParseMediaPage(emptyPageHTML)
	require.Error(t, err)

	scrapeErr, ok := err.(*errors.Error)
	require.True(t, ok, "expected a typed error, got %T", err)
	assert.Equal(t, errors.ErrorTypeExtraction, scrapeErr.Type)
}

func TestUpgradeImageURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "responsive width replaced",
			input:    "https://im.vsco.co/abc/media.jpg?w=640&dpr=2",
			expected: "https://im.vsco.co/abc/media.jpg?w=4096",
		},
		{
			name:     "height dropped",
			input:    "https://im.vsco.co/abc/media.jpg?w=300&h=300",
			expected: "https://im.vsco.co/abc/media.jpg?w=4096",
		},
		{
			name:     "no query gains width",
			input:    "https://im.vsco.co/abc/media.jpg",
			expected: "https://im.vsco.co/abc/media.jpg?w=4096",
		},
		{
			name:     "protocol relative absolutized",
			input:    "//im.vsco.co/abc/media.jpg?w=480",
			expected: "https://im.vsco.co/abc/media.jpg?w=4096",
		},
		{
			name:     "foreign host untouched",
			input:    "https://cdn.example.com/pic.jpg?w=480",
			expected: "https://cdn.example.com/pic.jpg?w=480",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UpgradeImageURL(tt.input))
		})
	}
}

func TestParseSrcset(t *testing.T) {
	variants := parseSrcset("https://a/1.jpg 480w, https://a/2.jpg 1136w,https://a/3.jpg")
	require.Len(t, variants, 3)
	assert.Equal(t, 480, variants[0].Width)
	assert.Equal(t, 1136, variants[1].Width)
	assert.Equal(t, 0, variants[2].Width)

	assert.Empty(t, parseSrcset(""))
}
