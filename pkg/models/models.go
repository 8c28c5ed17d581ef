package models

import "time"

// WorkItem is one unit of download work: a single media entry discovered in a
// profile gallery. Items are immutable once queued.
type WorkItem struct {
	// ID is the VSCO media identifier, also used as the output filename stem.
	ID string
	// SourceURL is the media detail page the item was discovered at.
	SourceURL string
	// Info carries whatever was known about the item at discovery time.
	Info MediaInfo
}

// MediaInfo holds metadata known at discovery time. Fields learned only
// during extraction stay nil until then.
type MediaInfo struct {
	// Index is the item's position in the gallery, oldest-last as rendered.
	Index   int
	IsVideo bool
}

// ExtractedMedia is what a media detail page yields after extraction.
type ExtractedMedia struct {
	// ResourceURL points at the full-resolution CDN asset.
	ResourceURL string
	// Variants lists alternative renditions found on the page, if any.
	Variants   []SizeVariant
	Width      *int
	Height     *int
	UploadedAt *time.Time
}

// SizeVariant is one rendition of a media asset as advertised in a srcset.
type SizeVariant struct {
	URL   string
	Width int
}

// DownloadResult records the outcome of processing one work item. Exactly one
// result is produced per queued item, in queue order.
type DownloadResult struct {
	WorkItemID string
	Success    bool
	// Skipped means the file already existed and no fetch was performed.
	Skipped bool
	// DryRun means the pipeline stopped before any network or disk work.
	DryRun    bool
	Error     string
	Filepath  string
	SizeBytes int64
	Media     *ExtractedMedia
	Duration  time.Duration
}

// Stats aggregates counters across a download run.
type Stats struct {
	Downloaded int64
	Skipped    int64
	Failed     int64
}

// Total is the number of items accounted for so far.
func (s Stats) Total() int64 {
	return s.Downloaded + s.Skipped + s.Failed
}
