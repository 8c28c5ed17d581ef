package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"vscoscraper/pkg/models"
)

const (
	barFilled = "━"
	barEmpty  = "─"
	barWidth  = 20
)

// DownloadTracker renders a single-line progress readout for a download
// run. It is driven from the orchestrator's result callback and keeps its
// own lock, so callers may feed it from concurrent download tasks.
type DownloadTracker struct {
	mu         sync.Mutex
	username   string
	total      int
	downloaded int
	skipped    int
	failed     int
	bytes      int64
	startTime  time.Time
	quiet      bool
}

// NewDownloadTracker creates a tracker for a run of total items. With
// quiet set it only counts and never writes to the terminal.
func NewDownloadTracker(username string, total int, quiet bool) *DownloadTracker {
	return &DownloadTracker{
		username:  username,
		total:     total,
		startTime: time.Now(),
		quiet:     quiet,
	}
}

// RecordResult folds one finished item into the readout.
func (t *DownloadTracker) RecordResult(result models.DownloadResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case result.Skipped:
		t.skipped++
	case result.Success:
		t.downloaded++
		t.bytes += result.SizeBytes
	default:
		t.failed++
	}

	if !t.quiet {
		t.printLine()
	}
}

// Counts returns the tracker's tallies.
func (t *DownloadTracker) Counts() (downloaded, skipped, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.downloaded, t.skipped, t.failed
}

// printLine redraws the progress line in place. Callers hold t.mu.
func (t *DownloadTracker) printLine() {
	done := t.downloaded + t.skipped + t.failed

	var progress float64
	if t.total > 0 {
		progress = float64(done) / float64(t.total)
	}
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled)

	line := fmt.Sprintf("\r%s [%s] %d/%d • %s • %s",
		Cyan(t.username),
		bar,
		done,
		t.total,
		formatBytes(t.bytes),
		t.eta(done),
	)
	if t.skipped > 0 {
		line += fmt.Sprintf(" • %s", Dim(fmt.Sprintf("%d skipped", t.skipped)))
	}
	if t.failed > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d failed", t.failed)))
	}

	width := TermWidth()
	fmt.Printf("\r%s%s", strings.Repeat(" ", width-1), line)
}

// Summary prints the final tallies after the run. It is safe to call in
// quiet mode; quiet suppresses only the in-place line.
func (t *DownloadTracker) Summary() {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.startTime)

	fmt.Printf("\n\n%s Downloaded %d media from %s\n",
		Green("✓"),
		t.downloaded,
		t.username,
	)
	fmt.Printf("  %s %s in %s\n",
		Dim("•"),
		formatBytes(t.bytes),
		formatDuration(elapsed),
	)
	if t.skipped > 0 {
		fmt.Printf("  %s %d already on disk\n", Dim("•"), t.skipped)
	}
	if t.failed > 0 {
		fmt.Printf("  %s %s\n", Dim("•"), Red(fmt.Sprintf("%d downloads failed", t.failed)))
	}
}

// eta estimates time remaining from the pace so far. Callers hold t.mu.
func (t *DownloadTracker) eta(done int) string {
	if done == 0 || done >= t.total {
		return "--:--"
	}

	elapsed := time.Since(t.startTime)
	rate := float64(done) / elapsed.Seconds()
	if rate == 0 {
		return "--:--"
	}

	remaining := time.Duration(float64(t.total-done)/rate) * time.Second
	return formatDuration(remaining)
}

// formatDuration formats a duration compactly for progress output
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// formatBytes formats byte counts with binary units
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
