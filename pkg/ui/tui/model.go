package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vscoscraper/pkg/models"
)

// ResultState classifies a finished download for the results feed.
type ResultState int

const (
	ResultDownloaded ResultState = iota
	ResultSkipped
	ResultFailed
)

// FeedItem is one finished item in the recent results feed.
type FeedItem struct {
	ID    string
	State ResultState
	Size  int64
	Error string
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model represents the TUI model. All mutation happens inside Update,
// driven by messages sent through the program, so the model carries no
// locking of its own.
type Model struct {
	// UI components
	spinner  spinner.Model
	progress progress.Model

	// Queue state
	username string
	total    int

	// Stats
	downloaded int
	skipped    int
	failed     int
	bytes      int64

	feed    []FeedItem
	maxFeed int

	logMessages    []LogMessage
	maxLogMessages int

	sessionStartTime time.Time

	// UI state
	width    int
	height   int
	showHelp bool
	done     bool
}

// NewModel creates a new TUI model
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return Model{
		spinner:          s,
		progress:         p,
		maxFeed:          8,
		maxLogMessages:   50,
		sessionStartTime: time.Now(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// setQueue seeds the model with the work queue for a profile.
func (m *Model) setQueue(username string, total int) {
	m.username = username
	m.total = total
	m.sessionStartTime = time.Now()
}

// recordResult folds one download result into the stats and the feed.
func (m *Model) recordResult(result models.DownloadResult) {
	item := FeedItem{
		ID:    result.WorkItemID,
		Size:  result.SizeBytes,
		Error: result.Error,
	}
	switch {
	case result.Skipped:
		m.skipped++
		item.State = ResultSkipped
	case result.Success:
		m.downloaded++
		m.bytes += result.SizeBytes
		item.State = ResultDownloaded
	default:
		m.failed++
		item.State = ResultFailed
	}

	m.feed = append(m.feed, item)
	if len(m.feed) > m.maxFeed {
		m.feed = m.feed[len(m.feed)-m.maxFeed:]
	}

	if m.total > 0 && m.completed() >= m.total {
		m.done = true
	}
}

// addLogMessage appends a log message, keeping only the last N.
func (m *Model) addLogMessage(level, message string) {
	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   logLevelColor(level),
	})
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// completed is the number of items accounted for so far.
func (m Model) completed() int {
	return m.downloaded + m.skipped + m.failed
}

// percent is the overall progress in [0, 1].
func (m Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	p := float64(m.completed()) / float64(m.total)
	if p > 1 {
		p = 1
	}
	return p
}

// avgSpeed is the mean download rate in bytes per second.
func (m Model) avgSpeed() float64 {
	elapsed := time.Since(m.sessionStartTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.bytes) / elapsed
}

// eta estimates the time remaining from the mean per-item duration.
func (m Model) eta() time.Duration {
	done := m.completed()
	remaining := m.total - done
	if done == 0 || remaining <= 0 {
		return 0
	}
	perItem := time.Since(m.sessionStartTime) / time.Duration(done)
	return perItem * time.Duration(remaining)
}

// FormatBytes formats bytes to human readable format
func FormatBytes(bytes int64) string {
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

// FormatSpeed formats speed in bytes per second
func FormatSpeed(bytesPerSecond float64) string {
	return fmt.Sprintf("%s/s", FormatBytes(int64(bytesPerSecond)))
}
