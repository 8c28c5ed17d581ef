package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	width := m.width - 4
	if width < 40 {
		width = 40
	}

	var sections []string

	sections = append(sections, m.renderLogo())
	sections = append(sections, m.renderStatsPanel(width))
	sections = append(sections, m.renderFeedPanel(width))
	sections = append(sections, m.renderLogsPanel(width))

	if m.showHelp {
		sections = append(sections, m.renderHelp(width))
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderLogo renders the cyberpunk logo
func (m Model) renderLogo() string {
	logo := `
╔══════════════════════════════════════════════════╗
║ ██╗   ██╗███████╗ ██████╗ ██████╗                ║
║ ██║   ██║██╔════╝██╔════╝██╔═══██╗               ║
║ ██║   ██║███████╗██║     ██║   ██║               ║
║ ╚██╗ ██╔╝╚════██║██║     ██║   ██║               ║
║  ╚████╔╝ ███████║╚██████╗╚██████╔╝               ║
║   ╚═══╝  ╚══════╝ ╚═════╝ ╚═════╝                ║
║     NEON EDITION - GALLERY EXTRACTION UTILITY    ║
╚══════════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

// renderStatsPanel renders the progress bar and session statistics
func (m Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" DOWNLOAD STATUS ")

	bar := m.progress
	bar.Width = width - 16
	if bar.Width < 10 {
		bar.Width = 10
	}

	header := fmt.Sprintf("%s %s",
		statsLabelStyle.Render("Profile:"),
		GlowText("@"+m.username, neonCyan),
	)
	progressLine := fmt.Sprintf("%s %s",
		bar.ViewAs(m.percent()),
		statsValueStyle.Render(fmt.Sprintf("%d/%d", m.completed(), m.total)),
	)
	counters := fmt.Sprintf("%s  %s  %s",
		successStyle.Render(fmt.Sprintf("✓ %d downloaded", m.downloaded)),
		skippedStyle.Render(fmt.Sprintf("↷ %d skipped", m.skipped)),
		errorStyle.Render(fmt.Sprintf("✗ %d failed", m.failed)),
	)

	elapsed := time.Since(m.sessionStartTime)
	stats := []string{
		header,
		progressLine,
		counters,
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Total Size:"), statsValueStyle.Render(FormatBytes(m.bytes))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Average Speed:"), statsValueStyle.Render(FormatSpeed(m.avgSpeed()))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Session Time:"), statsValueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("ETA:"), statsValueStyle.Render(formatDuration(m.eta()))),
	}

	if m.done {
		stats = append(stats, successStyle.Render("✓ RUN COMPLETE"))
	} else {
		stats = append(stats, m.spinner.View()+" Scraping...")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, stats...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderFeedPanel renders the most recently finished items
func (m Model) renderFeedPanel(width int) string {
	title := titleStyle.Render(" RECENT RESULTS ")

	if len(m.feed) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("Nothing finished yet...")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	var items []string
	for _, item := range m.feed {
		items = append(items, feedItemStyle.Render(m.renderFeedItem(item, width-6)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderFeedItem renders a single finished item
func (m Model) renderFeedItem(item FeedItem, width int) string {
	switch item.State {
	case ResultSkipped:
		return skippedStyle.Render("↷ " + item.ID + " (already saved)")
	case ResultFailed:
		line := "✗ " + item.ID + " - " + item.Error
		if len(line) > width && width > 3 {
			line = line[:width-3] + "..."
		}
		return errorStyle.Render(line)
	default:
		return successStyle.Render("✓ "+item.ID) + " " +
			lipgloss.NewStyle().Foreground(dimWhite).Render(FormatBytes(item.Size))
	}
}

// renderLogsPanel renders the logs panel
func (m Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" SYSTEM LOGS ")

	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for i := start; i < len(m.logMessages); i++ {
		log := m.logMessages[i]
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))

		message := log.Message
		maxMsgLen := width - 25
		if maxMsgLen > 3 && len(message) > maxMsgLen {
			message = message[:maxMsgLen-3] + "..."
		}

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, logMessageStyle.Render(message)))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderHelp renders the help panel
func (m Model) renderHelp(width int) string {
	help := `
  Navigation:
    q/Q      - Quit the application
    ?        - Toggle this help
    ctrl+l   - Clear the log panel

  Status Indicators:
    ` + successStyle.Render("✓") + `        - Downloaded
    ` + skippedStyle.Render("↷") + `        - Skipped, already on disk
    ` + errorStyle.Render("✗") + `        - Failed after all retries
`

	return panelStyle.Width(width).Render(help)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
