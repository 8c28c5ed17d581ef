package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"vscoscraper/pkg/models"
)

// Message types for the TUI

// QueueMsg seeds the interface with the work queue for a profile
type QueueMsg struct {
	Username string
	Total    int
}

// ResultMsg reports one finished item, after all retries
type ResultMsg struct {
	Result models.DownloadResult
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case QueueMsg:
		m.setQueue(msg.Username, msg.Total)
		m.addLogMessage("INFO", fmt.Sprintf("Queued %d media from @%s", msg.Total, msg.Username))
		return m, nil

	case ResultMsg:
		m.recordResult(msg.Result)
		switch {
		case msg.Result.Skipped:
			m.addLogMessage("INFO", "Skipped (already saved): "+msg.Result.WorkItemID)
		case msg.Result.Success:
			m.addLogMessage("SUCCESS", "Downloaded: "+msg.Result.WorkItemID)
		default:
			m.addLogMessage("ERROR", "Failed: "+msg.Result.WorkItemID+" - "+msg.Result.Error)
		}
		return m, nil

	case LogMsg:
		m.addLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	return m, nil
}
