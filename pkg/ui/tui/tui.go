package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"vscoscraper/pkg/models"
	"vscoscraper/pkg/ui"
)

// TUI represents the terminal user interface
type TUI struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

var _ ui.TUI = (*TUI)(nil)

// NewTUI creates a new TUI instance
func NewTUI() *TUI {
	return &TUI{
		program: tea.NewProgram(NewModel(), tea.WithAltScreen()),
		done:    make(chan struct{}),
	}
}

// Start runs the program loop on its own goroutine. Use Wait to block
// until the interface has exited.
func (t *TUI) Start() {
	go func() {
		_, err := t.program.Run()
		t.err = err
		close(t.done)
	}()
}

// Stop stops the TUI gracefully and waits for the screen to be restored.
func (t *TUI) Stop() {
	t.program.Quit()
	<-t.done
}

// Wait blocks until the program loop exits, either through Stop or the
// user quitting, and reports any terminal error.
func (t *TUI) Wait() error {
	<-t.done
	return t.err
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// SetQueue tells the TUI which profile is being scraped and how many
// media items are queued.
func (t *TUI) SetQueue(username string, total int) {
	t.Send(QueueMsg{Username: username, Total: total})
}

// RecordResult feeds one finished download into the dashboard.
func (t *TUI) RecordResult(result models.DownloadResult) {
	t.Send(ResultMsg{Result: result})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	t.Send(LogMsg{Level: level, Message: message})
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogSuccess logs a success message
func (t *TUI) LogSuccess(format string, args ...interface{}) {
	t.Log("SUCCESS", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}
