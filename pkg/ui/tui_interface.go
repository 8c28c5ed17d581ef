package ui

import "vscoscraper/pkg/models"

// TUI is the surface the scraper drives when the interactive terminal
// interface is enabled. The concrete implementation lives in pkg/ui/tui.
type TUI interface {
	// SetQueue announces the work queue once discovery finished.
	SetQueue(username string, total int)
	// RecordResult folds one finished item into the display.
	RecordResult(result models.DownloadResult)
	LogInfo(format string, args ...interface{})
	LogSuccess(format string, args ...interface{})
	LogWarning(format string, args ...interface{})
	LogError(format string, args ...interface{})
	// Stop tears the interface down and restores the terminal.
	Stop()
}
