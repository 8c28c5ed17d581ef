package tui_test

import (
	"fmt"
	"time"

	"vscoscraper/pkg/models"
	"vscoscraper/pkg/ui/tui"
)

func ExampleTUI() {
	terminal := tui.NewTUI()
	terminal.Start()

	// Seed the dashboard with the work queue
	terminal.SetQueue("vsco_girl", 10)
	terminal.LogInfo("Starting download session")

	// Simulate the orchestrator reporting results
	for i := 1; i <= 10; i++ {
		time.Sleep(200 * time.Millisecond)

		result := models.DownloadResult{
			WorkItemID: fmt.Sprintf("media_%d", i),
			Success:    true,
			SizeBytes:  1024 * 1024,
		}
		if i%4 == 0 {
			result.Success = false
			result.Error = "simulated error"
		}
		terminal.RecordResult(result)
	}

	terminal.LogSuccess("Run finished")

	// Keep the final screen up briefly, then restore the terminal
	time.Sleep(2 * time.Second)
	terminal.Stop()
}
