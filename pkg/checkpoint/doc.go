// Package checkpoint provides functionality for saving and resuming download progress.
//
// The checkpoint system allows the scraper to resume runs after interruptions
// such as network failures, rate limits, or manual stops. It tracks:
//   - Completed media items (ID to filename)
//   - Failed media items with their last error message
//   - Overall run bookkeeping (counts, timestamps)
//
// Checkpoints are stored in platform-specific data directories:
//   - Linux: ~/.local/share/vscoscraper/checkpoints/
//   - macOS: ~/Library/Application Support/vscoscraper/checkpoints/
//   - Windows: %APPDATA%/vscoscraper/checkpoints/
//
// The checkpoint files are saved atomically to prevent corruption and include
// versioning for future compatibility.
package checkpoint
