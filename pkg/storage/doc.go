// Package storage provides media file management for the VSCO scraper.
//
// The storage package handles:
//   - Creating and managing per-user output directories
//   - Saving media with atomic write operations
//   - Detecting already downloaded media so repeat runs skip finished work
//   - Thread-safe file operations
//
// The Manager type is the primary interface for storage operations. It keeps
// an in-memory index of saved files (keyed by media ID) for fast duplicate
// detection, falling back to disk probes for files that appear between
// scans. File extensions are inferred from the media's source URL.
//
// Writes are atomic: data goes to a temporary file that is renamed into
// place, so a crash mid-download never leaves a corrupt media file behind.
//
// Usage:
//
//	manager, err := storage.NewManager("downloads/username")
//	if err != nil {
//	    return err
//	}
//
//	if _, _, ok := manager.Exists("media123"); !ok {
//	    path, size, err := manager.Save("media123", data, sourceURL)
//	    if err != nil {
//	        log.Error("save failed")
//	    }
//	}
package storage
