package storage

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// mediaExtensions lists the file extensions the manager recognizes when
// scanning for already downloaded media and when inferring a name for new
// files. Order matters for Exists lookups.
var mediaExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".mp4"}

// Manager handles media file storage and duplicate detection for a single
// output directory.
type Manager struct {
	outputDir string
	files     map[string]string
	mu        sync.RWMutex
}

// NewManager creates a storage manager rooted at outputDir. The directory is
// created if missing and any media already present is indexed so repeat runs
// can skip finished downloads.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		files:     make(map[string]string),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles indexes media files already in the output directory,
// keyed by filename without extension.
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !isMediaExtension(ext) {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		m.files[id] = name
	}

	return nil
}

// Exists reports whether media with the given ID has already been saved.
// On a hit it returns the file's path and size.
func (m *Manager) Exists(id string) (string, int64, bool) {
	m.mu.RLock()
	name, ok := m.files[id]
	m.mu.RUnlock()

	if ok {
		fullPath := filepath.Join(m.outputDir, name)
		if info, err := os.Stat(fullPath); err == nil {
			return fullPath, info.Size(), true
		}
		// The file was removed out from under us; drop the stale entry
		m.mu.Lock()
		delete(m.files, id)
		m.mu.Unlock()
	}

	// Fall back to probing the disk in case the file appeared after the
	// initial scan
	for _, ext := range mediaExtensions {
		fullPath := filepath.Join(m.outputDir, id+ext)
		info, err := os.Stat(fullPath)
		if err != nil || info.IsDir() {
			continue
		}
		m.mu.Lock()
		m.files[id] = id + ext
		m.mu.Unlock()
		return fullPath, info.Size(), true
	}

	return "", 0, false
}

// Save writes media bytes for the given ID. The file extension is inferred
// from sourceURL, defaulting to .jpg. The write is atomic: data goes to a
// temporary file that is renamed into place, so readers never observe a
// partial file.
func (m *Manager) Save(id string, data []byte, sourceURL string) (string, int64, error) {
	name := id + extensionFor(sourceURL)
	fullPath := filepath.Join(m.outputDir, name)

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return "", 0, fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return "", 0, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.files[id] = name
	m.mu.Unlock()

	return fullPath, int64(len(data)), nil
}

// OutputDir returns the directory the manager writes into.
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// Count returns the number of media files the manager knows about.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// extensionFor picks a file extension based on the media URL's path,
// ignoring query parameters. Unknown or missing extensions fall back to .jpg.
func extensionFor(sourceURL string) string {
	raw := sourceURL
	if u, err := url.Parse(sourceURL); err == nil {
		raw = u.Path
	} else if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}

	ext := strings.ToLower(path.Ext(raw))
	if isMediaExtension(ext) {
		return ext
	}
	return ".jpg"
}

func isMediaExtension(ext string) bool {
	for _, known := range mediaExtensions {
		if ext == known {
			return true
		}
	}
	return false
}
