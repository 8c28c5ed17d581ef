package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"vscoscraper/pkg/models"
)

// MediaRecord is one manifest entry describing a single media item and the
// outcome of its download.
type MediaRecord struct {
	// Core identifiers
	ID        string `json:"id"`
	SourceURL string `json:"source_url"`

	// Extracted media properties
	ResourceURL string     `json:"resource_url,omitempty"`
	Width       *int       `json:"width,omitempty"`
	Height      *int       `json:"height,omitempty"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty"`

	// Download outcome
	Filepath     string     `json:"filepath,omitempty"`
	SizeBytes    int64      `json:"size_bytes,omitempty"`
	DownloadedAt *time.Time `json:"downloaded_at,omitempty"`
	Skipped      bool       `json:"skipped,omitempty"`
	DryRun       bool       `json:"dry_run,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// Stats summarizes a run for the manifest header.
type Stats struct {
	Total      int `json:"total"`
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Manifest records everything a scraping run learned about a user's media.
// It is written next to the downloaded files and merged on reruns so skipped
// items keep the metadata extracted when they were first downloaded.
type Manifest struct {
	Username    string        `json:"username"`
	GeneratedAt time.Time     `json:"generated_at"`
	Stats       Stats         `json:"stats"`
	Entries     []MediaRecord `json:"entries"`
}

// Build assembles a manifest from a work queue and its download results.
// Items and results are matched positionally, which the orchestrator
// guarantees.
func Build(username string, items []models.WorkItem, results []models.DownloadResult) *Manifest {
	now := time.Now()
	m := &Manifest{
		Username:    username,
		GeneratedAt: now,
		Entries:     make([]MediaRecord, 0, len(items)),
	}

	for i, item := range items {
		record := MediaRecord{
			ID:        item.ID,
			SourceURL: item.SourceURL,
		}

		if i < len(results) {
			r := results[i]
			record.Filepath = r.Filepath
			record.SizeBytes = r.SizeBytes
			record.Skipped = r.Skipped
			record.DryRun = r.DryRun
			record.Error = r.Error
			if r.Success && !r.Skipped && !r.DryRun {
				downloadedAt := now
				record.DownloadedAt = &downloadedAt
			}
			if r.Media != nil {
				record.ResourceURL = r.Media.ResourceURL
				record.Width = r.Media.Width
				record.Height = r.Media.Height
				record.UploadedAt = r.Media.UploadedAt
			}

			switch {
			case r.Skipped:
				m.Stats.Skipped++
			case r.Success:
				m.Stats.Downloaded++
			default:
				m.Stats.Failed++
			}
		}

		m.Entries = append(m.Entries, record)
	}

	m.Stats.Total = len(m.Entries)
	return m
}

// MergePrevious fills metadata gaps in this manifest from an earlier one.
// Skipped items never re-extract successfully on every run, so their entries
// inherit whatever the previous manifest knew about them.
func (m *Manifest) MergePrevious(prev *Manifest) {
	if prev == nil {
		return
	}

	byID := make(map[string]MediaRecord, len(prev.Entries))
	for _, e := range prev.Entries {
		byID[e.ID] = e
	}

	for i := range m.Entries {
		e := &m.Entries[i]
		old, ok := byID[e.ID]
		if !ok {
			continue
		}
		if e.ResourceURL == "" {
			e.ResourceURL = old.ResourceURL
		}
		if e.Width == nil {
			e.Width = old.Width
		}
		if e.Height == nil {
			e.Height = old.Height
		}
		if e.UploadedAt == nil {
			e.UploadedAt = old.UploadedAt
		}
		if e.DownloadedAt == nil && old.DownloadedAt != nil {
			e.DownloadedAt = old.DownloadedAt
		}
		if e.SizeBytes == 0 {
			e.SizeBytes = old.SizeBytes
		}
		if e.Filepath == "" && old.Filepath != "" {
			e.Filepath = old.Filepath
		}
	}
}

// Save writes the manifest as indented JSON. The write is atomic so an
// interrupted run never truncates an existing manifest.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename manifest: %w", err)
	}

	return nil
}

// Load reads a manifest written by Save.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &m, nil
}
