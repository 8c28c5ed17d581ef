package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vscoscraper/pkg/models"
)

func intPtr(v int) *int { return &v }

func TestBuildMatchesItemsToResults(t *testing.T) {
	items := []models.WorkItem{
		{ID: "a", SourceURL: "https://vsco.co/user/media/a"},
		{ID: "b", SourceURL: "https://vsco.co/user/media/b"},
		{ID: "c", SourceURL: "https://vsco.co/user/media/c"},
	}
	uploaded := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	results := []models.DownloadResult{
		{
			WorkItemID: "a",
			Success:    true,
			Filepath:   "/tmp/a.jpg",
			SizeBytes:  1024,
			Media: &models.ExtractedMedia{
				ResourceURL: "https://im.vsco.co/a.jpg",
				Width:       intPtr(2048),
				Height:      intPtr(1365),
				UploadedAt:  &uploaded,
			},
		},
		{WorkItemID: "b", Success: true, Skipped: true, Filepath: "/tmp/b.jpg", SizeBytes: 512},
		{WorkItemID: "c", Success: false, Error: "max retry attempts (3) exceeded: network timeout"},
	}

	m := Build("user", items, results)

	if m.Username != "user" {
		t.Errorf("Expected username user, got %s", m.Username)
	}
	if m.Stats.Total != 3 || m.Stats.Downloaded != 1 || m.Stats.Skipped != 1 || m.Stats.Failed != 1 {
		t.Errorf("Unexpected stats: %+v", m.Stats)
	}
	if len(m.Entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(m.Entries))
	}

	first := m.Entries[0]
	if first.ID != "a" || first.ResourceURL != "https://im.vsco.co/a.jpg" {
		t.Errorf("Unexpected first entry: %+v", first)
	}
	if first.Width == nil || *first.Width != 2048 {
		t.Error("Expected width to be carried into the record")
	}
	if first.DownloadedAt == nil {
		t.Error("Expected downloaded_at on a successful fresh download")
	}

	if !m.Entries[1].Skipped {
		t.Error("Expected second entry to be skipped")
	}
	if m.Entries[1].DownloadedAt != nil {
		t.Error("Expected no downloaded_at on a skipped entry")
	}

	if m.Entries[2].Error == "" {
		t.Error("Expected failed entry to carry the error message")
	}
}

func TestBuildDryRunCountsAsDownloaded(t *testing.T) {
	items := []models.WorkItem{{ID: "a", SourceURL: "u"}}
	results := []models.DownloadResult{{WorkItemID: "a", Success: true, DryRun: true}}

	m := Build("user", items, results)

	if m.Stats.Downloaded != 1 {
		t.Errorf("Expected dry-run success to count as downloaded, stats: %+v", m.Stats)
	}
	if m.Entries[0].DownloadedAt != nil {
		t.Error("Expected no downloaded_at on a dry-run entry")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	items := []models.WorkItem{{ID: "a", SourceURL: "https://vsco.co/u/media/a"}}
	results := []models.DownloadResult{{WorkItemID: "a", Success: true, Filepath: "/tmp/a.jpg", SizeBytes: 9}}

	m := Build("someone", items, results)
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Atomic write leaves no temp file
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temp file to be gone after save")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Username != "someone" {
		t.Errorf("Expected username someone, got %s", loaded.Username)
	}
	if len(loaded.Entries) != 1 || loaded.Entries[0].ID != "a" {
		t.Errorf("Unexpected entries after load: %+v", loaded.Entries)
	}
	if loaded.Stats.Downloaded != 1 {
		t.Errorf("Expected 1 downloaded in loaded stats, got %d", loaded.Stats.Downloaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error loading a missing manifest")
	}
}

func TestMergePreviousFillsSkippedEntries(t *testing.T) {
	uploaded := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)
	downloadedAt := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	prev := &Manifest{
		Username: "user",
		Entries: []MediaRecord{
			{
				ID:           "a",
				SourceURL:    "https://vsco.co/user/media/a",
				ResourceURL:  "https://im.vsco.co/a.jpg",
				Width:        intPtr(1600),
				Height:       intPtr(900),
				UploadedAt:   &uploaded,
				Filepath:     "/downloads/user/a.jpg",
				SizeBytes:    2048,
				DownloadedAt: &downloadedAt,
			},
		},
	}

	items := []models.WorkItem{
		{ID: "a", SourceURL: "https://vsco.co/user/media/a"},
		{ID: "b", SourceURL: "https://vsco.co/user/media/b"},
	}
	results := []models.DownloadResult{
		{WorkItemID: "a", Success: true, Skipped: true, Filepath: "/downloads/user/a.jpg", SizeBytes: 2048},
		{WorkItemID: "b", Success: true, Filepath: "/downloads/user/b.jpg", SizeBytes: 4096,
			Media: &models.ExtractedMedia{ResourceURL: "https://im.vsco.co/b.jpg"}},
	}

	m := Build("user", items, results)
	m.MergePrevious(prev)

	skipped := m.Entries[0]
	if skipped.ResourceURL != "https://im.vsco.co/a.jpg" {
		t.Error("Expected skipped entry to inherit the previous resource URL")
	}
	if skipped.Width == nil || *skipped.Width != 1600 {
		t.Error("Expected skipped entry to inherit dimensions")
	}
	if skipped.UploadedAt == nil || !skipped.UploadedAt.Equal(uploaded) {
		t.Error("Expected skipped entry to inherit the upload time")
	}
	if skipped.DownloadedAt == nil || !skipped.DownloadedAt.Equal(downloadedAt) {
		t.Error("Expected skipped entry to inherit the original download time")
	}

	// Fresh downloads keep their own extraction
	if m.Entries[1].ResourceURL != "https://im.vsco.co/b.jpg" {
		t.Error("Expected fresh entry to keep its own resource URL")
	}
}

func TestMergePreviousNilIsNoop(t *testing.T) {
	m := Build("user", []models.WorkItem{{ID: "a"}}, []models.DownloadResult{{WorkItemID: "a"}})
	m.MergePrevious(nil)
	if len(m.Entries) != 1 {
		t.Errorf("Expected entries untouched, got %d", len(m.Entries))
	}
}
