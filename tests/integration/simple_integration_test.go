package integration

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vscoscraper/internal/downloader"
	"vscoscraper/pkg/browser"
	"vscoscraper/pkg/config"
	"vscoscraper/pkg/logger"
	"vscoscraper/pkg/metadata"
	"vscoscraper/pkg/storage"
	"vscoscraper/pkg/vsco"
)

// TestSingleItemPipelineOverHTTP pushes one item through the downloader
// with the real HTTP client and storage manager, checking both the saved
// bytes and the request the CDN actually received.
func TestSingleItemPipelineOverHTTP(t *testing.T) {
	helper := NewTestHelper(t)

	log := logger.NewTestLogger()
	store, err := storage.NewManager(helper.Config.Output.BaseDirectory)
	if err != nil {
		t.Fatalf("failed to create storage manager: %v", err)
	}
	client := vsco.NewClient(5*time.Second, "vscoscraper-integration/1.0", nil, log)
	dl := downloader.NewDownloader(helper.Extractor, client, store, helper.Config, log)

	item := buildQueue(1)[0]
	result := dl.DownloadWithRetry(context.Background(), item, &browser.PooledContext{})
	if !result.Success {
		t.Fatalf("download failed: %s", result.Error)
	}

	want := mediaContent(mediaPath(item.ID))
	got, err := os.ReadFile(result.Filepath)
	if err != nil {
		t.Fatalf("reading %s: %v", result.Filepath, err)
	}
	if !bytes.Equal(got, want) {
		t.Error("saved file does not match what the CDN served")
	}

	headers := helper.CDN.LastHeaders(mediaPath(item.ID))
	if ua := headers.Get("User-Agent"); ua != "vscoscraper-integration/1.0" {
		t.Errorf("CDN saw User-Agent %q", ua)
	}
	if ref := headers.Get("Referer"); ref != "https://vsco.co/" {
		t.Errorf("CDN saw Referer %q", ref)
	}
}

// TestTimeoutBoundsSlowEndpoint verifies that a hanging CDN endpoint burns
// its attempts against the configured timeout instead of stalling the run.
func TestTimeoutBoundsSlowEndpoint(t *testing.T) {
	helper := NewTestHelper(t)
	helper.Config.Download.Timeout = config.Duration(100 * time.Millisecond)
	orc, _ := helper.BuildPipeline()

	helper.CDN.SetDelay(mediaPath("m1"), 300*time.Millisecond)

	results, err := orc.DownloadConcurrently(context.Background(), buildQueue(1))
	if err != nil {
		t.Fatalf("download run failed: %v", err)
	}
	if results[0].Success {
		t.Fatal("expected the slow item to fail")
	}
	if !strings.Contains(results[0].Error, "network error") {
		t.Errorf("error = %q, want a network error", results[0].Error)
	}
	if got := helper.CDN.RequestsFor(mediaPath("m1")); got != helper.Config.Retry.MaxAttempts {
		t.Errorf("slow item was attempted %d times, want %d", got, helper.Config.Retry.MaxAttempts)
	}
}

// TestManifestDescribesRealRun builds and reloads a manifest from actual
// run results, with one item failing for good.
func TestManifestDescribesRealRun(t *testing.T) {
	helper := NewTestHelper(t)
	orc, _ := helper.BuildPipeline()

	helper.CDN.SetError(mediaPath("m2"), http.StatusNotFound)

	items := buildQueue(4)
	results, err := orc.DownloadConcurrently(context.Background(), items)
	if err != nil {
		t.Fatalf("download run failed: %v", err)
	}

	manifest := metadata.Build("itest_user", items, results)
	path := filepath.Join(helper.Config.Output.BaseDirectory, "manifest.json")
	if err := manifest.Save(path); err != nil {
		t.Fatalf("saving manifest: %v", err)
	}

	loaded, err := metadata.Load(path)
	if err != nil {
		t.Fatalf("loading manifest: %v", err)
	}
	if loaded.Username != "itest_user" {
		t.Errorf("username = %q", loaded.Username)
	}
	if loaded.Stats.Total != 4 || loaded.Stats.Downloaded != 3 || loaded.Stats.Failed != 1 {
		t.Errorf("stats = %+v, want 4 total, 3 downloaded, 1 failed", loaded.Stats)
	}

	for _, entry := range loaded.Entries {
		if entry.ID == "m2" {
			if entry.Error == "" {
				t.Error("failed entry should carry its error")
			}
			if entry.Filepath != "" {
				t.Error("failed entry should not claim a file")
			}
			continue
		}
		if entry.ResourceURL == "" {
			t.Errorf("entry %s is missing its resource URL", entry.ID)
		}
		if entry.SizeBytes == 0 || entry.DownloadedAt == nil {
			t.Errorf("entry %s is missing its download outcome", entry.ID)
		}
	}
}
