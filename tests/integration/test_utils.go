package integration

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"vscoscraper/internal/downloader"
	"vscoscraper/pkg/browser"
	"vscoscraper/pkg/config"
	"vscoscraper/pkg/logger"
	"vscoscraper/pkg/models"
	"vscoscraper/pkg/storage"
	"vscoscraper/pkg/vsco"
)

// TestHelper wires the real download pipeline against the mock CDN. The
// HTTP client, retry loop, batching scheduler, concurrency gate and
// storage layer are all real; only the browser pieces are stand-ins, since
// spinning up an actual browser is out of scope for these tests.
type TestHelper struct {
	t         *testing.T
	CDN       *MockCDNServer
	Config    *config.Config
	Extractor *stubExtractor
	Pool      *staticPool
}

// NewTestHelper starts a mock CDN and prepares a configuration tuned for
// fast test runs. The CDN is shut down automatically when the test ends.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	cdn := NewMockCDNServer()
	t.Cleanup(cdn.Close)

	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.Output.CreateUserFolders = false
	cfg.Download.MaxConcurrency = 2
	cfg.Download.EnableBatching = true
	cfg.Download.BatchSize = 3
	cfg.Download.DelayBetweenBatches = config.Duration(5 * time.Millisecond)
	cfg.Download.Timeout = config.Duration(5 * time.Second)
	cfg.Browser.MaxPoolSize = 2
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = config.Duration(5 * time.Millisecond)
	cfg.Retry.MaxDelay = config.Duration(50 * time.Millisecond)
	cfg.Retry.Multiplier = 2.0

	return &TestHelper{
		t:         t,
		CDN:       cdn,
		Config:    cfg,
		Extractor: &stubExtractor{baseURL: cdn.URL()},
		Pool:      &staticPool{size: cfg.Browser.MaxPoolSize},
	}
}

// BuildPipeline assembles an orchestrator over the real downloader, HTTP
// client and storage manager. Each call builds a fresh storage manager, so
// a second pipeline over the same directory sees what the first one wrote,
// the same way a rerun of the binary would.
func (h *TestHelper) BuildPipeline() (*downloader.Orchestrator, *storage.Manager) {
	h.t.Helper()

	log := logger.NewTestLogger()

	store, err := storage.NewManager(h.Config.Output.BaseDirectory)
	if err != nil {
		h.t.Fatalf("failed to create storage manager: %v", err)
	}

	client := vsco.NewClient(h.Config.Download.Timeout.Duration(), "", nil, log)
	dl := downloader.NewDownloader(h.Extractor, client, store, h.Config, log)

	orc, err := downloader.NewOrchestrator(h.Pool, dl, h.Config, log)
	if err != nil {
		h.t.Fatalf("failed to create orchestrator: %v", err)
	}

	return orc, store
}

// buildQueue returns n work items named m1..mn, the way profile discovery
// would emit them.
func buildQueue(n int) []models.WorkItem {
	items := make([]models.WorkItem, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("m%d", i)
		items = append(items, models.WorkItem{
			ID:        id,
			SourceURL: "https://vsco.co/itest_user/media/" + id,
			Info:      models.MediaInfo{Index: i - 1},
		})
	}
	return items
}

// mediaPath returns the CDN path a work item's bytes are served under.
func mediaPath(id string) string {
	return "/media/" + id + ".jpg"
}

// stubExtractor resolves work items straight to CDN URLs instead of
// driving a browser page.
type stubExtractor struct {
	baseURL string
	calls   atomic.Int32
	failFor map[string]error
}

func (e *stubExtractor) Extract(ctx context.Context, pc *browser.PooledContext, item models.WorkItem) (*models.ExtractedMedia, error) {
	e.calls.Add(1)
	if err, ok := e.failFor[item.ID]; ok {
		return nil, err
	}
	return &models.ExtractedMedia{
		ResourceURL: e.baseURL + mediaPath(item.ID),
	}, nil
}

// staticPool hands out inert browser contexts and keeps lease counters so
// tests can verify acquire and release stay balanced.
type staticPool struct {
	size     int
	acquires atomic.Int32
	releases atomic.Int32
	cleaned  atomic.Bool
}

func (p *staticPool) Acquire() (*browser.PooledContext, error) {
	p.acquires.Add(1)
	return &browser.PooledContext{}, nil
}

func (p *staticPool) Release(pc *browser.PooledContext) {
	p.releases.Add(1)
}

func (p *staticPool) Size() int      { return p.size }
func (p *staticPool) Available() int { return p.size }
func (p *staticPool) Cleanup()       { p.cleaned.Store(true) }
