package scraper

import (
	"context"

	"vscoscraper/internal/downloader"
	"vscoscraper/pkg/browser"
	"vscoscraper/pkg/models"
)

// WorkQueueProducer discovers a profile's gallery and turns it into an
// ordered download queue. *vsco.ProfileScraper implements it.
type WorkQueueProducer interface {
	FetchWorkQueue(ctx context.Context, pc *browser.PooledContext, username string, limit int) ([]models.WorkItem, error)
}

// BrowserPool is the pool surface the scraper drives. It extends the
// orchestrator's view of the pool with lifecycle initialization.
type BrowserPool interface {
	downloader.ContextPool
	Initialize() error
}
