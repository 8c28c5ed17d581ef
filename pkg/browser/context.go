package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// pageHost is the slice of playwright.BrowserContext the pool works with.
// Tests substitute a fake so pool behavior can be exercised without a real
// browser process.
type pageHost interface {
	NewPage() (playwright.Page, error)
	Pages() []playwright.Page
	Close(options ...playwright.BrowserContextCloseOptions) error
}

// PooledContext is one leased browser context plus the bookkeeping the pool
// needs to recycle it. All mutable fields are guarded by the owning pool's
// mutex.
type PooledContext struct {
	id         string
	raw        pageHost
	createdAt  time.Time
	lastUsedAt time.Time
	useCount   int
	inUse      bool
}

// ID returns the context's pool-unique identifier, useful for log
// correlation.
func (pc *PooledContext) ID() string {
	return pc.id
}

// NewPage opens a fresh page in this context. The caller owns the page and
// should close it when done so the context stays lean across leases.
func (pc *PooledContext) NewPage() (playwright.Page, error) {
	return pc.raw.NewPage()
}
