package browser

import (
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"vscoscraper/pkg/config"
	errs "vscoscraper/pkg/errors"
	"vscoscraper/pkg/logger"
)

// fakePageHost stands in for a playwright browser context.
type fakePageHost struct {
	mu       sync.Mutex
	closed   bool
	closeErr error
}

func (f *fakePageHost) NewPage() (playwright.Page, error) { return nil, nil }
func (f *fakePageHost) Pages() []playwright.Page          { return nil }

func (f *fakePageHost) Close(options ...playwright.BrowserContextCloseOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakePageHost) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// newTestPool builds a pool whose browser layer is faked out. It returns the
// pool and a pointer to the list of contexts the factory produced.
func newTestPool(log logger.Logger, mutate func(*config.Config)) (*Pool, *[]*fakePageHost) {
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	p := NewPool(cfg, log)
	hosts := &[]*fakePageHost{}
	p.launchBrowser = func() error { return nil }
	p.newRawContext = func() (pageHost, error) {
		h := &fakePageHost{}
		*hosts = append(*hosts, h)
		return h, nil
	}
	return p, hosts
}

func TestPoolInitializeWarmsOneContext(t *testing.T) {
	p, hosts := newTestPool(nil, nil)

	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if p.Size() != 1 {
		t.Errorf("Expected pool size 1 after initialize, got %d", p.Size())
	}
	if p.Available() != 1 {
		t.Errorf("Expected 1 available context, got %d", p.Available())
	}
	if len(*hosts) != 1 {
		t.Errorf("Expected exactly one raw context created, got %d", len(*hosts))
	}

	// Initializing again must not create more contexts
	if err := p.Initialize(); err != nil {
		t.Fatalf("Second Initialize failed: %v", err)
	}
	if p.Size() != 1 {
		t.Errorf("Expected size to stay 1 after repeat initialize, got %d", p.Size())
	}
}

func TestPoolAcquireCreatesUpToLimit(t *testing.T) {
	p, _ := newTestPool(nil, func(c *config.Config) {
		c.Browser.MaxPoolSize = 2
		c.Download.MaxConcurrency = 2
	})
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	a, err := p.Acquire()
	if err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}
	b, err := p.Acquire()
	if err != nil {
		t.Fatalf("Second acquire failed: %v", err)
	}
	if a == b {
		t.Fatal("Expected distinct contexts for concurrent leases")
	}
	if p.Size() != 2 {
		t.Errorf("Expected pool to grow to 2, got %d", p.Size())
	}

	// The pool is full and everything is leased
	_, err = p.Acquire()
	if err == nil {
		t.Fatal("Expected acquire to fail when pool is exhausted")
	}
	var scrapeErr *errs.Error
	if !stderrors.As(err, &scrapeErr) || scrapeErr.Type != errs.ErrorTypePoolExhausted {
		t.Errorf("Expected pool_exhausted error, got %v", err)
	}
}

func TestPoolReleaseMakesContextAvailable(t *testing.T) {
	p, _ := newTestPool(nil, nil)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	a, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if p.Available() != 0 {
		t.Errorf("Expected no available contexts while leased, got %d", p.Available())
	}

	p.Release(a)
	if p.Available() != 1 {
		t.Errorf("Expected 1 available context after release, got %d", p.Available())
	}

	// An idle context is reused rather than a new one created
	b, err := p.Acquire()
	if err != nil {
		t.Fatalf("Re-acquire failed: %v", err)
	}
	if a != b {
		t.Error("Expected the released context to be leased again")
	}
}

func TestPoolReleaseForeignContextWarns(t *testing.T) {
	log := logger.NewTestLogger()
	p, _ := newTestPool(log, nil)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	p.Release(&PooledContext{id: "stranger"})

	warns := log.GetMessagesByLevel("WARN")
	if len(warns) != 1 {
		t.Fatalf("Expected one warning for foreign release, got %d", len(warns))
	}
	if p.Size() != 1 {
		t.Errorf("Expected pool size unchanged, got %d", p.Size())
	}
	if p.Available() != 1 {
		t.Errorf("Expected pool availability unchanged, got %d", p.Available())
	}
}

func TestPoolReleaseNilIsNoop(t *testing.T) {
	p, _ := newTestPool(nil, nil)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	p.Release(nil)
	if p.Size() != 1 {
		t.Errorf("Expected pool untouched by nil release, size %d", p.Size())
	}
}

func TestPoolReplacesContextAfterMaxUses(t *testing.T) {
	p, hosts := newTestPool(nil, func(c *config.Config) {
		c.Browser.MaxContextUses = 2
	})
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	first, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	p.Release(first)

	// Second lease hits the use limit, so release retires the context
	again, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if again != first {
		t.Fatal("Expected the same context on second lease")
	}
	p.Release(again)

	if !(*hosts)[0].isClosed() {
		t.Error("Expected worn-out context to be closed")
	}
	if p.Size() != 1 {
		t.Errorf("Expected replacement to keep pool size 1, got %d", p.Size())
	}

	fresh, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire after replacement failed: %v", err)
	}
	if fresh == first {
		t.Error("Expected a fresh context after replacement")
	}
}

func TestPoolRecyclesExpiredContexts(t *testing.T) {
	p, hosts := newTestPool(nil, func(c *config.Config) {
		c.Browser.ContextLifetime = config.Duration(time.Millisecond)
	})
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	pc, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if !(*hosts)[0].isClosed() {
		t.Error("Expected expired context to be closed during acquire")
	}
	if len(*hosts) < 2 {
		t.Fatalf("Expected a replacement context, got %d total", len(*hosts))
	}
	if pc.raw == (*hosts)[0] {
		t.Error("Expected the lease to use the replacement, not the expired context")
	}
}

func TestPoolExpiryDoesNotTouchLeasedContexts(t *testing.T) {
	p, _ := newTestPool(nil, func(c *config.Config) {
		c.Browser.ContextLifetime = config.Duration(time.Millisecond)
		c.Browser.MaxPoolSize = 3
	})
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	leased, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	leasedHost := leased.raw.(*fakePageHost)

	time.Sleep(10 * time.Millisecond)

	// Acquiring again triggers stale cleanup, which must skip the lease
	if _, err := p.Acquire(); err != nil {
		t.Fatalf("Second acquire failed: %v", err)
	}
	if leasedHost.isClosed() {
		t.Error("Expected leased context to survive stale cleanup")
	}

	p.Release(leased)
}

func TestPoolCleanupIdempotent(t *testing.T) {
	p, hosts := newTestPool(nil, nil)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	p.Cleanup()
	p.Cleanup()

	if p.Size() != 0 {
		t.Errorf("Expected empty pool after cleanup, got %d", p.Size())
	}
	for i, h := range *hosts {
		if !h.isClosed() {
			t.Errorf("Expected context %d to be closed", i)
		}
	}

	if _, err := p.Acquire(); err == nil {
		t.Error("Expected acquire to fail on a closed pool")
	}
}

func TestPoolAcquireBeforeInitialize(t *testing.T) {
	p, _ := newTestPool(nil, nil)

	_, err := p.Acquire()
	if err == nil {
		t.Fatal("Expected acquire to fail before initialize")
	}
	var scrapeErr *errs.Error
	if !stderrors.As(err, &scrapeErr) || scrapeErr.Type != errs.ErrorTypeBrowser {
		t.Errorf("Expected browser error, got %v", err)
	}
}

func TestPoolInitializeLaunchFailure(t *testing.T) {
	p, _ := newTestPool(nil, nil)
	p.launchBrowser = func() error { return stderrors.New("no chromium") }

	if err := p.Initialize(); err == nil {
		t.Fatal("Expected initialize to propagate launch failure")
	}
	if _, err := p.Acquire(); err == nil {
		t.Error("Expected pool to stay unusable after failed launch")
	}
}

func TestPoolAcquireContextCreationFailure(t *testing.T) {
	p, _ := newTestPool(nil, func(c *config.Config) {
		c.Browser.MaxPoolSize = 2
		c.Download.MaxConcurrency = 2
	})
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if _, err := p.Acquire(); err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	// The browser starts refusing new contexts
	p.newRawContext = func() (pageHost, error) {
		return nil, stderrors.New("browser has gone away")
	}

	_, err := p.Acquire()
	if err == nil {
		t.Fatal("Expected acquire to fail when context creation fails")
	}
	var scrapeErr *errs.Error
	if !stderrors.As(err, &scrapeErr) || scrapeErr.Type != errs.ErrorTypeBrowser {
		t.Errorf("Expected browser error, got %v", err)
	}
}
