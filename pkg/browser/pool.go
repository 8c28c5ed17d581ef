package browser

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"vscoscraper/pkg/config"
	"vscoscraper/pkg/errors"
	"vscoscraper/pkg/logger"
)

// Pool maintains a bounded set of isolated browser contexts and hands them
// out one lease at a time. Contexts are recycled once they age past the
// configured lifetime or accumulate too many uses, so long runs do not drag
// browser state (cookies, memory) along indefinitely.
type Pool struct {
	cfg       config.BrowserConfig
	userAgent string
	logger    logger.Logger

	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	contexts    []*PooledContext
	initialized bool
	closed      bool

	// Overridable factories so tests can run the pool without a browser.
	launchBrowser func() error
	newRawContext func() (pageHost, error)
}

// NewPool creates an empty pool. No browser process is started until
// Initialize is called.
func NewPool(cfg *config.Config, log logger.Logger) *Pool {
	if log == nil {
		log = logger.GetLogger()
	}
	p := &Pool{
		cfg:       cfg.Browser,
		userAgent: cfg.VSCO.UserAgent,
		logger:    log,
	}
	p.launchBrowser = p.defaultLaunch
	p.newRawContext = p.defaultNewRawContext
	return p
}

// Initialize starts the browser engine and warms the pool with a single
// context. Calling it again on a live pool is a no-op; a launch failure is
// fatal and leaves the pool unusable.
func (p *Pool) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return &errors.Error{Type: errors.ErrorTypeBrowser, Message: "pool is closed"}
	}
	if p.initialized {
		return nil
	}

	if err := p.launchBrowser(); err != nil {
		return fmt.Errorf("launching browser engine: %w", err)
	}

	if _, err := p.createContextLocked(); err != nil {
		return fmt.Errorf("creating initial browser context: %w", err)
	}

	p.initialized = true
	p.logger.InfoWithFields("browser pool initialized", map[string]interface{}{
		"max_pool_size":    p.cfg.MaxPoolSize,
		"context_lifetime": p.cfg.ContextLifetime.Duration(),
		"max_context_uses": p.cfg.MaxContextUses,
		"headless":         p.cfg.Headless,
	})
	return nil
}

func (p *Pool) defaultLaunch() error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("starting playwright driver: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(p.cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-first-run",
			"--disable-gpu",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("launching chromium: %w", err)
	}

	p.pw = pw
	p.browser = browser
	return nil
}

func (p *Pool) defaultNewRawContext() (pageHost, error) {
	ctx, err := p.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(p.userAgent),
		Viewport: &playwright.Size{
			Width:  p.cfg.ViewportWidth,
			Height: p.cfg.ViewportHeight,
		},
	})
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

// Acquire returns an available context, creating one if the pool has room.
// When every context is leased and the pool is full it fails fast with a
// pool-exhausted error instead of blocking; admission control belongs to the
// semaphore in front of the pool.
func (p *Pool) Acquire() (*PooledContext, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, &errors.Error{Type: errors.ErrorTypeBrowser, Message: "pool is closed"}
	}
	if !p.initialized {
		return nil, &errors.Error{Type: errors.ErrorTypeBrowser, Message: "pool is not initialized"}
	}

	p.cleanupStaleLocked()

	for _, pc := range p.contexts {
		if !pc.inUse {
			return p.leaseLocked(pc), nil
		}
	}

	if len(p.contexts) < p.cfg.MaxPoolSize {
		pc, err := p.createContextLocked()
		if err != nil {
			return nil, err
		}
		return p.leaseLocked(pc), nil
	}

	return nil, &errors.Error{
		Type:    errors.ErrorTypePoolExhausted,
		Message: fmt.Sprintf("all %d browser contexts are leased", p.cfg.MaxPoolSize),
	}
}

// Release returns a leased context to the pool. Pages opened during the
// lease are closed so the next lease starts clean. Contexts that hit their
// use limit are replaced instead of going back into rotation.
func (p *Pool) Release(pc *PooledContext) {
	if pc == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.containsLocked(pc) {
		p.logger.WarnWithFields("released context does not belong to this pool", map[string]interface{}{
			"context_id": pc.id,
		})
		return
	}

	p.closePagesLocked(pc)
	pc.inUse = false
	pc.lastUsedAt = time.Now()

	if pc.useCount >= p.cfg.MaxContextUses {
		p.logger.DebugWithFields("context reached use limit, replacing", map[string]interface{}{
			"context_id": pc.id,
			"use_count":  pc.useCount,
		})
		p.replaceLocked(pc)
	}
}

// Cleanup tears down every context and the browser engine. It is
// best-effort and idempotent; close failures are logged, never returned.
func (p *Pool) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	for _, pc := range p.contexts {
		if err := pc.raw.Close(); err != nil {
			p.logger.WarnWithFields("failed to close browser context", map[string]interface{}{
				"context_id": pc.id,
				"error":      err.Error(),
			})
		}
	}
	p.contexts = nil

	if p.browser != nil {
		if err := p.browser.Close(); err != nil {
			p.logger.WarnWithFields("failed to close browser", map[string]interface{}{
				"error": err.Error(),
			})
		}
		p.browser = nil
	}
	if p.pw != nil {
		if err := p.pw.Stop(); err != nil {
			p.logger.WarnWithFields("failed to stop playwright driver", map[string]interface{}{
				"error": err.Error(),
			})
		}
		p.pw = nil
	}

	p.closed = true
	p.logger.Info("browser pool cleaned up")
}

// Size returns how many contexts currently exist, leased or not.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.contexts)
}

// Available returns how many contexts are idle and ready to lease.
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	available := 0
	for _, pc := range p.contexts {
		if !pc.inUse {
			available++
		}
	}
	return available
}

func (p *Pool) createContextLocked() (*PooledContext, error) {
	raw, err := p.newRawContext()
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeBrowser,
			Message: fmt.Sprintf("creating browser context: %v", err),
		}
	}

	now := time.Now()
	pc := &PooledContext{
		id:         uuid.New().String(),
		raw:        raw,
		createdAt:  now,
		lastUsedAt: now,
	}
	p.contexts = append(p.contexts, pc)

	p.logger.DebugWithFields("browser context created", map[string]interface{}{
		"context_id": pc.id,
		"pool_size":  len(p.contexts),
	})
	return pc, nil
}

func (p *Pool) leaseLocked(pc *PooledContext) *PooledContext {
	pc.inUse = true
	pc.lastUsedAt = time.Now()
	pc.useCount++
	return pc
}

func (p *Pool) containsLocked(pc *PooledContext) bool {
	for _, existing := range p.contexts {
		if existing == pc {
			return true
		}
	}
	return false
}

func (p *Pool) removeLocked(pc *PooledContext) {
	for i, existing := range p.contexts {
		if existing == pc {
			p.contexts = append(p.contexts[:i], p.contexts[i+1:]...)
			return
		}
	}
}

// closePagesLocked closes any pages left open by the previous lease.
func (p *Pool) closePagesLocked(pc *PooledContext) {
	for _, page := range pc.raw.Pages() {
		if err := page.Close(); err != nil {
			p.logger.WarnWithFields("failed to close leftover page", map[string]interface{}{
				"context_id": pc.id,
				"error":      err.Error(),
			})
		}
	}
}

// replaceLocked retires a context and creates a successor if the pool still
// has room. A failed replacement shrinks the pool; the next Acquire will try
// to grow it back.
func (p *Pool) replaceLocked(pc *PooledContext) {
	p.removeLocked(pc)

	if err := pc.raw.Close(); err != nil {
		p.logger.WarnWithFields("failed to close retired context", map[string]interface{}{
			"context_id": pc.id,
			"error":      err.Error(),
		})
	}

	if len(p.contexts) < p.cfg.MaxPoolSize {
		if _, err := p.createContextLocked(); err != nil {
			p.logger.WarnWithFields("failed to create replacement context", map[string]interface{}{
				"error":     err.Error(),
				"pool_size": len(p.contexts),
			})
		}
	}
}

// cleanupStaleLocked retires idle contexts that aged out or hit their use
// limit. Leased contexts are never touched here.
func (p *Pool) cleanupStaleLocked() {
	var stale []*PooledContext
	for _, pc := range p.contexts {
		if pc.inUse {
			continue
		}
		if time.Since(pc.createdAt) > p.cfg.ContextLifetime.Duration() || pc.useCount >= p.cfg.MaxContextUses {
			stale = append(stale, pc)
		}
	}

	for _, pc := range stale {
		p.logger.DebugWithFields("recycling stale context", map[string]interface{}{
			"context_id": pc.id,
			"age":        time.Since(pc.createdAt),
			"use_count":  pc.useCount,
		})
		p.replaceLocked(pc)
	}
}
