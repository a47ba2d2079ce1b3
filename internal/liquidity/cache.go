// Package liquidity provides a time-bounded, write-throttled cache of
// liquidity-pool creation events.
package liquidity

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-token-qualifier/internal/config"
	"solana-token-qualifier/internal/domain"
)

// Stats summarizes cache usage.
type Stats struct {
	Entries    int   // live (non-expired) entries
	Stores     int64 // accepted store calls
	Throttled  int64 // store calls rejected by the write throttle
	Retrievals int64 // total entry retrievals across GetAll/Get
	Expired    int64 // entries removed by the sweep
}

// Cache is an in-memory cache of pool-creation events keyed by token address.
//
// Entries expire after the configured TTL. Repeated stores for the same key
// within the throttle window are rejected, not merged, so each key is
// logically single-writer inside the window. Reads never delete; eviction is
// the sweep's job, keeping the read path cheap.
type Cache struct {
	mu        sync.RWMutex
	data      map[string]*domain.CachedLiquidityEvent
	lastWrite map[string]time.Time

	ttl           time.Duration
	writeThrottle time.Duration
	sweepInterval time.Duration

	stores     int64
	throttled  int64
	retrievals int64
	expired    int64

	clock  func() time.Time
	logger zerolog.Logger

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewCache creates a cache with the given tunables. The sweep does not run
// until Start is called.
func NewCache(cfg config.Cache, logger zerolog.Logger) *Cache {
	return &Cache{
		data:          make(map[string]*domain.CachedLiquidityEvent),
		lastWrite:     make(map[string]time.Time),
		ttl:           cfg.TTL,
		writeThrottle: cfg.WriteThrottle,
		sweepInterval: cfg.SweepInterval,
		clock:         time.Now,
		logger:        logger.With().Str("component", "liquidity_cache").Logger(),
		done:          make(chan struct{}),
	}
}

// WithClock sets a custom clock, for deterministic tests.
func (c *Cache) WithClock(clock func() time.Time) *Cache {
	c.clock = clock
	return c
}

// Start launches the periodic sweep goroutine.
func (c *Cache) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				removed := c.Sweep()
				if removed > 0 {
					c.logger.Debug().Int("removed", removed).Msg("cache sweep")
				}
			}
		}
	}()
}

// Stop terminates the sweep goroutine. Safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// Store inserts a pool-creation event. Returns false when a store for the
// same token address happened within the throttle window; the earlier entry
// is kept unchanged.
func (c *Cache) Store(event domain.LiquidityEvent) bool {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.lastWrite[event.TokenAddress]; ok && now.Sub(last) < c.writeThrottle {
		c.throttled++
		return false
	}

	c.data[event.TokenAddress] = &domain.CachedLiquidityEvent{
		Event:    event,
		StoredAt: now.UnixMilli(),
	}
	c.lastWrite[event.TokenAddress] = now
	c.stores++
	return true
}

// Get returns the cached event for a token address if present and not
// expired, counting the retrieval.
func (c *Cache) Get(address string) (*domain.CachedLiquidityEvent, bool) {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[address]
	if !ok || c.isExpired(e, now) {
		return nil, false
	}

	e.Retrievals++
	c.retrievals++
	entryCopy := *e
	return &entryCopy, true
}

// GetAll returns all non-expired entries. Expired entries are filtered out
// but not deleted here.
func (c *Cache) GetAll() []domain.CachedLiquidityEvent {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]domain.CachedLiquidityEvent, 0, len(c.data))
	for _, e := range c.data {
		if c.isExpired(e, now) {
			continue
		}
		e.Retrievals++
		c.retrievals++
		result = append(result, *e)
	}
	return result
}

// Sweep evicts expired entries and stale throttle timestamps.
// Returns the number of entries removed.
func (c *Cache) Sweep() int {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for addr, e := range c.data {
		if c.isExpired(e, now) {
			delete(c.data, addr)
			removed++
		}
	}
	for addr, last := range c.lastWrite {
		if now.Sub(last) >= c.ttl {
			delete(c.lastWrite, addr)
		}
	}
	c.expired += int64(removed)
	return removed
}

// GetStats returns a snapshot of cache usage counters.
func (c *Cache) GetStats() Stats {
	now := c.clock()

	c.mu.RLock()
	defer c.mu.RUnlock()

	live := 0
	for _, e := range c.data {
		if !c.isExpired(e, now) {
			live++
		}
	}
	return Stats{
		Entries:    live,
		Stores:     c.stores,
		Throttled:  c.throttled,
		Retrievals: c.retrievals,
		Expired:    c.expired,
	}
}

func (c *Cache) isExpired(e *domain.CachedLiquidityEvent, now time.Time) bool {
	return now.UnixMilli()-e.StoredAt >= c.ttl.Milliseconds()
}
