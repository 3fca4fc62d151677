package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultTTL           = 300 * time.Second
	DefaultSweepInterval = 600 * time.Second
)

// entry stores a cached value with its write and expiration timestamps.
type entry[V any] struct {
	value     V
	storedAt  time.Time
	expiresAt time.Time // zero means no expiration
}

func (e entry[V]) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

// TTLCache is a map-backed cache guarded by a RWMutex. Expired entries are
// dropped lazily on Get and proactively by the sweeper.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]

	defaultTTL time.Duration
	hits       atomic.Uint64
	misses     atomic.Uint64

	sweepInterval time.Duration
	stopOnce      sync.Once
	stop          chan struct{}
	wg            sync.WaitGroup
}

// Options controls construction of a TTLCache.
type Options struct {
	// DefaultTTL applies to Set. Zero selects DefaultTTL.
	DefaultTTL time.Duration

	// SweepInterval is the period of the background purge started by Start.
	// Zero selects DefaultSweepInterval.
	SweepInterval time.Duration
}

// NewTTLCache constructs an empty cache. Call Start to enable the sweeper.
func NewTTLCache[K comparable, V any](opts Options) *TTLCache[K, V] {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	return &TTLCache[K, V]{
		items:         make(map[K]entry[V]),
		defaultTTL:    opts.DefaultTTL,
		sweepInterval: opts.SweepInterval,
		stop:          make(chan struct{}),
	}
}

// now is a small indirection to allow test stubbing if needed.
var now = time.Now

// Get implements Cache.Get.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	if e.expired(now()) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if cur, still := c.items[key]; still && cur.expired(now()) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set implements Cache.Set.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL implements Cache.SetWithTTL.
func (c *TTLCache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	ts := now()
	var exp time.Time
	if ttl > 0 {
		exp = ts.Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{
		value:     value,
		storedAt:  ts,
		expiresAt: exp,
	}
}

// Delete implements Cache.Delete.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len implements Cache.Len. It counts only non-expired entries.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ts := now()
	count := 0
	for _, e := range c.items {
		if !e.expired(ts) {
			count++
		}
	}
	return count
}

// Flush implements Cache.Flush.
func (c *TTLCache[K, V]) Flush() {
	c.mu.Lock()
	c.items = make(map[K]entry[V])
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

// PurgeExpired implements Cache.PurgeExpired and reports how many entries it removed.
func (c *TTLCache[K, V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return 0
	}
	ts := now()
	removed := 0
	for k, e := range c.items {
		if e.expired(ts) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Stats implements Cache.Stats.
func (c *TTLCache[K, V]) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Keys:   c.Len(),
	}
}

// Start launches the background sweeper. It is a no-op after Close.
func (c *TTLCache[K, V]) Start() {
	select {
	case <-c.stop:
		return
	default:
	}
	c.wg.Add(1)
	go c.sweepLoop()
}

// Close stops the sweeper and waits for it to exit.
func (c *TTLCache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.wg.Wait()
}

func (c *TTLCache[K, V]) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.PurgeExpired()
		}
	}
}

// Ensure TTLCache implements Cache at compile time.
var _ Cache[any, any] = (*TTLCache[any, any])(nil)
