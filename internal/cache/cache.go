package cache

import "time"

// Cache defines a key-value cache API with per-entry TTL and hit/miss accounting.
// Implementations must be safe for concurrent use.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value with the default TTL.
	Set(key K, value V)

	// SetWithTTL stores the value with an explicit TTL. If ttl <= 0, the entry does not expire.
	SetWithTTL(key K, value V, ttl time.Duration)

	// Delete removes a key if present.
	Delete(key K)

	// Len returns the number of non-expired items currently stored.
	Len() int

	// Flush removes all entries and resets the hit/miss counters.
	Flush()

	// PurgeExpired scans and removes expired entries.
	PurgeExpired() int

	// Stats returns a snapshot of the cache counters.
	Stats() Stats
}

// Stats is a point-in-time snapshot of cache activity since the last Flush.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   int    `json:"keys"`
}
