package cache

import "time"

// Cache is a sharded, TTL-aware in-memory key/value store.
// All methods are safe for concurrent use by multiple goroutines.
//
// Reads never fail: a key that was never stored and a key whose TTL has
// passed both read as absent. Writes return an error only under the actor
// strategy (ErrQueueUnavailable) or after Close (ErrClosed).
type Cache[K comparable, V any] interface {
	// Put stores k→v with no expiry.
	Put(k K, v V) error

	// PutWithTTL stores k→v that stops being visible once ttl has elapsed.
	// A ttl of zero (or below) makes the entry invisible to the next Get.
	PutWithTTL(k K, v V, ttl time.Duration) error

	// Get returns the value for k if present and live. It never mutates
	// the store; expired entries are reclaimed by the sweeper.
	Get(k K) (V, bool)

	// Delete removes k. Deleting an absent key is a no-op.
	Delete(k K) error

	// Purge sweeps every shard immediately and returns how many expired
	// entries were removed.
	Purge() (int, error)

	// Len returns the number of resident entries, including expired entries
	// not yet reclaimed.
	Len() int

	// Stats returns hit/miss counters and the resident entry count.
	Stats() Stats

	// Close stops the sweeper and any shard consumers and waits for them.
	// It is safe to call more than once.
	Close() error
}
