package cache

import (
	"sync"

	"github.com/IvanBrykalov/ttlcache/internal/util"
)

// shard is one partition of the keyspace: a map guarded by an RWMutex.
// Reads take the read lock; every mutation (put, delete, sweep) runs under
// the write lock, whichever strategy issued it.
type shard[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]entry[V] // guarded by mu

	// hot counters on their own cache lines
	_      util.CacheLinePad
	hits   util.PaddedCounter
	misses util.PaddedCounter
}

func newShard[K comparable, V any]() *shard[K, V] {
	return &shard[K, V]{m: make(map[K]entry[V])}
}

// get returns the value for k if present and live at now.
// It never mutates the map; expired entries are left for the sweeper.
func (s *shard[K, V]) get(k K, now int64) (V, bool) {
	s.mu.RLock()
	e, ok := s.m[k]
	s.mu.RUnlock()

	if !ok || !e.live(now) {
		s.misses.Add(1)
		var zero V
		return zero, false
	}
	s.hits.Add(1)
	return e.value(), true
}

func (s *shard[K, V]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// -------------------- mu held for writing --------------------

func (s *shard[K, V]) putLocked(k K, e entry[V]) { s.m[k] = e }

func (s *shard[K, V]) deleteLocked(k K) { delete(s.m, k) }

// sweepLocked removes every entry that is not live at now and returns how
// many were removed. onExpire, if set, sees each removed pair.
func (s *shard[K, V]) sweepLocked(now int64, onExpire func(K, V)) int {
	removed := 0
	for k, e := range s.m {
		if e.live(now) {
			continue
		}
		delete(s.m, k)
		removed++
		if onExpire != nil {
			onExpire(k, e.val)
		}
	}
	return removed
}
