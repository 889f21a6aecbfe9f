package cache

import (
	"fmt"

	"github.com/IvanBrykalov/ttlcache/internal/util"
)

// storage is the fixed array of shards plus the routing function.
// The array is never resized, so routing needs no coordination.
type storage[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	clock  Clock

	// onApply runs at the start of every exclusive mutation, with the
	// shard's write lock held. Tests use it to inject latency or panics.
	onApply func(idx int)
}

func newStorage[K comparable, V any](n int, hash func(K) uint64, clock Clock) (*storage[K, V], error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: shard count must be >= 1, got %d", ErrInvalidConfiguration, n)
	}
	st := &storage[K, V]{
		shards: make([]*shard[K, V], n),
		hash:   hash,
		clock:  clock,
	}
	for i := range st.shards {
		st.shards[i] = newShard[K, V]()
	}
	return st, nil
}

// shardOf routes k to its shard index: hash(k) mod shard count.
func (st *storage[K, V]) shardOf(k K) int {
	return util.ShardIndex(st.hash(k), len(st.shards))
}

// shard returns the handle for index idx.
func (st *storage[K, V]) shard(idx int) *shard[K, V] { return st.shards[idx] }

func (st *storage[K, V]) count() int { return len(st.shards) }

func (st *storage[K, V]) now() int64 { return st.clock.Now() }

// apply runs fn with exclusive access to shard idx. It is the only path by
// which shard contents change, for both strategies and for the sweeper.
func (st *storage[K, V]) apply(idx int, fn func(s *shard[K, V])) {
	s := st.shards[idx]
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.onApply != nil {
		st.onApply(idx)
	}
	fn(s)
}

// get performs a lazy-expiry read.
func (st *storage[K, V]) get(k K) (V, bool) {
	return st.shards[st.shardOf(k)].get(k, st.now())
}

func (st *storage[K, V]) len() int {
	total := 0
	for _, s := range st.shards {
		total += s.len()
	}
	return total
}
