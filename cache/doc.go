// Package cache provides a generic, sharded, TTL-aware in-memory key/value
// store with a pluggable write-serialization strategy.
//
// Design
//
//   - Sharding: the keyspace is split into a fixed number of shards chosen at
//     construction (Options.Shards). A key is routed by hash(key) mod shards and
//     never moves. Each shard holds a map guarded by an RWMutex; no lock spans
//     the whole store.
//
//   - Writes: Options.Strategy selects how writes to one shard are serialized.
//     StrategyLock applies them on the caller's goroutine under the shard's
//     write lock. StrategyActor sends them as commands to a per-shard queue
//     drained by a single consumer goroutine, so the writes of a shard
//     complete in the order they were enqueued. Callers wait for a one-shot
//     reply bounded by Options.ReplyTimeout and get ErrQueueUnavailable when
//     it does not arrive. Reads bypass the queue under either strategy.
//
//   - TTL: PutWithTTL stores an absolute deadline on a monotonic clock. Get
//     recomputes liveness on every call (now >= deadline means expired) and
//     never mutates the map, so a zero TTL is invisible to the very next Get.
//
//   - Sweeper: a background goroutine visits one shard every
//     Options.SweepInterval in round-robin order and removes expired entries
//     through the active strategy. It bounds memory held by entries nobody
//     reads again; correctness of Get does not depend on it.
//
//   - Observability: Options.Metrics receives Hit/Miss/Expired/Size signals
//     (metrics/prom exports them to Prometheus); Options.Logger takes a
//     *zap.Logger.
//
// Basic usage
//
//	c := cache.MustNew[string, []byte](cache.Options[string, []byte]{Shards: 16})
//	defer c.Close()
//	_ = c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//	_ = c.Delete("a")
//
// With TTL and the actor strategy
//
//	c, err := cache.New[string, string](cache.Options[string, string]{
//	    Shards:       8,
//	    Strategy:     cache.StrategyActor,
//	    ReplyTimeout: 500 * time.Millisecond,
//	})
//	if err != nil { ... }
//	_ = c.PutWithTTL("session", "token", 30*time.Second)
//	_ = c.PutWithTTL("gone", "x", 0) // Get("gone") misses immediately
package cache
