package cache

import (
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeClock is a manually advanced Clock, safe to read from the sweeper.
type fakeClock struct{ t atomic.Int64 }

func (f *fakeClock) Now() int64          { return f.t.Load() }
func (f *fakeClock) add(d time.Duration) { f.t.Add(int64(d)) }

var strategies = []Strategy{StrategyLock, StrategyActor}

// newTestCache builds a cache with the sweeper disabled unless opt says otherwise.
func newTestCache[V any](t *testing.T, opt Options[string, V]) *cache[string, V] {
	t.Helper()
	if opt.SweepInterval == 0 {
		opt.SweepInterval = -1
	}
	if opt.Logger == nil {
		opt.Logger = zaptest.NewLogger(t)
	}
	c, err := newCache(opt)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// keysInDistinctShards returns two keys routed to different shards.
func keysInDistinctShards[V any](t *testing.T, st *storage[string, V]) (string, string) {
	t.Helper()
	a := "k:0"
	for i := 1; i < 10_000; i++ {
		b := "k:" + strconv.Itoa(i)
		if st.shardOf(b) != st.shardOf(a) {
			return a, b
		}
	}
	t.Fatal("no two keys in distinct shards")
	return "", ""
}

// resident reports whether k is in its shard's map, live or not.
func resident[V any](st *storage[string, V], k string) bool {
	s := st.shard(st.shardOf(k))
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[k]
	return ok
}

type countingMetrics struct {
	hits, misses, expired, unavailable, size, sizeCalls atomic.Int64
}

func (m *countingMetrics) Hit()              { m.hits.Add(1) }
func (m *countingMetrics) Miss()             { m.misses.Add(1) }
func (m *countingMetrics) Expired(n int)     { m.expired.Add(int64(n)) }
func (m *countingMetrics) Size(n int)        { m.size.Store(int64(n)); m.sizeCalls.Add(1) }
func (m *countingMetrics) QueueUnavailable() { m.unavailable.Add(1) }
