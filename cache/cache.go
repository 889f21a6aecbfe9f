package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// cache wires the sharded storage, a mutation backend and the sweeper.
type cache[K comparable, V any] struct {
	st *storage[K, V]
	be mutationBackend[K, V]
	sw *sweeper[K, V] // nil when the sweeper is disabled

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	cancel    context.CancelFunc
	bg        errgroup.Group // sweeper and shard consumers

	opt Options[K, V]
	log *zap.Logger
}

// New constructs a store from opt and starts its background goroutines.
// It returns ErrInvalidConfiguration (wrapped) when opt is unusable.
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	return newCache(opt)
}

// MustNew is like New but panics on invalid configuration.
func MustNew[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	c, err := New(opt)
	if err != nil {
		panic(err)
	}
	return c
}

func newCache[K comparable, V any](opt Options[K, V]) (*cache[K, V], error) {
	opt, err := opt.withDefaults()
	if err != nil {
		return nil, err
	}
	st, err := newStorage[K, V](opt.Shards, opt.Hash, opt.Clock)
	if err != nil {
		return nil, err
	}

	c := &cache[K, V]{st: st, opt: opt, log: opt.Logger}

	switch opt.Strategy {
	case StrategyActor:
		a := newActorBackend(st, opt)
		for i := 0; i < st.count(); i++ {
			idx := i
			c.bg.Go(func() error { return a.consume(idx) })
		}
		c.be = a
	default:
		c.be = newLockBackend(st, opt.OnExpire)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	if opt.SweepInterval > 0 {
		c.sw = newSweeper(c.be, st, opt)
		c.bg.Go(func() error { return c.sw.run(ctx) })
	}

	c.log.Debug("cache started",
		zap.Int("shards", opt.Shards),
		zap.Stringer("strategy", opt.Strategy),
		zap.Duration("sweep_interval", opt.SweepInterval))
	return c, nil
}

// ---- Cache[K,V] implementation ----

func (c *cache[K, V]) Put(k K, v V) error {
	return c.write(k, persistent(v))
}

// PutWithTTL computes the deadline from the monotonic clock. Negative
// ttls are treated as zero; deadlines saturate instead of overflowing.
func (c *cache[K, V]) PutWithTTL(k K, v V, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.write(k, expiring(v, deadlineAfter(c.st.now(), ttl)))
}

func (c *cache[K, V]) Get(k K) (V, bool) {
	v, ok := c.st.get(k)
	if ok {
		c.opt.Metrics.Hit()
	} else {
		c.opt.Metrics.Miss()
	}
	return v, ok
}

func (c *cache[K, V]) Delete(k K) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.observe(c.be.delete(c.st.shardOf(k), k))
}

func (c *cache[K, V]) Purge() (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	total := 0
	var errs []error
	for i := 0; i < c.st.count(); i++ {
		n, err := c.be.sweep(i)
		if err != nil {
			errs = append(errs, c.observe(err))
			continue
		}
		total += n
	}
	if total > 0 {
		c.opt.Metrics.Expired(total)
	}
	return total, errors.Join(errs...)
}

func (c *cache[K, V]) Len() int { return c.st.len() }

func (c *cache[K, V]) Stats() Stats {
	s := Stats{Entries: c.st.len(), Shards: c.st.count()}
	for _, sh := range c.st.shards {
		s.Hits += sh.hits.Load()
		s.Misses += sh.misses.Load()
	}
	return s
}

// Close marks the store closed, stops the background goroutines and waits
// for them. A consumer that stopped on a panic surfaces its error here.
func (c *cache[K, V]) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancel()
		c.be.stop()
		c.closeErr = c.bg.Wait()
		c.log.Debug("cache closed", zap.Error(c.closeErr))
	})
	return c.closeErr
}

// ---- helpers ----

func (c *cache[K, V]) write(k K, e entry[V]) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.observe(c.be.put(c.st.shardOf(k), k, e))
}

// observe counts queue failures before handing err back to the caller.
func (c *cache[K, V]) observe(err error) error {
	if errors.Is(err, ErrQueueUnavailable) {
		c.opt.Metrics.QueueUnavailable()
	}
	return err
}
