package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// sweeper visits shards round-robin, one per step, and removes entries
// whose deadline has passed. It only reclaims memory: reads already hide
// expired entries on their own.
type sweeper[K comparable, V any] struct {
	be       mutationBackend[K, V]
	st       *storage[K, V]
	interval time.Duration
	next     int    // only touched by the sweeper goroutine
	reported []bool // shards already reported as down; sweeper goroutine only
	metrics  Metrics
	log      *zap.Logger
}

func newSweeper[K comparable, V any](be mutationBackend[K, V], st *storage[K, V], opt Options[K, V]) *sweeper[K, V] {
	return &sweeper[K, V]{
		be:       be,
		st:       st,
		interval: opt.SweepInterval,
		reported: make([]bool, st.count()),
		metrics:  opt.Metrics,
		log:      opt.Logger,
	}
}

// run steps until ctx is cancelled. A step in progress is never interrupted.
func (w *sweeper[K, V]) run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("sweeper stopped")
			return nil
		case <-t.C:
			w.step()
		}
	}
}

// step sweeps the current shard and advances to the next one. The size
// gauge is refreshed once per full cycle, since it reads every shard.
func (w *sweeper[K, V]) step() {
	idx := w.next
	w.next = (w.next + 1) % w.st.count()

	w.sweepShard(idx)
	if w.next == 0 {
		w.metrics.Size(w.st.len())
	}
}

func (w *sweeper[K, V]) sweepShard(idx int) {
	if !w.be.alive(idx) {
		w.reportDown(idx, nil)
		return
	}

	removed, err := w.be.sweep(idx)
	if err != nil {
		if !w.be.alive(idx) {
			w.reportDown(idx, err)
			return
		}
		w.metrics.QueueUnavailable()
		w.log.Warn("sweep step failed", zap.Int("shard", idx), zap.Error(err))
		return
	}
	if removed > 0 {
		w.metrics.Expired(removed)
		w.log.Debug("swept expired entries", zap.Int("shard", idx), zap.Int("removed", removed))
	}
}

// reportDown logs a shard whose consumer has stopped, once; later visits
// skip it silently.
func (w *sweeper[K, V]) reportDown(idx int, err error) {
	if w.reported[idx] {
		return
	}
	w.reported[idx] = true
	w.metrics.QueueUnavailable()
	w.log.Warn("skipping shard with stopped consumer", zap.Int("shard", idx), zap.Error(err))
}
