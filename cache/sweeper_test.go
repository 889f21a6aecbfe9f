package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One sweep leaves exactly the live entries in the shard.
func TestSweeper_RemovesOnlyExpired(t *testing.T) {
	t.Parallel()

	for _, strat := range strategies {
		t.Run(strat.String(), func(t *testing.T) {
			t.Parallel()

			clk := &fakeClock{}
			var expired []string
			c := newTestCache(t, Options[string, int]{
				Shards:   1,
				Strategy: strat,
				Clock:    clk,
				OnExpire: func(k string, _ int) { expired = append(expired, k) },
			})
			require.NoError(t, c.PutWithTTL("a", 1, time.Second))
			require.NoError(t, c.Put("b", 2))

			clk.add(2 * time.Second)
			assert.True(t, resident(c.st, "a"), "expired entry waits for the sweeper")

			sw := newSweeper(c.be, c.st, c.opt)
			sw.step()

			assert.False(t, resident(c.st, "a"))
			assert.True(t, resident(c.st, "b"))
			assert.Equal(t, 1, c.Len())
			assert.Equal(t, []string{"a"}, expired)
		})
	}
}

func TestSweeper_RoundRobin(t *testing.T) {
	t.Parallel()

	m := &countingMetrics{}
	c := newTestCache(t, Options[string, int]{Shards: 3, Metrics: m})
	require.NoError(t, c.Put("a", 1))
	var visited []int
	c.st.onApply = func(idx int) { visited = append(visited, idx) }

	sw := newSweeper(c.be, c.st, c.opt)
	for i := 0; i < 7; i++ {
		sw.step()
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, visited)
	assert.Equal(t, 1, sw.next)
	assert.Equal(t, int64(2), m.sizeCalls.Load(), "size is reported once per full cycle")
	assert.Equal(t, int64(1), m.size.Load())
}

// The background loop reclaims entries nobody reads and stops on cancel.
func TestSweeper_Background(t *testing.T) {
	t.Parallel()

	m := &countingMetrics{}
	c := newTestCache(t, Options[string, string]{
		Shards:        4,
		SweepInterval: time.Millisecond,
		Metrics:       m,
	})
	for _, k := range []string{"t1", "t2", "t3", "t4", "t5"} {
		require.NoError(t, c.PutWithTTL(k, "v", 10*time.Millisecond))
	}
	require.NoError(t, c.Put("keep", "v"))

	assert.Eventually(t, func() bool { return c.Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(5), m.expired.Load())
	assert.True(t, resident(c.st, "keep"))
}

func TestSweeper_StopsOnCancel(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[string, int]{Shards: 2})
	opt := c.opt
	opt.SweepInterval = time.Millisecond
	sw := newSweeper(c.be, c.st, opt)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sw.run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

// A failed step on a dead actor shard is counted and the loop moves on.
func TestSweeper_StepFailure(t *testing.T) {
	t.Parallel()

	m := &countingMetrics{}
	c, err := newCache(Options[string, int]{
		Shards:        2,
		Strategy:      StrategyActor,
		SweepInterval: -1,
		ReplyTimeout:  50 * time.Millisecond,
		Metrics:       m,
	})
	require.NoError(t, err)
	c.st.onApply = func(idx int) {
		if idx == 0 {
			panic("shard 0 down")
		}
	}

	sw := newSweeper(c.be, c.st, c.opt)
	for i := 0; i < 6; i++ {
		sw.step()
	}
	assert.Equal(t, int64(1), m.unavailable.Load(), "a dead shard is reported once")
	assert.Equal(t, 0, sw.next)
	assert.False(t, c.be.alive(0))
	assert.True(t, c.be.alive(1))

	assert.ErrorIs(t, c.Close(), ErrQueueUnavailable)
}
