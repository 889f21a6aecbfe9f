package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

type commandKind uint8

const (
	cmdPut commandKind = iota
	cmdDelete
	cmdSweep
)

func (k commandKind) String() string {
	switch k {
	case cmdPut:
		return "put"
	case cmdDelete:
		return "delete"
	default:
		return "sweep"
	}
}

// command is one write request for a shard's consumer. reply is a one-shot
// channel (buffered, capacity 1) created per command and never reused; the
// consumer sends exactly one value on it after the write is applied.
type command[K comparable, V any] struct {
	kind  commandKind
	key   K
	entry entry[V]
	reply chan int
}

// actorBackend gives every shard one command channel and one consumer
// goroutine that is the sole writer of that shard. Reads bypass the queue.
type actorBackend[K comparable, V any] struct {
	st       *storage[K, V]
	queues   []chan command[K, V]
	dead     []chan struct{} // closed when shard i's consumer returns
	quit     chan struct{}
	timeout  time.Duration
	onExpire func(K, V)
	log      *zap.Logger
}

func newActorBackend[K comparable, V any](st *storage[K, V], opt Options[K, V]) *actorBackend[K, V] {
	n := st.count()
	a := &actorBackend[K, V]{
		st:       st,
		queues:   make([]chan command[K, V], n),
		dead:     make([]chan struct{}, n),
		quit:     make(chan struct{}),
		timeout:  opt.ReplyTimeout,
		onExpire: opt.OnExpire,
		log:      opt.Logger,
	}
	for i := 0; i < n; i++ {
		a.queues[i] = make(chan command[K, V], opt.QueueCapacity)
		a.dead[i] = make(chan struct{})
	}
	return a
}

// consume drains shard idx's queue in arrival order until stop is called,
// then applies whatever is still queued before returning.
// A panic while applying a command is recovered, logged, and returned: the
// consumer then stays down and callers of that shard get ErrQueueUnavailable.
func (a *actorBackend[K, V]) consume(idx int) (err error) {
	defer close(a.dead[idx])
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("shard consumer panicked",
				zap.Int("shard", idx),
				zap.Any("panic", r),
				zap.Stack("stack"))
			err = fmt.Errorf("%w: shard %d consumer panicked: %v", ErrQueueUnavailable, idx, r)
		}
	}()

	q := a.queues[idx]
	for {
		select {
		case <-a.quit:
			for {
				select {
				case cmd := <-q:
					cmd.reply <- a.handle(idx, cmd)
				default:
					return nil
				}
			}
		case cmd := <-q:
			cmd.reply <- a.handle(idx, cmd)
		}
	}
}

func (a *actorBackend[K, V]) handle(idx int, cmd command[K, V]) (removed int) {
	a.st.apply(idx, func(s *shard[K, V]) {
		switch cmd.kind {
		case cmdPut:
			s.putLocked(cmd.key, cmd.entry)
		case cmdDelete:
			s.deleteLocked(cmd.key)
		case cmdSweep:
			removed = s.sweepLocked(a.st.now(), a.onExpire)
		}
	})
	return removed
}

// enqueue hands cmd to shard idx's consumer, waiting at most until deadline.
func (a *actorBackend[K, V]) enqueue(idx int, cmd command[K, V], deadline <-chan time.Time) error {
	select {
	case a.queues[idx] <- cmd:
		return nil
	case <-a.dead[idx]:
		return a.stoppedErr(idx, "before "+cmd.kind.String()+" was accepted")
	case <-deadline:
		return fmt.Errorf("%w: shard %d did not accept %s in time", ErrQueueUnavailable, idx, cmd.kind)
	}
}

// await blocks until cmd's reply arrives or the wait is abandoned.
func (a *actorBackend[K, V]) await(idx int, cmd command[K, V], deadline <-chan time.Time) (int, error) {
	select {
	case n := <-cmd.reply:
		return n, nil
	case <-a.dead[idx]:
		// the consumer may have replied right before it exited
		select {
		case n := <-cmd.reply:
			return n, nil
		default:
		}
		return 0, a.stoppedErr(idx, "before replying to "+cmd.kind.String())
	case <-deadline:
		return 0, fmt.Errorf("%w: shard %d did not reply to %s within %v", ErrQueueUnavailable, idx, cmd.kind, a.timeout)
	}
}

// stoppedErr reports a stopped consumer: ErrClosed when stop was called,
// ErrQueueUnavailable when it died on its own.
func (a *actorBackend[K, V]) stoppedErr(idx int, when string) error {
	select {
	case <-a.quit:
		return fmt.Errorf("%w: shard %d consumer stopped %s", ErrClosed, idx, when)
	default:
		return fmt.Errorf("%w: shard %d consumer stopped %s", ErrQueueUnavailable, idx, when)
	}
}

// submit enqueues cmd and waits for its reply, both under one timeout.
func (a *actorBackend[K, V]) submit(idx int, cmd command[K, V]) (int, error) {
	t := time.NewTimer(a.timeout)
	defer t.Stop()

	if err := a.enqueue(idx, cmd, t.C); err != nil {
		return 0, err
	}
	return a.await(idx, cmd, t.C)
}

func (a *actorBackend[K, V]) put(idx int, k K, e entry[V]) error {
	_, err := a.submit(idx, command[K, V]{kind: cmdPut, key: k, entry: e, reply: make(chan int, 1)})
	return err
}

func (a *actorBackend[K, V]) delete(idx int, k K) error {
	_, err := a.submit(idx, command[K, V]{kind: cmdDelete, key: k, reply: make(chan int, 1)})
	return err
}

// sweep goes through the queue as well, so the consumer stays the only
// writer of its shard.
func (a *actorBackend[K, V]) sweep(idx int) (int, error) {
	return a.submit(idx, command[K, V]{kind: cmdSweep, reply: make(chan int, 1)})
}

func (a *actorBackend[K, V]) alive(idx int) bool {
	select {
	case <-a.dead[idx]:
		return false
	default:
		return true
	}
}

func (a *actorBackend[K, V]) stop() { close(a.quit) }

var _ mutationBackend[string, int] = (*actorBackend[string, int])(nil)
