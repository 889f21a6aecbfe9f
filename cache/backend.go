package cache

// mutationBackend serializes writes to shards. Both strategies return only
// after the mutation is visible to subsequent reads, and are safe for
// concurrent use. The facade and the sweeper depend only on this contract.
type mutationBackend[K comparable, V any] interface {
	put(idx int, k K, e entry[V]) error
	delete(idx int, k K) error
	// sweep removes every expired entry of shard idx and returns the count.
	sweep(idx int) (int, error)
	// alive reports whether shard idx can still accept writes.
	alive(idx int) bool
	// stop releases background resources. It does not wait for them;
	// the facade owns the goroutines and waits on Close.
	stop()
}

// lockBackend applies each write on the caller's goroutine under the
// shard's write lock. Writers to one shard are ordered by lock acquisition.
type lockBackend[K comparable, V any] struct {
	st       *storage[K, V]
	onExpire func(K, V)
}

func newLockBackend[K comparable, V any](st *storage[K, V], onExpire func(K, V)) *lockBackend[K, V] {
	return &lockBackend[K, V]{st: st, onExpire: onExpire}
}

func (b *lockBackend[K, V]) put(idx int, k K, e entry[V]) error {
	b.st.apply(idx, func(s *shard[K, V]) { s.putLocked(k, e) })
	return nil
}

func (b *lockBackend[K, V]) delete(idx int, k K) error {
	b.st.apply(idx, func(s *shard[K, V]) { s.deleteLocked(k) })
	return nil
}

func (b *lockBackend[K, V]) sweep(idx int) (removed int, err error) {
	b.st.apply(idx, func(s *shard[K, V]) {
		removed = s.sweepLocked(b.st.now(), b.onExpire)
	})
	return removed, nil
}

func (b *lockBackend[K, V]) alive(int) bool { return true }

func (b *lockBackend[K, V]) stop() {}

var _ mutationBackend[string, int] = (*lockBackend[string, int])(nil)
