package cache

import (
	"math"
	"time"
)

// entry is a stored value with an optional absolute deadline on the
// store's monotonic clock. Liveness is never stored; it is recomputed
// against the current time on every observation.
type entry[V any] struct {
	val      V
	deadline int64
	expires  bool
}

// persistent returns an entry that never expires.
func persistent[V any](v V) entry[V] { return entry[V]{val: v} }

// expiring returns an entry that stops being live at deadline.
func expiring[V any](v V, deadline int64) entry[V] {
	return entry[V]{val: v, deadline: deadline, expires: true}
}

// deadlineAfter returns now+ttl, saturated at math.MaxInt64 so a huge ttl
// never wraps into the past. ttl must not be negative.
func deadlineAfter(now int64, ttl time.Duration) int64 {
	if now > math.MaxInt64-int64(ttl) {
		return math.MaxInt64
	}
	return now + int64(ttl)
}

// live reports whether the entry is visible at now.
// now == deadline counts as expired, which makes a zero TTL invisible
// to the very next read.
func (e entry[V]) live(now int64) bool {
	return !e.expires || now < e.deadline
}

// value returns the payload regardless of liveness.
func (e entry[V]) value() V { return e.val }
