package cache

// Metrics exposes store-level observability hooks.
// Implementations must be safe for concurrent use.
type Metrics interface {
	Hit()
	Miss()
	// Expired reports n entries reclaimed by the sweeper.
	Expired(n int)
	// Size reports the resident entry count after a sweep step.
	Size(entries int)
	// QueueUnavailable reports a write that failed with ErrQueueUnavailable.
	QueueUnavailable()
}

// NoopMetrics is the default Metrics implementation; it does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Expired(int)       {}
func (NoopMetrics) Size(int)          {}
func (NoopMetrics) QueueUnavailable() {}

var _ Metrics = NoopMetrics{}

// Stats is a point-in-time snapshot returned by Cache.Stats.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
	Shards  int
}
