package cache

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/ttlcache/internal/util"
)

// Strategy selects how writes to a shard are serialized.
type Strategy int

const (
	// StrategyLock applies writes on the caller's goroutine under the shard's
	// write lock. Writers of one shard are ordered by lock acquisition, which
	// is not FIFO.
	StrategyLock Strategy = iota
	// StrategyActor routes writes through a per-shard command queue drained by
	// a single consumer goroutine, giving a strict arrival order per shard.
	StrategyActor
)

func (s Strategy) String() string {
	switch s {
	case StrategyLock:
		return "lock"
	case StrategyActor:
		return "actor"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps "lock" or "actor" (case-insensitive) to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lock", "":
		return StrategyLock, nil
	case "actor", "queue":
		return StrategyActor, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q (use lock or actor)", ErrInvalidConfiguration, s)
	}
}

// Defaults applied by New when the corresponding field is zero.
const (
	DefaultSweepInterval = 10 * time.Millisecond
	DefaultQueueCapacity = 64
	DefaultReplyTimeout  = time.Second
)

// DefaultShards returns a shard count suited to the current GOMAXPROCS.
func DefaultShards() int { return util.ReasonableShardCount() }

// Clock returns monotonic time in nanoseconds. Only differences between
// readings are meaningful; useful for deterministic tests.
type Clock interface{ Now() int64 }

// monotonicClock reads the runtime's monotonic clock relative to base,
// so wall-clock adjustments never move deadlines.
type monotonicClock struct{ base time.Time }

func (c monotonicClock) Now() int64 { return int64(time.Since(c.base)) }

// Options configures a store. Shards is required; other zero values are
// replaced in New:
//   - SweepInterval == 0 => DefaultSweepInterval (< 0 disables the sweeper)
//   - QueueCapacity == 0 => DefaultQueueCapacity
//   - ReplyTimeout  == 0 => DefaultReplyTimeout
//   - nil Hash, Metrics, Logger, Clock => util.Hash, NoopMetrics, zap.NewNop, monotonic clock
type Options[K comparable, V any] struct {
	// Shards is the fixed number of partitions; must be >= 1.
	// The count is never changed after construction.
	Shards int

	// Strategy chooses the write serializer. Zero value is StrategyLock.
	Strategy Strategy

	// SweepInterval is the pause between two sweeper steps. Each step visits
	// one shard, so a full cycle takes roughly Shards*SweepInterval.
	SweepInterval time.Duration

	// Actor strategy only.
	QueueCapacity int
	ReplyTimeout  time.Duration

	// Hash overrides key hashing for shard routing. It must be deterministic.
	Hash func(K) uint64

	// OnExpire is called for every entry the sweeper reclaims. It runs under
	// the shard's exclusive guard; keep it lightweight.
	OnExpire func(k K, v V)

	Metrics Metrics
	Logger  *zap.Logger
	Clock   Clock
}

// withDefaults validates opt and fills in defaults.
func (opt Options[K, V]) withDefaults() (Options[K, V], error) {
	if opt.Shards < 1 {
		return opt, fmt.Errorf("%w: shard count must be >= 1, got %d", ErrInvalidConfiguration, opt.Shards)
	}
	if opt.Strategy != StrategyLock && opt.Strategy != StrategyActor {
		return opt, fmt.Errorf("%w: unknown strategy %v", ErrInvalidConfiguration, opt.Strategy)
	}
	if opt.QueueCapacity < 0 {
		return opt, fmt.Errorf("%w: queue capacity must be >= 0, got %d", ErrInvalidConfiguration, opt.QueueCapacity)
	}
	if opt.ReplyTimeout < 0 {
		return opt, fmt.Errorf("%w: reply timeout must be >= 0, got %v", ErrInvalidConfiguration, opt.ReplyTimeout)
	}

	if opt.SweepInterval == 0 {
		opt.SweepInterval = DefaultSweepInterval
	}
	if opt.QueueCapacity == 0 {
		opt.QueueCapacity = DefaultQueueCapacity
	}
	if opt.ReplyTimeout == 0 {
		opt.ReplyTimeout = DefaultReplyTimeout
	}
	if opt.Hash == nil {
		opt.Hash = util.Hash[K]
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Clock == nil {
		opt.Clock = monotonicClock{base: time.Now()}
	}
	return opt, nil
}
