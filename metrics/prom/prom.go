// Package prom exports cache.Metrics signals as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/ttlcache/cache"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	expired     prometheus.Counter
	unavailable prometheus.Counter
	entries     prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:        counter("hits_total", "Reads that found a live entry"),
		misses:      counter("misses_total", "Reads of absent or expired keys"),
		expired:     counter("expired_total", "Expired entries reclaimed by the sweeper"),
		unavailable: counter("queue_unavailable_total", "Writes that timed out or hit a stopped shard consumer"),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Resident entries, including expired ones not yet swept",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.expired, a.unavailable, a.entries)
	return a
}

func (a *Adapter) Hit()              { a.hits.Inc() }
func (a *Adapter) Miss()             { a.misses.Inc() }
func (a *Adapter) Expired(n int)     { a.expired.Add(float64(n)) }
func (a *Adapter) Size(entries int)  { a.entries.Set(float64(entries)) }
func (a *Adapter) QueueUnavailable() { a.unavailable.Inc() }

var _ cache.Metrics = (*Adapter)(nil)
