// Command bench runs a synthetic workload against the store and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/ttlcache/cache"
	pmet "github.com/IvanBrykalov/ttlcache/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		shards   = flag.Int("shards", 0, "number of shards (0=auto)")
		strategy = flag.String("strategy", "lock", "write serializer: lock | actor")
		sweep    = flag.Duration("sweep", cache.DefaultSweepInterval, "sweeper step interval (<0 disables)")
		queueCap = flag.Int("queue", cache.DefaultQueueCapacity, "per-shard command queue capacity (actor)")
		timeout  = flag.Duration("reply_timeout", cache.DefaultReplyTimeout, "reply timeout (actor)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")
		ttlPct   = flag.Int("ttl_pct", 50, "percentage of writes that carry a TTL")
		ttl      = flag.Duration("ttl", 200*time.Millisecond, "TTL for expiring writes")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 100_000, "preload entries without TTL")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
		dev         = flag.Bool("dev", false, "human-readable debug logging")
	)
	flag.Parse()

	logger := newLogger(*dev)
	defer func() { _ = logger.Sync() }()

	strat, err := cache.ParseStrategy(*strategy)
	if err != nil {
		logger.Fatal("bad -strategy", zap.Error(err))
	}
	sh := *shards
	if sh <= 0 {
		sh = cache.DefaultShards()
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			logger.Info("pprof: serving", zap.String("addr", *pprofAddr))
			logger.Warn("pprof server stopped", zap.Error(http.ListenAndServe(*pprofAddr, nil)))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "ttlcache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		logger.Info("metrics: serving", zap.String("addr", *metricsAddr))
		logger.Warn("metrics server stopped", zap.Error(http.ListenAndServe(*metricsAddr, nil)))
	}()

	// ---- Build store ----
	c, err := cache.New[string, string](cache.Options[string, string]{
		Shards:        sh,
		Strategy:      strat,
		SweepInterval: *sweep,
		QueueCapacity: *queueCap,
		ReplyTimeout:  *timeout,
		Metrics:       metrics,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("build cache", zap.Error(err))
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("close cache", zap.Error(err))
		}
	}()

	for i := 0; i < *preload; i++ {
		if err := c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i)); err != nil {
			logger.Fatal("preload", zap.Error(err))
		}
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	ttlPctVal := *ttlPct
	ttlVal := *ttl
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var reads, writes, hits, misses, failed, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < workersN; w++ {
		id := w
		g.Go(func() error {
			// rand.Rand is not goroutine-safe: one RNG + Zipf per worker.
			r := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			zipf := rand.NewZipf(r, *zipfS, *zipfV, keysMax)
			key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

			for ctx.Err() == nil {
				atomic.AddUint64(&total, 1)
				if int(r.Int31n(100)) < readPctVal {
					atomic.AddUint64(&reads, 1)
					if _, ok := c.Get(key()); ok {
						atomic.AddUint64(&hits, 1)
					} else {
						atomic.AddUint64(&misses, 1)
					}
					continue
				}

				atomic.AddUint64(&writes, 1)
				var err error
				if int(r.Int31n(100)) < ttlPctVal {
					err = c.PutWithTTL(key(), "v", ttlVal)
				} else {
					err = c.Put(key(), "v")
				}
				if err != nil {
					atomic.AddUint64(&failed, 1)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	readsN := atomic.LoadUint64(&reads)
	hitsN := atomic.LoadUint64(&hits)

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	fmt.Printf("strategy=%s shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		strat, sh, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  failed_writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, atomic.LoadUint64(&writes), atomic.LoadUint64(&failed))
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, atomic.LoadUint64(&misses), hitRate)
	fmt.Printf("Len()=%d\n", c.Len())
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return l
}
