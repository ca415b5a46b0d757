// Command bench runs a synthetic workload against the cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	stdslog "log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/stablecache/cache"
	cachelogrus "github.com/IvanBrykalov/stablecache/log/logrus"
	cacheslog "github.com/IvanBrykalov/stablecache/log/slog"
	cachezap "github.com/IvanBrykalov/stablecache/log/zap"
	pmet "github.com/IvanBrykalov/stablecache/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		capacity = flag.Int("cap", 100_000, "initial table size hint (entries)")
		shards   = flag.Int("shards", 0, "number of shards (0=auto)")
		noFlight = flag.Bool("no-coalesce", false, "let concurrent misses on one key all run the provider")
		logKind  = flag.String("log", "none", "cache logger: none | zap | logrus | slog")

		workers    = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration   = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct    = flag.Int("reads", 80, "Lookup percentage [0..100]; the rest is GetOrInsert")
		clearEvery = flag.Duration("clear-every", 0, "run an exclusive Clear at this interval (0 = never)")
		providerNs = flag.Duration("provider-cost", 0, "simulated provider latency")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = cap/2)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()
	if err := validate(*keys, *zipfS, *zipfV, *readPct); err != nil {
		log.Fatal(err)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "stablecache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	logger, flush, err := newLogger(*logKind)
	if err != nil {
		log.Fatal(err)
	}
	defer flush()

	// ---- Build cache ----
	cost := *providerNs
	c := cache.New(cache.Options[string, string]{
		Capacity:          *capacity,
		Shards:            *shards,
		DisableCoalescing: *noFlight,
		Logger:            logger,
		Metrics:           metrics,
		Provider: func(k string) (string, error) {
			if cost > 0 {
				time.Sleep(cost)
			}
			return "v:" + k, nil
		},
	})
	defer func() { _ = c.Close(context.Background()) }()

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := *preload
	if pl == 0 {
		pl = *capacity / 2
	}
	for i := 0; i < pl; i++ {
		if _, err := c.GetOrInsert("k:" + strconv.Itoa(i)); err != nil {
			log.Fatal(err)
		}
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var reads, writes, hits, clears, total atomic.Uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workersN; w++ {
		id := w
		g.Go(func() error {
			// rand.Rand is not goroutine-safe: one per worker.
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, *zipfS, *zipfV, keysMax)

			for gctx.Err() == nil {
				k := "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
				total.Add(1)
				if int(localR.Int31n(100)) < readPctVal {
					reads.Add(1)
					if _, ok := c.Lookup(k); ok {
						hits.Add(1)
					}
					continue
				}
				writes.Add(1)
				if _, err := c.GetOrInsert(k); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if *clearEvery > 0 {
		g.Go(func() error {
			t := time.NewTicker(*clearEvery)
			defer t.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
					if err := c.Clear(gctx); err != nil && gctx.Err() == nil {
						return err
					}
					clears.Add(1)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)

	// ---- Report ----
	ops := total.Load()
	readsN := reads.Load()
	hitsN := hits.Load()

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	st := c.Stats()
	fmt.Printf("cap=%d shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		*capacity, *shards, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  lookups=%d  get-or-insert=%d  clears=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writes.Load(), clears.Load())
	fmt.Printf("lookup hit-rate=%.2f%%  cache hit-rate=%.2f%%\n", hitRate, st.HitRate()*100)
	fmt.Printf("inserts=%d discards=%d provider-errors=%d Len()=%d\n",
		st.Inserts, st.Discards, st.ProviderErrors, c.Len())
}

func newLogger(kind string) (cache.Logger, func(), error) {
	switch kind {
	case "", "none":
		return cache.NopLogger{}, func() {}, nil
	case "zap":
		z, err := zap.NewProduction()
		if err != nil {
			return nil, nil, err
		}
		return cachezap.ZapLogger{L: z}, func() { _ = z.Sync() }, nil
	case "logrus":
		l := logrus.New()
		l.SetFormatter(&logrus.JSONFormatter{})
		return cachelogrus.LogrusLogger{E: logrus.NewEntry(l)}, func() {}, nil
	case "slog":
		l := stdslog.New(stdslog.NewTextHandler(os.Stderr, nil))
		return cacheslog.Logger{L: l}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown logger %q (use none, zap, logrus or slog)", kind)
	}
}

// validate rejects flag values rand.NewZipf or the key math cannot handle.
func validate(keys int, zipfS, zipfV float64, readPct int) error {
	if keys < 1 {
		return fmt.Errorf("-keys must be >= 1, got %d", keys)
	}
	if zipfS <= 1 {
		return fmt.Errorf("-zipf_s must be > 1, got %v", zipfS)
	}
	if zipfV < 1 {
		return fmt.Errorf("-zipf_v must be >= 1, got %v", zipfV)
	}
	if readPct < 0 || readPct > 100 {
		return fmt.Errorf("-reads must be in [0..100], got %d", readPct)
	}
	return nil
}
