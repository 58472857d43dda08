package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	goStrength "github.com/MrEthical07/goStrength"
)

var samplePasswords = []string{
	"password",
	"hunter2",
	"correct horse battery staple",
	"Tr0ub4dor&3",
	"qwertyuiop",
	"zxcvbn-go rules",
	"a",
	"P@ssw0rd!2024",
}

func main() {
	var (
		waiters     = flag.Int("waiters", 10000, "readiness callbacks registered while the bundle loads")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "meter operations per phase")
		delay       = flag.Duration("bundle-delay", 200*time.Millisecond, "artificial bundle response delay")
		engineName  = flag.String("engine", "zxcvbn", "engine named by the served manifest")
	)
	flag.Parse()

	if *waiters <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "waiters, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		time.Sleep(*delay)
		_, _ = fmt.Fprintf(w, `{"engine":%q,"version":"loadtest"}`, *engineName)
	}))
	defer srv.Close()

	cfg := goStrength.DefaultConfig()
	cfg.Loader.Src = srv.URL
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := goStrength.New().WithConfig(cfg).WithLogger(logr.Discard()).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fallbackStats := runMeterPhase(engine, *ops, *concurrency)

	delivered, readyIn := runReadyPhase(engine, *waiters, *concurrency)
	if got := hits.Load(); got != 1 {
		fmt.Fprintf(os.Stderr, "expected exactly one bundle fetch, got %d\n", got)
		os.Exit(1)
	}
	for i, n := range delivered {
		if n != 1 {
			fmt.Fprintf(os.Stderr, "callback %d delivered %d times\n", i, n)
			os.Exit(1)
		}
	}

	engineStats := runMeterPhase(engine, *ops, *concurrency)

	fmt.Println("---- results ----")
	fmt.Printf("ready: waiters=%d fetches=%d all_delivered_in=%s\n", *waiters, hits.Load(), readyIn.Round(time.Millisecond))
	printStats("meter (fallback)", fallbackStats)
	printStats("meter (engine)", engineStats)
	snap := engine.MetricsSnapshot()
	fmt.Printf("metrics: queued=%d immediate=%d engine=%d fallback=%d\n",
		snap.Counters[goStrength.MetricCallbackQueued],
		snap.Counters[goStrength.MetricCallbackImmediate],
		snap.Counters[goStrength.MetricMeterEngine],
		snap.Counters[goStrength.MetricMeterFallback],
	)
}

// runReadyPhase registers waiters callbacks concurrently and returns how many times each ran.
func runReadyPhase(engine *goStrength.Engine, waiters, concurrency int) ([]int32, time.Duration) {
	var (
		wg        sync.WaitGroup
		done      sync.WaitGroup
		cursor    int64
		delivered = make([]int32, waiters)
	)

	done.Add(waiters)
	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= waiters {
					return
				}
				engine.OnReady(func() {
					atomic.AddInt32(&delivered[i], 1)
					done.Done()
				})
			}
		}()
	}
	wg.Wait()
	done.Wait()
	return delivered, time.Since(start)
}

func runMeterPhase(engine *goStrength.Engine, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				pw := samplePasswords[r.Intn(len(samplePasswords))]
				t0 := time.Now()
				score := engine.Meter(pw, nil, pw)
				d := time.Since(t0)
				if score < 0 || score > 4 {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
