package otel

import (
	"context"
	"sync"
	"testing"

	goStrength "github.com/MrEthical07/goStrength"
	"github.com/MrEthical07/goStrength/loader"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goStrength.MetricsSnapshot
	dropped  map[string]uint64
	state    loader.State
	pending  int
}

func (f *fakeSource) MetricsSnapshot() goStrength.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goStrength.MetricsSnapshot{
		Counters:   make(map[goStrength.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goStrength.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		out.Histograms[k] = append([]uint64(nil), buckets...)
	}
	return out
}

func (f *fakeSource) AuditDroppedByType() map[string]uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]uint64, len(f.dropped))
	for k, v := range f.dropped {
		out[k] = v
	}
	return out
}

func (f *fakeSource) State() loader.State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *fakeSource) Pending() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pending
}

// point is one collected data point keyed by instrument name and a single attribute.
type point struct {
	name string
	attr string
}

func newReader(t *testing.T, src Source) (*sdkmetric.ManualReader, *OTelExporter) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exp, err := NewOTelExporterFromSource(provider.Meter("gostrength-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	t.Cleanup(func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	})
	return reader, exp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader, attrKey attribute.Key) map[point]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	values := map[point]int64{}
	record := func(name string, set attribute.Set, v int64) {
		label, _ := set.Value(attrKey)
		values[point{name: name, attr: label.AsString()}] = v
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					record(m.Name, dp.Attributes, dp.Value)
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					record(m.Name, dp.Attributes, dp.Value)
				}
			}
		}
	}
	return values
}

func TestExporterCollectsCountersAndLatencyBuckets(t *testing.T) {
	reader, _ := newReader(t, &fakeSource{
		snapshot: goStrength.MetricsSnapshot{
			Counters: map[goStrength.MetricID]uint64{goStrength.MetricEstimate: 3},
			Histograms: map[goStrength.MetricID][]uint64{
				goStrength.MetricEstimateLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
	})

	values := collect(t, reader, bucketBoundKey)
	if got := values[point{"gostrength_estimate_total", ""}]; got != 3 {
		t.Fatalf("expected estimate counter 3, got %d", got)
	}
	if got := values[point{"gostrength_estimate_latency_seconds_bucket", "0.005"}]; got != 1 {
		t.Fatalf("expected first bucket 1, got %d", got)
	}
	if got := values[point{"gostrength_estimate_latency_seconds_bucket", "0.1"}]; got != 5 {
		t.Fatalf("expected cumulative 0.1 bucket 5, got %d", got)
	}
	if got := values[point{"gostrength_estimate_latency_seconds_bucket", "+Inf"}]; got != 8 {
		t.Fatalf("expected cumulative +Inf bucket 8, got %d", got)
	}
	if got := values[point{"gostrength_estimate_latency_seconds_count", ""}]; got != 8 {
		t.Fatalf("expected sample count 8, got %d", got)
	}
}

func TestExporterReportsLoaderStateSet(t *testing.T) {
	src := &fakeSource{state: loader.StateFailed, pending: 2}
	reader, _ := newReader(t, src)

	values := collect(t, reader, stateKey)
	for _, s := range []loader.State{loader.StateUnstarted, loader.StateLoading, loader.StateLoaded} {
		if got := values[point{LoaderStateName, s.String()}]; got != 0 {
			t.Fatalf("expected %s to report 0, got %d", s, got)
		}
	}
	if got := values[point{LoaderStateName, "failed"}]; got != 1 {
		t.Fatalf("expected failed to report 1, got %d", got)
	}
	if got := values[point{PendingReadyName, ""}]; got != 2 {
		t.Fatalf("expected 2 pending callbacks, got %d", got)
	}

	src.mu.Lock()
	src.state = loader.StateLoaded
	src.pending = 0
	src.mu.Unlock()

	values = collect(t, reader, stateKey)
	if values[point{LoaderStateName, "loaded"}] != 1 || values[point{LoaderStateName, "failed"}] != 0 {
		t.Fatalf("expected the state set to follow the loader, got %v", values)
	}
	if got := values[point{PendingReadyName, ""}]; got != 0 {
		t.Fatalf("expected the queue to drain, got %d", got)
	}
}

func TestExporterAttributesAuditDropsByType(t *testing.T) {
	reader, _ := newReader(t, &fakeSource{
		dropped: map[string]uint64{goStrength.AuditLoadStarted: 4, goStrength.AuditLoadTimeout: 1},
	})

	values := collect(t, reader, droppedEventKey)
	if got := values[point{"gostrength_audit_dropped_total", goStrength.AuditLoadStarted}]; got != 4 {
		t.Fatalf("expected 4 load_started drops, got %d", got)
	}
	if got := values[point{"gostrength_audit_dropped_total", goStrength.AuditLoadTimeout}]; got != 1 {
		t.Fatalf("expected 1 load_timeout drop, got %d", got)
	}
}

func TestExporterReadsEngine(t *testing.T) {
	e, err := goStrength.New().WithMetricsEnabled(true).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer e.Close()
	e.Meter("hunter2", nil, "")

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exp, err := NewOTelExporter(provider.Meter("gostrength-test"), e)
	if err != nil {
		t.Fatalf("NewOTelExporter failed: %v", err)
	}
	defer exp.Close()

	values := collect(t, reader, stateKey)
	if got := values[point{"gostrength_meter_fallback_total", ""}]; got != 1 {
		t.Fatalf("expected one fallback meter call, got %d", got)
	}
	if got := values[point{LoaderStateName, "unstarted"}]; got != 1 {
		t.Fatalf("expected an unstarted loader, got %v", values)
	}
}

func TestExporterRejectsNilMeter(t *testing.T) {
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterRejectsNilSource(t *testing.T) {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	meter := provider.Meter("gostrength-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporter(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for a nil engine, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	src := &fakeSource{
		snapshot: goStrength.MetricsSnapshot{
			Counters:   map[goStrength.MetricID]uint64{goStrength.MetricEstimate: 1},
			Histograms: map[goStrength.MetricID][]uint64{goStrength.MetricEstimateLatency: {1}},
		},
	}
	reader, _ := newReader(t, src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goStrength.MetricEstimate] = v
			src.state = loader.State(v % 4)
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
