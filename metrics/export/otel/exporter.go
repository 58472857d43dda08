package otel

import (
	"context"
	"errors"
	"fmt"

	goStrength "github.com/MrEthical07/goStrength"
	"github.com/MrEthical07/goStrength/loader"
	"github.com/MrEthical07/goStrength/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Constructor errors.
var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// Instrument names that have no Prometheus counterpart.
const (
	LoaderStateName  = "gostrength_loader_state"
	PendingReadyName = "gostrength_ready_callbacks_pending"
)

const (
	bucketSuffix    = "_bucket"
	countSuffix     = "_count"
	bucketBoundKey  = attribute.Key("le")
	stateKey        = attribute.Key("state")
	droppedEventKey = attribute.Key("event_type")
)

// Source is what the exporter reads on every collection. *goStrength.Engine
// satisfies it.
type Source interface {
	MetricsSnapshot() goStrength.MetricsSnapshot
	AuditDroppedByType() map[string]uint64
	State() loader.State
	Pending() int
}

var loaderStates = [...]loader.State{
	loader.StateUnstarted,
	loader.StateLoading,
	loader.StateLoaded,
	loader.StateFailed,
}

// bucketAttrs are precomputed so collection does not allocate attribute sets.
var bucketAttrs = func() []metric.MeasurementOption {
	out := make([]metric.MeasurementOption, len(internaldefs.HistogramBounds))
	for i, le := range internaldefs.HistogramBounds {
		out[i] = metric.WithAttributes(bucketBoundKey.String(le))
	}
	return out
}()

var stateAttrs = func() [len(loaderStates)]metric.MeasurementOption {
	var out [len(loaderStates)]metric.MeasurementOption
	for i, s := range loaderStates {
		out[i] = metric.WithAttributes(stateKey.String(s.String()))
	}
	return out
}()

type latencyInstruments struct {
	id      goStrength.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter publishes engine metrics as observable OTel instruments.
//
// Counters keep their Prometheus names. Each latency histogram becomes a
// <name>_bucket gauge with one cumulative point per "le" bound plus a <name>_count
// gauge. The loader state is a state-set gauge: the current state reports 1 and the
// others 0. Audit drops carry an "event_type" attribute.
type OTelExporter struct {
	source       Source
	registration metric.Registration

	counters  map[goStrength.MetricID]metric.Int64ObservableCounter
	latencies []latencyInstruments
	dropped   metric.Int64ObservableCounter
	state     metric.Int64ObservableGauge
	pending   metric.Int64ObservableGauge
}

// NewOTelExporter registers instruments for engine on meter.
func NewOTelExporter(meter metric.Meter, engine *goStrength.Engine) (*OTelExporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource is NewOTelExporter for any Source.
func NewOTelExporterFromSource(meter metric.Meter, source Source) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{
		source:   source,
		counters: make(map[goStrength.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
	}
	var observables []metric.Observable

	for _, def := range internaldefs.CounterDefs {
		c, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", def.Name, err)
		}
		e.counters[def.ID] = c
		observables = append(observables, c)
	}

	for _, def := range internaldefs.HistogramDefs {
		buckets, err := meter.Int64ObservableGauge(def.Name+bucketSuffix,
			metric.WithDescription(def.Help+" Cumulative count per upper bound."))
		if err != nil {
			return nil, fmt.Errorf("histogram %s: %w", def.Name, err)
		}
		count, err := meter.Int64ObservableGauge(def.Name+countSuffix,
			metric.WithDescription(def.Help+" Total samples."))
		if err != nil {
			return nil, fmt.Errorf("histogram %s: %w", def.Name, err)
		}
		e.latencies = append(e.latencies, latencyInstruments{id: def.ID, buckets: buckets, count: count})
		observables = append(observables, buckets, count)
	}

	var err error
	if e.dropped, err = meter.Int64ObservableCounter(internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp)); err != nil {
		return nil, fmt.Errorf("counter %s: %w", internaldefs.AuditDroppedName, err)
	}
	if e.state, err = meter.Int64ObservableGauge(LoaderStateName,
		metric.WithDescription("Loader lifecycle state; 1 for the current state.")); err != nil {
		return nil, fmt.Errorf("gauge %s: %w", LoaderStateName, err)
	}
	if e.pending, err = meter.Int64ObservableGauge(PendingReadyName,
		metric.WithDescription("Readiness callbacks waiting for the engine to load.")); err != nil {
		return nil, fmt.Errorf("gauge %s: %w", PendingReadyName, err)
	}
	observables = append(observables, e.dropped, e.state, e.pending)

	if e.registration, err = meter.RegisterCallback(e.collect, observables...); err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *OTelExporter) collect(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()

	for id, c := range e.counters {
		o.ObserveInt64(c, int64(snap.Counters[id]))
	}

	for _, l := range e.latencies {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[l.id]))
		for i, v := range cumulative {
			o.ObserveInt64(l.buckets, int64(v), bucketAttrs[i])
		}
		o.ObserveInt64(l.count, int64(cumulative[len(cumulative)-1]))
	}

	for eventType, n := range e.source.AuditDroppedByType() {
		o.ObserveInt64(e.dropped, int64(n), metric.WithAttributes(droppedEventKey.String(eventType)))
	}

	current := e.source.State()
	for i, s := range loaderStates {
		var v int64
		if s == current {
			v = 1
		}
		o.ObserveInt64(e.state, v, stateAttrs[i])
	}

	o.ObserveInt64(e.pending, int64(e.source.Pending()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
