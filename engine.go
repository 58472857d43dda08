package goStrength

import (
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/MrEthical07/goStrength/bundle"
	"github.com/MrEthical07/goStrength/compat"
	"github.com/MrEthical07/goStrength/internal/audit"
	"github.com/MrEthical07/goStrength/loader"
	"github.com/MrEthical07/goStrength/strength"
)

// Engine serves strength estimates backed by a lazily loaded bundle.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config  Config
	logger  logr.Logger
	clock   clock.Clock
	slot    *loader.Slot[strength.EstimateFunc]
	runner  *bundle.Runner
	loader  *loader.Loader
	meter   *compat.Meter
	doc     *loader.Document
	audit   *audit.Dispatcher
	metrics *Metrics

	sourceProvider bool

	closeOnce sync.Once
}

// OnReady runs fn once the estimation engine is loaded. If it already is, fn runs before
// OnReady returns; otherwise fn is queued in registration order and the first queued
// callback starts the load. A panic in fn is recovered and does not affect other callbacks.
func (e *Engine) OnReady(fn func()) {
	if e == nil {
		return
	}
	e.loader.OnReady(fn)
}

// TriggerLoad starts the bundle fetch if no load is in flight or done.
//
// TriggerLoad returns ErrMissingSource when no source is configured; the engine stays
// unstarted and a later trigger may succeed.
func (e *Engine) TriggerLoad() error {
	if e == nil {
		return ErrEngineClosed
	}
	err := e.loader.TriggerLoad()
	if errors.Is(err, loader.ErrClosed) {
		return ErrEngineClosed
	}
	return err
}

// RequestLoad starts the bundle fetch on demand without registering a callback. A failed
// load is retried when RearmOnFailure is set; an in-flight or finished load is left alone.
func (e *Engine) RequestLoad() error {
	if e == nil {
		return ErrEngineClosed
	}
	err := e.loader.RequestLoad()
	if errors.Is(err, loader.ErrClosed) {
		return ErrEngineClosed
	}
	return err
}

// State returns the loader state.
func (e *Engine) State() loader.State {
	return e.loader.State()
}

// Pending returns the number of queued readiness callbacks.
func (e *Engine) Pending() int {
	return e.loader.Pending()
}

// Ready reports whether the estimation engine is installed.
func (e *Engine) Ready() bool {
	return e.slot.Ready()
}

// Estimate scores password with the loaded engine and returns the full result.
//
// Estimate returns ErrEngineNotReady before the engine is loaded; it never starts a load
// on its own. Engine failures yield the unknown result (score -1) with a nil error.
func (e *Engine) Estimate(password string, userInputs []string) (strength.Result, error) {
	fn, ok := e.slot.Load()
	if !ok {
		e.metricInc(MetricEstimateNotReady)
		return strength.Unknown(), ErrEngineNotReady
	}

	started := e.clock.Now()
	res := fn(password, userInputs)
	e.metricObserve(MetricEstimateLatency, started)
	e.metricInc(MetricEstimate)
	if res.Score == strength.ScoreUnknown {
		e.metricInc(MetricEstimateUnknown)
	}
	return res, nil
}

// Meter scores password with the legacy contract: 5 when confirm is non-empty and
// differs, the engine score when loaded, the fallback heuristic otherwise.
func (e *Engine) Meter(password string, disallowed []string, confirm string) int {
	switch {
	case confirm != "" && confirm != password:
		e.metricInc(MetricMeterMismatch)
	case e.meter.UsingEngine():
		e.metricInc(MetricMeterEngine)
	default:
		e.metricInc(MetricMeterFallback)
	}
	return e.meter.Score(password, disallowed, confirm)
}

// UserInputDisallowedList returns the normalized words of the page title, URL, and known
// user fields.
func (e *Engine) UserInputDisallowedList(src compat.FieldSource) []string {
	return compat.UserInputDisallowedList(src)
}

// UserInputBlacklist is the old name of UserInputDisallowedList.
//
// Deprecated: use UserInputDisallowedList.
func (e *Engine) UserInputBlacklist(src compat.FieldSource) []string {
	return compat.UserInputBlacklist(e.logger, src)
}

// DocumentParsed signals that the host finished initial setup. A load that was
// demanded but could not start is retried; without demand nothing is fetched.
func (e *Engine) DocumentParsed() {
	e.doc.MarkParsed()
}

// BundleManifest returns the manifest of the accepted bundle.
func (e *Engine) BundleManifest() (bundle.Manifest, bool) {
	return e.runner.Manifest()
}

// RecordRateLimited counts a request denied by the HTTP rate limiter.
func (e *Engine) RecordRateLimited() {
	e.metricInc(MetricRateLimited)
}

// Close stops in-flight load work and flushes the audit dispatcher. Queued readiness
// callbacks are abandoned.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		e.loader.Close()
		e.runner.Wait()
		if e.audit != nil {
			e.audit.Close()
			if n := e.audit.Dropped(); n > 0 {
				e.logger.Info("audit records dropped", "total", n, "by_type", e.AuditDroppedByType())
			}
		}
	})
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditDroppedByType returns the audit drop counts keyed by event type. It is nil when
// auditing is disabled.
func (e *Engine) AuditDroppedByType() map[string]uint64 {
	if e == nil || e.audit == nil {
		return nil
	}
	return e.audit.DroppedByType()
}

// MetricsSnapshot returns a copy of the engine counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, started time.Time) {
	if e == nil || !e.metrics.LatencyEnabled() {
		return
	}
	e.metrics.Observe(id, e.clock.Since(started))
}
