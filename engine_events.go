package goStrength

import (
	"context"

	"github.com/MrEthical07/goStrength/internal/audit"
	"github.com/MrEthical07/goStrength/loader"
)

// observe translates loader events into metrics and audit records. It runs on loader
// goroutines and must not block.
func (e *Engine) observe(ev loader.Event) {
	switch ev.Kind {
	case loader.EventLoadStarted:
		e.metricInc(MetricLoadStarted)
		e.emitAudit(AuditLoadStarted, ev, true)
	case loader.EventLoaded:
		e.metricInc(MetricLoadSucceeded)
		if e.metrics.LatencyEnabled() {
			e.metrics.Observe(MetricLoadLatency, ev.Duration)
		}
		e.emitAudit(AuditLoadSucceeded, ev, true)
	case loader.EventFetchFailed:
		e.metricInc(MetricLoadFailed)
		e.emitAudit(AuditLoadFailed, ev, false)
	case loader.EventTimeout:
		e.metricInc(MetricLoadTimeout)
		e.emitAudit(AuditLoadTimeout, ev, false)
	case loader.EventConfigError:
		e.metricInc(MetricConfigError)
		e.emitAudit(AuditConfigError, ev, false)
	case loader.EventCallbackFailed:
		e.metricInc(MetricCallbackFailed)
		e.emitAudit(AuditCallbackFailed, ev, false)
	case loader.EventReadyQueued:
		e.metricInc(MetricCallbackQueued)
	case loader.EventReadyImmediate:
		e.metricInc(MetricCallbackImmediate)
	}
}

func (e *Engine) emitAudit(eventType string, ev loader.Event, success bool) {
	if e.audit == nil {
		return
	}

	record := audit.Event{
		EventType:  eventType,
		LoadID:     ev.LoadID,
		Source:     ev.Source,
		Success:    success,
		DurationMS: durationMS(ev.Duration),
	}
	if ev.Err != nil {
		record.Error = ev.Err.Error()
	}
	if m, ok := e.runner.Manifest(); ok && ev.Kind == loader.EventLoaded {
		record.Metadata = map[string]string{"engine": m.Engine, "version": m.Version}
	}

	e.audit.Emit(context.Background(), record)
}

// reportEstimation receives failures of the installed engine.
func (e *Engine) reportEstimation(err error) {
	e.logger.Error(err, "estimation failed, returning unknown result")
}
