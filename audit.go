package goStrength

import (
	"io"

	"github.com/MrEthical07/goStrength/internal/audit"
)

// Audit event types emitted by the engine.
const (
	AuditLoadStarted    = "load_started"
	AuditLoadSucceeded  = "load_succeeded"
	AuditLoadFailed     = "load_failed"
	AuditLoadTimeout    = "load_timeout"
	AuditConfigError    = "config_error"
	AuditCallbackFailed = "callback_failed"
)

// AuditEvent is one loader lifecycle record.
type AuditEvent = audit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = audit.Sink

// NoOpSink drops audit events.
type NoOpSink = audit.NoOpSink

// ChannelSink delivers audit events on a buffered channel.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes audit events as JSON lines.
type JSONWriterSink = audit.JSONWriterSink

// NewChannelSink returns a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}
