package goStrength

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goStrength/loader"
)

func collectAudit(t *testing.T, sink *ChannelSink, n int) []AuditEvent {
	t.Helper()
	events := make([]AuditEvent, 0, n)
	timeout := time.After(2 * time.Second)
	for len(events) < n {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("expected %d audit events, got %d: %+v", n, len(events), events)
		}
	}
	return events
}

func auditConfig(src string) Config {
	cfg := testConfig(src)
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	cfg.Audit.DropIfFull = false
	return cfg
}

func TestAuditLoadLifecycle(t *testing.T) {
	srv := newBundleServer(t, `{"engine":"fixed","version":"9"}`)
	sink := NewChannelSink(16)
	e := buildTestEngine(t, New().WithConfig(auditConfig(srv.URL)).WithEngines(fixedEngines(3)).WithAuditSink(sink))

	done := make(chan struct{})
	e.OnReady(func() { close(done) })
	<-done

	events := collectAudit(t, sink, 2)
	if events[0].EventType != AuditLoadStarted || events[1].EventType != AuditLoadSucceeded {
		t.Fatalf("unexpected event sequence: %+v", events)
	}
	if events[0].LoadID == "" || events[0].LoadID != events[1].LoadID {
		t.Fatalf("expected a shared load ID, got %q and %q", events[0].LoadID, events[1].LoadID)
	}
	if events[0].Seq != 1 || events[1].Seq != 2 {
		t.Fatalf("expected per-load sequence 1,2, got %d,%d", events[0].Seq, events[1].Seq)
	}
	if events[0].Timestamp.IsZero() {
		t.Fatal("expected the dispatcher to stamp records")
	}
	if events[1].Source != srv.URL || !events[1].Success {
		t.Fatalf("unexpected success event %+v", events[1])
	}
	if events[1].Metadata["version"] != "9" {
		t.Fatalf("expected bundle version in metadata, got %v", events[1].Metadata)
	}
}

func TestAuditRecordsFailures(t *testing.T) {
	srv := newBundleServer(t, "")
	srv.respond(http.StatusServiceUnavailable, "")
	sink := NewChannelSink(16)
	e := buildTestEngine(t, New().WithConfig(auditConfig(srv.URL)).WithAuditSink(sink))

	e.OnReady(func() {})
	waitFor(t, "failed state", func() bool { return e.State() == loader.StateFailed })

	events := collectAudit(t, sink, 2)
	if events[1].EventType != AuditLoadFailed || events[1].Success {
		t.Fatalf("expected a failed load event, got %+v", events[1])
	}
	if !strings.Contains(events[1].Error, "503") {
		t.Fatalf("expected the status in the error, got %q", events[1].Error)
	}
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	srv := newBundleServer(t, `{"engine":"fixed"}`)
	sink := NewChannelSink(4)
	e := buildTestEngine(t, New().WithConfig(testConfig(srv.URL)).WithEngines(fixedEngines(1)).WithAuditSink(sink))

	done := make(chan struct{})
	e.OnReady(func() { close(done) })
	<-done

	select {
	case ev := <-sink.Events():
		t.Fatalf("expected no audit events when disabled, got %+v", ev)
	case <-time.After(30 * time.Millisecond):
	}
	if e.AuditDropped() != 0 {
		t.Fatal("expected no drops when disabled")
	}
}

func TestAuditNoPasswordsInEvents(t *testing.T) {
	srv := newBundleServer(t, `{"engine":"fixed"}`)
	sink := NewChannelSink(16)
	e := buildTestEngine(t, New().WithConfig(auditConfig(srv.URL)).WithEngines(fixedEngines(1)).WithAuditSink(sink))

	const secret = "correct-horse-battery-staple"
	done := make(chan struct{})
	e.OnReady(func() { close(done) })
	<-done
	_, _ = e.Estimate(secret, []string{secret})
	e.Meter(secret, nil, secret)

	for _, ev := range collectAudit(t, sink, 2) {
		if strings.Contains(ev.Error, secret) {
			t.Fatal("password leaked in audit error field")
		}
		for k, v := range ev.Metadata {
			if strings.Contains(k, secret) || strings.Contains(v, secret) {
				t.Fatal("password leaked in audit metadata")
			}
		}
	}
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: AuditLoadSucceeded,
		LoadID:    "load-1",
		Success:   true,
	})

	if !buf.Contains(`"event_type":"load_succeeded"`) {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains(`"load_id":"load-1"`) {
		t.Fatal("expected JSON log line to contain load id")
	}
	if !buf.Contains("\n") {
		t.Fatal("expected newline-terminated JSON")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(string(b.buf), v)
}
