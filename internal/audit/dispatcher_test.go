package audit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	testclock "k8s.io/utils/clock/testing"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

// gateSink holds each record until the test releases it and reports when the
// delivery goroutine has picked a record up.
type gateSink struct {
	entered chan struct{}
	gate    chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{entered: make(chan struct{}, 16), gate: make(chan struct{})}
}

func (s *gateSink) Emit(context.Context, Event) {
	s.entered <- struct{}{}
	<-s.gate
}

func (s *gateSink) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-s.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the delivery goroutine to pick up a record")
	}
}

// fillQueue leaves one record parked in the sink and one in a queue of size one.
func fillQueue(t *testing.T, d *Dispatcher, sink *gateSink) {
	t.Helper()
	d.Emit(context.Background(), Event{EventType: "load_started", LoadID: "a", Success: true})
	sink.waitEntered(t)
	d.Emit(context.Background(), Event{EventType: "load_started", LoadID: "a", Success: true})
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{EventType: "ignored"})
	d.Close()
	if d.Dropped() != 0 || d.DroppedByType() != nil {
		t.Fatal("nil dispatcher must report no drops")
	}
}

func TestDispatcherStampsFromClockAndSequencesPerLoad(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8, Clock: testclock.NewFakeClock(at)}, sink)
	defer d.Close()

	d.Emit(context.Background(), Event{EventType: "load_started", LoadID: "first", Success: true})
	d.Emit(context.Background(), Event{EventType: "load_failed", LoadID: "first"})
	d.Emit(context.Background(), Event{EventType: "load_started", LoadID: "second", Success: true})
	d.Emit(context.Background(), Event{EventType: "callback_failed"})

	want := []struct {
		load string
		seq  uint64
	}{{"first", 1}, {"first", 2}, {"second", 1}, {"", 0}}
	for i, w := range want {
		select {
		case ev := <-sink.Events():
			if ev.LoadID != w.load || ev.Seq != w.seq {
				t.Fatalf("record %d: got load %q seq %d, want %q seq %d", i, ev.LoadID, ev.Seq, w.load, w.seq)
			}
			if !ev.Timestamp.Equal(at) {
				t.Fatalf("record %d: expected clock timestamp, got %v", i, ev.Timestamp)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("record %d was not delivered", i)
		}
	}
}

func TestDispatcherKeepsCallerTimestamp(t *testing.T) {
	sink := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, Clock: testclock.NewFakeClock(time.Unix(0, 0))}, sink)
	defer d.Close()

	at := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	d.Emit(context.Background(), Event{EventType: "load_succeeded", Timestamp: at, Success: true})
	if ev := <-sink.Events(); !ev.Timestamp.Equal(at) {
		t.Fatalf("expected caller timestamp to survive, got %v", ev.Timestamp)
	}
}

func TestDispatcherShedsSuccessRecordsWhenFull(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()
	fillQueue(t, d, sink)

	start := time.Now()
	d.Emit(context.Background(), Event{EventType: "load_succeeded", LoadID: "a", Success: true})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected a non-blocking emit for a successful record")
	}
	if got := d.Dropped(); got != 1 {
		t.Fatalf("expected one drop, got %d", got)
	}
	if got := d.DroppedByType()["load_succeeded"]; got != 1 {
		t.Fatalf("expected the drop to be attributed to load_succeeded, got %d", got)
	}
}

func TestDispatcherFailureRecordsWaitForRoom(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()
	fillQueue(t, d, sink)

	done := make(chan struct{})
	go func() {
		d.Emit(context.Background(), Event{EventType: "load_failed", LoadID: "a"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected the failure record to wait while the queue is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the failure record to be queued once there was room")
	}
	if d.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", d.Dropped())
	}
}

func TestDispatcherCountsRecordAbandonedByContext(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()
	fillQueue(t, d, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	d.Emit(ctx, Event{EventType: "load_timeout", LoadID: "a"})

	if got := d.DroppedByType()["load_timeout"]; got != 1 {
		t.Fatalf("expected the abandoned record to be counted, got %d", got)
	}
}

func TestDispatcherDroppedByTypeReturnsCopy(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()
	fillQueue(t, d, sink)
	d.Emit(context.Background(), Event{EventType: "load_started", LoadID: "a", Success: true})

	snapshot := d.DroppedByType()
	snapshot["load_started"] = 99
	if got := d.DroppedByType()["load_started"]; got != 1 {
		t.Fatalf("expected internal counts to be unaffected, got %d", got)
	}
}

func TestDispatcherCloseFlushesAndIsIdempotent(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4, DropIfFull: true}, sink)

	d.Emit(context.Background(), Event{EventType: "load_started", Success: true})
	d.Emit(context.Background(), Event{EventType: "load_failed"})
	d.Close()
	d.Close()
	d.Emit(context.Background(), Event{EventType: "load_started", Success: true})

	if got := sink.count.Load(); got != 2 {
		t.Fatalf("expected the accepted records to be flushed on close, got %d", got)
	}
}
