package audit

import (
	"context"
	"sync"
	"sync/atomic"

	"k8s.io/utils/clock"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds successful records when the queue is full. Failure records
	// always wait for room.
	DropIfFull bool
	// Clock stamps records that arrive without a timestamp.
	Clock clock.PassiveClock
}

// Dispatcher delivers loader lifecycle records to a sink on its own goroutine so
// loader goroutines never wait on sink I/O.
//
// Records of one load carry increasing Seq values starting at 1. Loads are single
// flight, so only the most recent load ID is tracked.
type Dispatcher struct {
	sink       Sink
	clock      clock.PassiveClock
	dropIfFull bool

	queue    chan Event
	stop     chan struct{}
	finished chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool

	mu      sync.Mutex
	loadID  string
	seq     uint64
	shed    map[string]uint64
	shedSum atomic.Uint64
}

// NewDispatcher starts the delivery goroutine. A disabled config returns nil, which is
// a valid no-op dispatcher.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	d := &Dispatcher{
		sink:       sink,
		clock:      clk,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan Event, size),
		stop:       make(chan struct{}),
		finished:   make(chan struct{}),
		shed:       make(map[string]uint64),
	}
	go d.deliver()
	return d
}

func (d *Dispatcher) deliver() {
	defer close(d.finished)
	ctx := context.Background()

	for {
		select {
		case ev := <-d.queue:
			d.sink.Emit(ctx, ev)
			continue
		case <-d.stop:
		}
		// Flush what was accepted before Close.
		for {
			select {
			case ev := <-d.queue:
				d.sink.Emit(ctx, ev)
			default:
				return
			}
		}
	}
}

// Emit stamps and sequences ev, then queues it. A successful record finding the queue
// full is shed when DropIfFull is set. Failure records and all records without
// DropIfFull wait until there is room, ctx is done or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	if d == nil || d.stopped.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = d.clock.Now()
	}
	d.sequence(&ev)

	if d.dropIfFull && ev.Success {
		select {
		case d.queue <- ev:
		case <-d.stop:
		default:
			d.recordShed(ev.EventType)
		}
		return
	}

	select {
	case d.queue <- ev:
	case <-ctx.Done():
		d.recordShed(ev.EventType)
	case <-d.stop:
	}
}

func (d *Dispatcher) sequence(ev *Event) {
	if ev.LoadID == "" {
		return
	}
	d.mu.Lock()
	if ev.LoadID != d.loadID {
		d.loadID = ev.LoadID
		d.seq = 0
	}
	d.seq++
	ev.Seq = d.seq
	d.mu.Unlock()
}

func (d *Dispatcher) recordShed(eventType string) {
	d.mu.Lock()
	d.shed[eventType]++
	d.mu.Unlock()
	d.shedSum.Add(1)
}

// Close stops accepting records and waits until the accepted ones reach the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		close(d.stop)
	})
	<-d.finished
}

// Dropped returns the number of records that never reached the sink.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.shedSum.Load()
}

// DroppedByType returns a copy of the drop counts keyed by event type.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]uint64, len(d.shed))
	for k, v := range d.shed {
		out[k] = v
	}
	return out
}
