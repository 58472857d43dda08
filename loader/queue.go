package loader

import "sync"

// Queue is an ordered sequence of callbacks awaiting the loaded capability.
//
// Entries are removed before they are invoked, so a panicking entry can never run twice
// and never blocks the entries behind it.
type Queue struct {
	mu    sync.Mutex
	items []func()
}

// Enqueue appends fn to the tail. Nil functions are ignored.
func (q *Queue) Enqueue(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()
}

// Len returns the number of queued callbacks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// DrainAll invokes every queued callback oldest first until the queue is empty,
// including callbacks enqueued by the callbacks themselves. Recovered panics are passed
// to report. It returns the number of callbacks invoked.
func (q *Queue) DrainAll(report func(recovered any)) int {
	n := 0
	for {
		fn, ok := q.pop()
		if !ok {
			return n
		}
		n++
		safeInvoke(fn, report)
	}
}

func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	fn := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return fn, true
}

func safeInvoke(fn func(), report func(recovered any)) {
	defer func() {
		if r := recover(); r != nil && report != nil {
			report(r)
		}
	}()
	fn()
}
