package timeline

import (
	"sync"
	"time"
)

// FrameHandle identifies a requested frame. The zero handle is never issued.
type FrameHandle uint64

// FrameScheduler runs callbacks on the next display frame.
type FrameScheduler interface {
	// RequestFrame queues fn for the next frame.
	RequestFrame(fn func(now time.Time)) FrameHandle
	// CancelFrame drops a queued callback. Unknown handles are ignored.
	CancelFrame(h FrameHandle)
}

// FrameQueue is a FrameScheduler driven by explicit Flush calls: a ticker in
// the terminal viewer, the test itself in unit tests.
type FrameQueue struct {
	mu      sync.Mutex
	next    FrameHandle
	order   []FrameHandle
	pending map[FrameHandle]func(time.Time)
}

// NewFrameQueue creates an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{pending: make(map[FrameHandle]func(time.Time))}
}

func (q *FrameQueue) RequestFrame(fn func(now time.Time)) FrameHandle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	q.pending[q.next] = fn
	q.order = append(q.order, q.next)
	return q.next
}

func (q *FrameQueue) CancelFrame(h FrameHandle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, h)
}

// Pending returns the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs the callbacks queued before the call, in request order, and
// returns how many ran. Frames requested from inside a callback wait for the
// next Flush.
func (q *FrameQueue) Flush(now time.Time) int {
	q.mu.Lock()
	order := q.order
	q.order = nil
	due := make([]func(time.Time), 0, len(order))
	for _, h := range order {
		if fn, ok := q.pending[h]; ok {
			due = append(due, fn)
			delete(q.pending, h)
		}
	}
	q.mu.Unlock()

	for _, fn := range due {
		fn(now)
	}
	return len(due)
}

// FrameTicker flushes a FrameQueue at a fixed interval from the caller's
// event loop.
type FrameTicker struct {
	*FrameQueue
	ticker *time.Ticker
}

// NewFrameTicker starts a ticker firing every interval.
func NewFrameTicker(interval time.Duration) *FrameTicker {
	if interval <= 0 {
		interval = DefaultConfig().FrameInterval
	}
	return &FrameTicker{
		FrameQueue: NewFrameQueue(),
		ticker:     time.NewTicker(interval),
	}
}

// C delivers frame ticks; pass each one to Flush.
func (t *FrameTicker) C() <-chan time.Time {
	return t.ticker.C
}

// Stop stops the ticker.
func (t *FrameTicker) Stop() {
	t.ticker.Stop()
}
