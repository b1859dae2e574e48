package layout

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

var (
	// ErrPoolClosed is returned by Layout after Close.
	ErrPoolClosed = errors.New("layout pool closed")
	// ErrRequestTimeout is returned when a worker does not answer in time.
	ErrRequestTimeout = errors.New("layout request timed out")
	// ErrWorkerFailed is returned when a worker crashes while computing.
	ErrWorkerFailed = errors.New("layout worker failed")
)

// DefaultRequestTimeout bounds how long a single bucket may take.
const DefaultRequestTimeout = 60 * time.Second

type request struct {
	id    uint64
	spans []Span
}

type response struct {
	id         uint64
	placements []Placement
	err        error
}

// Pool lays out large entry sets on background workers. Workers are started
// on first use and restarted after any failure. Requests and responses are
// copies; workers share nothing with callers.
type Pool struct {
	workers int
	timeout time.Duration
	compute func([]Span) []Placement

	mu       sync.Mutex
	started  bool
	closed   bool
	nextID   uint64
	pending  map[uint64]chan response
	requests chan request
	results  chan response
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewPool creates an idle pool. workers <= 0 uses GOMAXPROCS and timeout <= 0
// uses DefaultRequestTimeout.
func NewPool(workers int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Pool{
		workers: workers,
		timeout: timeout,
		compute: AssignSpans,
	}
}

// Layout assigns rows like Assign, splitting the entries into time-disjoint
// buckets that are computed concurrently. Any bucket failure fails the whole
// call; the caller is expected to fall back to Assign.
func (p *Pool) Layout(ctx context.Context, entries []model.Entry) ([]model.LayoutEntry, error) {
	spans := ToSpans(entries)
	buckets := Buckets(spans)
	if len(buckets) == 0 {
		return []model.LayoutEntry{}, nil
	}

	if err := p.ensureStarted(); err != nil {
		return nil, err
	}

	results := make([][]Placement, len(buckets))
	g, gctx := errgroup.WithContext(ctx)
	for i, bucket := range buckets {
		i, bucket := i, bucket
		g.Go(func() error {
			placements, err := p.submit(gctx, bucket)
			if err != nil {
				return err
			}
			results[i] = placements
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrPoolClosed) {
			p.reset(err)
		}
		return nil, err
	}

	placements := make([]Placement, 0, len(spans))
	for _, r := range results {
		placements = append(placements, r...)
	}
	util.LogDebugf("layout pool: %d entries in %d buckets", len(placements), len(buckets))
	return Apply(entries, placements), nil
}

// Close stops the workers and fails pending requests. It is safe to call more
// than once.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.shutdown(ErrPoolClosed)
	p.wg.Wait()
	return nil
}

func (p *Pool) ensureStarted() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	if p.started {
		return nil
	}

	p.pending = make(map[uint64]chan response)
	p.requests = make(chan request)
	p.results = make(chan response, p.workers)
	p.stop = make(chan struct{})

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(p.requests, p.results, p.stop)
	}
	p.wg.Add(1)
	go p.dispatch(p.results, p.stop)

	p.started = true
	util.LogDebugf("layout pool started with %d workers", p.workers)
	return nil
}

func (p *Pool) submit(ctx context.Context, spans []Span) ([]Placement, error) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.nextID++
	id := p.nextID
	reply := make(chan response, 1)
	p.pending[id] = reply
	requests, stop := p.requests, p.stop
	p.mu.Unlock()

	in := make([]Span, len(spans))
	copy(in, spans)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case requests <- request{id: id, spans: in}:
	case <-stop:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		p.forget(id)
		return nil, ctx.Err()
	case <-timer.C:
		p.forget(id)
		return nil, fmt.Errorf("request %d: %w", id, ErrRequestTimeout)
	}

	select {
	case resp := <-reply:
		return resp.placements, resp.err
	case <-ctx.Done():
		p.forget(id)
		return nil, ctx.Err()
	case <-timer.C:
		p.forget(id)
		return nil, fmt.Errorf("request %d: %w", id, ErrRequestTimeout)
	}
}

func (p *Pool) worker(requests <-chan request, results chan<- response, stop <-chan struct{}) {
	defer p.wg.Done()
	for {
		select {
		case <-stop:
			return
		case req := <-requests:
			resp := p.run(req)
			select {
			case results <- resp:
			case <-stop:
				return
			}
		}
	}
}

func (p *Pool) run(req request) (resp response) {
	resp.id = req.id
	defer func() {
		if r := recover(); r != nil {
			resp.placements = nil
			resp.err = fmt.Errorf("request %d: %w: %v", req.id, ErrWorkerFailed, r)
		}
	}()
	resp.placements = p.compute(req.spans)
	return resp
}

// dispatch routes each response to its waiting request exactly once.
func (p *Pool) dispatch(results <-chan response, stop <-chan struct{}) {
	defer p.wg.Done()
	for {
		select {
		case <-stop:
			return
		case resp := <-results:
			p.mu.Lock()
			reply, ok := p.pending[resp.id]
			delete(p.pending, resp.id)
			p.mu.Unlock()
			if ok {
				reply <- resp
			}
		}
	}
}

func (p *Pool) forget(id uint64) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

// reset abandons the current workers after a failure; the next Layout call
// starts fresh ones. A worker stuck in a computation exits once it returns.
func (p *Pool) reset(cause error) {
	util.LogWarnf("layout pool reset: %v", cause)
	p.shutdown(cause)
}

func (p *Pool) shutdown(cause error) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	close(p.stop)
	pending := p.pending
	p.pending = nil
	p.started = false
	p.mu.Unlock()

	for id, reply := range pending {
		reply <- response{id: id, err: cause}
	}
}
