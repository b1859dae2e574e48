package timeline

import (
	"time"

	"github.com/penwyp/go-pm-timeline/internal/presentation/canvas"
)

// LoopState is the render loop's mode.
type LoopState int

const (
	StateIdle LoopState = iota
	StateAnimating
	StateZooming
)

func (s LoopState) String() string {
	switch s {
	case StateAnimating:
		return "animating"
	case StateZooming:
		return "zooming"
	default:
		return "idle"
	}
}

// FrameInfo is handed to the paint function for every frame.
type FrameInfo struct {
	Now      time.Time
	State    LoopState
	Progress float64
	Zooming  bool
}

// RenderLoop coalesces redraw requests into at most one frame and drives the
// entrance animation and the zoom settle window. It holds a single frame
// handle that is cancelled before any new request, so a frame always paints
// the latest state.
//
// A RenderLoop is not safe for concurrent use.
type RenderLoop struct {
	sched  FrameScheduler
	paint  func(FrameInfo)
	settle time.Duration
	animD  time.Duration

	state     LoopState
	anim      canvas.Animation
	zoomUntil time.Time
	holdUntil time.Time

	handle  FrameHandle
	pending bool
	frames  int
}

// NewRenderLoop creates an idle loop. paint is called once per frame.
func NewRenderLoop(sched FrameScheduler, paint func(FrameInfo), animation, settle time.Duration) *RenderLoop {
	return &RenderLoop{
		sched:  sched,
		paint:  paint,
		settle: settle,
		animD:  animation,
	}
}

// State returns the current mode.
func (l *RenderLoop) State() LoopState {
	return l.state
}

// Pending reports whether a frame is queued.
func (l *RenderLoop) Pending() bool {
	return l.pending
}

// Frames returns how many frames have been painted.
func (l *RenderLoop) Frames() int {
	return l.frames
}

// Invalidate asks for one redraw without changing the mode.
func (l *RenderLoop) Invalidate() {
	l.schedule()
}

// Animate restarts the entrance animation. A zoom in progress wins: zoom
// redraws never animate.
func (l *RenderLoop) Animate(now time.Time) {
	if l.state == StateZooming {
		l.schedule()
		return
	}
	l.anim = canvas.NewAnimation(now, l.animD)
	l.state = StateAnimating
	l.schedule()
}

// Zoom enters or extends the zooming mode. The mode ends once no zoom input
// has arrived for the settle window.
func (l *RenderLoop) Zoom(now time.Time) {
	l.state = StateZooming
	l.zoomUntil = now.Add(l.settle)
	l.schedule()
}

// HoldUntil keeps frames coming until t even when idle, so time-based work
// checked by the paint function gets a chance to run.
func (l *RenderLoop) HoldUntil(t time.Time) {
	if t.After(l.holdUntil) {
		l.holdUntil = t
	}
	l.schedule()
}

// Stop cancels the queued frame.
func (l *RenderLoop) Stop() {
	if l.pending {
		l.sched.CancelFrame(l.handle)
		l.pending = false
	}
}

func (l *RenderLoop) schedule() {
	if l.pending {
		l.sched.CancelFrame(l.handle)
	}
	l.handle = l.sched.RequestFrame(l.frame)
	l.pending = true
}

func (l *RenderLoop) frame(now time.Time) {
	l.pending = false

	info := FrameInfo{Now: now, Progress: 1}
	switch l.state {
	case StateAnimating:
		if l.anim.Done(now) {
			l.state = StateIdle
		} else {
			info.Progress = l.anim.Progress(now)
		}
	case StateZooming:
		if !now.Before(l.zoomUntil) {
			l.state = StateIdle
		}
	}
	info.State = l.state
	info.Zooming = l.state == StateZooming

	l.frames++
	l.paint(info)

	if !l.pending && (l.state != StateIdle || now.Before(l.holdUntil)) {
		l.schedule()
	}
}
