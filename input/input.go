// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package input routes pointer and touch events to the brush compositor.
//
// The router is a small state machine: idle until a down event of either
// kind starts a draw session, then exclusive to that kind until the session
// ends. Exclusivity keeps synthesized mouse events that some platforms emit
// alongside touch input from driving the brush twice.
package input

import "sync"

// Kind distinguishes the two input sources the router accepts.
type Kind int

const (
	// KindPointer is mouse or pen input.
	KindPointer Kind = iota

	// KindTouch is direct touch input.
	KindTouch
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// EventType enumerates the event phases the router understands.
type EventType int

const (
	// Down starts a draw session (pointer-down, touch-start).
	Down EventType = iota

	// Move continues a draw session.
	Move

	// Up ends a draw session (pointer-up, touch-end).
	Up

	// Cancel ends a draw session without a final position.
	Cancel

	// Leave ends a draw session when the input exits the viewport.
	Leave
)

// Event is a single input event in screen coordinates.
type Event struct {
	Kind Kind
	Type EventType

	// X, Y are screen-space coordinates relative to the displayed image.
	X, Y float64
}

// DrawSession describes the router's current state.
// A session exists only between a down event and the matching
// up/cancel/leave of the same kind.
type DrawSession struct {
	Active bool
	Kind   Kind
}

// ApplyFunc receives brush applications in surface pixel coordinates.
type ApplyFunc func(x, y int)

// ReadyFunc reports whether surfaces exist to draw on. A down event is
// ignored while it returns false.
type ReadyFunc func() bool

// Router converts a single stream of pointer and touch events into brush
// applications. Methods are safe for concurrent use.
type Router struct {
	mu sync.Mutex

	ready ReadyFunc
	apply ApplyFunc

	session DrawSession

	// Surface resolution and displayed size, for coordinate mapping.
	surfaceW, surfaceH   int
	viewportW, viewportH float64
}

// NewRouter creates a router delivering brush applications to apply,
// guarded by ready. Both callbacks must be non-nil.
func NewRouter(ready ReadyFunc, apply ApplyFunc) *Router {
	return &Router{ready: ready, apply: apply}
}

// SetSurfaceSize records the pixel resolution of the draw target.
func (r *Router) SetSurfaceSize(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaceW = w
	r.surfaceH = h
}

// SetViewport records the displayed size of the image in screen units.
// Events are mapped by the ratio of surface resolution to displayed size;
// with no viewport set, coordinates pass through one to one.
func (r *Router) SetViewport(w, h float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewportW = w
	r.viewportH = h
}

// Session returns the current draw session state.
func (r *Router) Session() DrawSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Handle feeds one event through the state machine. It returns true when
// the event resulted in a brush application.
//
// The ready probe and the apply callback both run outside the router lock,
// so they may take locks of their own (the editor serializes both on its
// mutex).
func (r *Router) Handle(ev Event) bool {
	ready := ev.Type == Down && r.ready()

	r.mu.Lock()
	x, y, ok := r.route(ev, ready)
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.apply(x, y)
	return true
}

// route advances the state machine and, for painting events, maps the
// coordinate to surface pixel space. Must be called with the lock held.
func (r *Router) route(ev Event, ready bool) (x, y int, ok bool) {
	if !r.session.Active {
		if ev.Type != Down || !ready {
			return 0, 0, false
		}
		r.session = DrawSession{Active: true, Kind: ev.Kind}
		x, y = r.mapToSurface(ev.X, ev.Y)
		return x, y, true
	}

	// While drawing, events of the other kind are ignored entirely.
	if ev.Kind != r.session.Kind {
		return 0, 0, false
	}

	switch ev.Type {
	case Move, Down: // redundant down of the active kind paints like a move
		x, y = r.mapToSurface(ev.X, ev.Y)
		return x, y, true
	case Up, Cancel, Leave:
		r.session = DrawSession{}
		return 0, 0, false
	default:
		return 0, 0, false
	}
}

// mapToSurface converts screen coordinates to surface pixels.
// Must be called with the lock held.
func (r *Router) mapToSurface(x, y float64) (int, int) {
	sx, sy := x, y
	if r.viewportW > 0 && r.surfaceW > 0 {
		sx = x * float64(r.surfaceW) / r.viewportW
	}
	if r.viewportH > 0 && r.surfaceH > 0 {
		sy = y * float64(r.surfaceH) / r.viewportH
	}
	return int(sx), int(sy)
}
