// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

package veil

import (
	"sync"

	"github.com/pixelveil/veil/blur"
	"github.com/pixelveil/veil/clip"
	"github.com/pixelveil/veil/input"
	"github.com/pixelveil/veil/surface"
)

// Editor is the event-driven core of the blur-brush application. It owns the
// surface set, the brush state, the selected blur strategy, the input router
// and the clipboard gateway. All state changes serialize on one mutex; async
// decodes commit under that mutex with a generation guard, so a decode that
// finishes after a newer load started is discarded rather than cancelled.
type Editor struct {
	mu sync.Mutex

	surfaces *surface.Set
	strategy blur.Strategy
	brush    BrushState
	status   Status

	router  *input.Router
	gateway *clip.Gateway

	// generation counts loads. Compared at commit time to drop stale decodes.
	generation uint64

	// strategyName forces a specific strategy; empty means registry order.
	strategyName string
}

// Option configures an Editor.
type Option func(*Editor)

// WithClipboard selects the clipboard backend. The default is the system
// clipboard; tests and headless runs pass clip.NewMemory().
func WithClipboard(b clip.Backend) Option {
	return func(e *Editor) {
		e.gateway = clip.NewGateway(b)
	}
}

// WithStrategy forces a named blur strategy instead of priority selection.
func WithStrategy(name string) Option {
	return func(e *Editor) {
		e.strategyName = name
	}
}

// NewEditor creates an editor with default brush state and no image loaded.
func NewEditor(opts ...Option) *Editor {
	e := &Editor{
		brush:  defaultBrush(),
		status: Status{Kind: StatusIdle, Message: "no image loaded"},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.gateway == nil {
		e.gateway = clip.NewGateway(clip.NewSystem())
	}
	e.router = input.NewRouter(e.ready, e.applyBrushAt)
	return e
}

// Router returns the input router feeding this editor's brush.
func (e *Editor) Router() *input.Router {
	return e.router
}

// Surfaces returns the current surface set, or nil before the first
// successful load. The set is replaced wholesale by each load.
func (e *Editor) Surfaces() *surface.Set {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surfaces
}

// Status returns the single-line state of the most recent operation.
func (e *Editor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Brush returns the current brush state.
func (e *Editor) Brush() BrushState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brush
}

// StrategyName returns the name of the active blur strategy, or "" when no
// strategy has been selected yet.
func (e *Editor) StrategyName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.strategy == nil {
		return ""
	}
	return e.strategy.Name()
}

// SetBrushSize adjusts the brush diameter, clamped to the allowed range,
// and returns the value in effect.
func (e *Editor) SetBrushSize(size int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.brush.Size = clampBrushSize(size)
	Logger().Debug("brush size changed", "size", e.brush.Size)
	return e.brush.Size
}

// SetStrength adjusts the blur radius, clamped to the allowed range, and
// regenerates Blurred in full when an image is loaded. Strokes painted at the
// old strength keep their pixels; only future strokes read the new Blurred.
func (e *Editor) SetStrength(strength int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.brush.Strength = clampStrength(strength)
	Logger().Debug("strength changed", "strength", e.brush.Strength)
	if e.surfaces == nil {
		return nil
	}
	if err := e.recomputeLocked(); err != nil {
		e.status = Status{Kind: StatusError, Message: err.Error()}
		return err
	}
	return nil
}

// Reset discards all brush edits by recopying Original into Display,
// synchronously, with no partial-state window. Blurred is untouched.
func (e *Editor) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.surfaces == nil {
		return ErrNoImage
	}
	e.surfaces.Reset()
	return nil
}

// Close releases the blur strategy and the clipboard backend.
// The editor must not be used afterwards.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.strategy != nil {
		e.strategy.Close()
		e.strategy = nil
	}
	e.gateway.Close()
	e.surfaces = nil
}

// ready reports whether surfaces exist; the router probes it before starting
// a draw session.
func (e *Editor) ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surfaces != nil
}

// applyBrushAt paints one brush application at surface coordinates.
// Invoked by the router for the initial down event and every move.
func (e *Editor) applyBrushAt(x, y int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.surfaces == nil {
		return
	}
	applyBrush(e.surfaces, x, y, e.brush.Size)
}

// recomputeLocked regenerates Blurred from Original with the active
// strategy, selecting one first if needed. A failing strategy is closed and
// replaced by the next available one; only when no strategy remains does the
// error surface. Must be called with the lock held.
func (e *Editor) recomputeLocked() error {
	if e.surfaces == nil {
		return nil
	}

	if e.strategy == nil {
		var err error
		if e.strategyName != "" {
			e.strategy, err = blur.New(e.strategyName)
		} else {
			e.strategy, err = blur.Select()
		}
		if err != nil {
			return err
		}
		Logger().Info("blur strategy selected", "strategy", e.strategy.Name())
	}

	err := e.strategy.Recompute(e.surfaces.Original, e.surfaces.Blurred, e.brush.Strength)
	if err == nil {
		return nil
	}

	failed := e.strategy.Name()
	Logger().Warn("blur strategy failed, falling back", "strategy", failed, "err", err)
	e.strategy.Close()
	e.strategy = nil

	next, serr := blur.Select(failed)
	if serr != nil {
		return serr
	}
	e.strategy = next
	Logger().Info("blur strategy selected", "strategy", next.Name())
	return next.Recompute(e.surfaces.Original, e.surfaces.Blurred, e.brush.Strength)
}
