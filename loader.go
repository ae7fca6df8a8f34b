// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

package veil

import (
	"errors"
	"fmt"
	"image"

	"github.com/pixelveil/veil/internal/imaging"
	"github.com/pixelveil/veil/surface"
)

// Load decodes raster bytes and replaces the surface set wholesale.
// Zero-byte input returns ErrEmptyInput, undecodable bytes return
// ErrDecodeFailure, a degenerate raster returns ErrZeroDimension; in every
// failure case the prior surfaces stay untouched.
func (e *Editor) Load(data []byte, name string) error {
	gen := e.beginLoad(name)

	img, err := decodeImage(data)
	if err != nil {
		e.failLoad(gen, name, err)
		return err
	}
	return e.commit(gen, img, name)
}

// LoadAsync decodes on a goroutine and reports through done (which may be
// nil). A load superseded by a newer one is discarded at commit time and
// reports nil: discarding stale work is not a failure.
func (e *Editor) LoadAsync(data []byte, name string, done func(error)) {
	gen := e.beginLoad(name)

	go func() {
		img, err := decodeImage(data)
		if err != nil {
			e.failLoad(gen, name, err)
		} else {
			err = e.commit(gen, img, name)
		}
		if done != nil {
			done(err)
		}
	}()
}

// beginLoad claims a new generation and flips status to loading.
func (e *Editor) beginLoad(name string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.status = Status{Kind: StatusLoading, Message: "loading " + name}
	return e.generation
}

// failLoad records a load error unless a newer load already took over.
func (e *Editor) failLoad(gen uint64, name string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		return
	}
	e.status = Status{Kind: StatusError, Message: err.Error()}
	Logger().Warn("load failed", "name", name, "err", err)
}

// commit installs freshly decoded surfaces under the generation guard and
// runs the initial blur pass. A stale generation is discarded silently.
func (e *Editor) commit(gen uint64, img *image.RGBA, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		Logger().Debug("superseded load discarded", "name", name)
		return nil
	}

	set, err := surface.NewSet(img)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrZeroDimension, err)
		e.status = Status{Kind: StatusError, Message: err.Error()}
		return err
	}
	e.surfaces = set
	e.router.SetSurfaceSize(set.Width(), set.Height())

	// Initial blur pass. Failure leaves Blurred holding the unblurred copy;
	// strokes still work, they just reveal the original until a strength
	// change succeeds.
	if rerr := e.recomputeLocked(); rerr != nil {
		e.status = Status{Kind: StatusError, Message: rerr.Error()}
		Logger().Warn("initial blur pass failed", "err", rerr)
		return nil
	}

	e.status = Status{Kind: StatusReady, Message: "ready"}
	Logger().Info("image loaded", "name", name,
		"width", set.Width(), "height", set.Height())
	return nil
}

// decodeImage maps imaging errors onto the editor's error taxonomy.
func decodeImage(data []byte) (*image.RGBA, error) {
	img, err := imaging.DecodeBytes(data)
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, imaging.ErrEmptyData):
		return nil, ErrEmptyInput
	case errors.Is(err, imaging.ErrZeroDimension):
		return nil, ErrZeroDimension
	default:
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
}
