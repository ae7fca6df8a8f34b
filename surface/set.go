// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "image"

// Set holds the three surfaces that exist for a loaded image.
//
// All three surfaces share identical dimensions. Display and Blurred are
// only valid while the owning image is the active one; a new image load
// must allocate a fresh Set in full. Partial reuse of stale surfaces is a
// correctness bug since size mismatches would corrupt brush compositing.
type Set struct {
	// Original is a pixel-identical snapshot of the decoded image.
	// It is never mutated after allocation; Reset copies it back into
	// Display.
	Original *Surface

	// Display is the surface shown to the user and mutated by brush
	// strokes. Initialized as a copy of Original.
	Display *Surface

	// Blurred is derived from Original by the active blur strategy and
	// regenerated whenever the blur strength changes. Until the first
	// blur pass runs it holds an unblurred copy of Original, so brush
	// strokes that arrive early still composite valid pixels.
	Blurred *Surface
}

// NewSet allocates the three surfaces for a decoded image.
// Returns ErrZeroSize for images with zero width or height.
func NewSet(src image.Image) (*Set, error) {
	display, err := FromImage(src)
	if err != nil {
		return nil, err
	}
	return &Set{
		Original: display.Clone(),
		Display:  display,
		Blurred:  display.Clone(),
	}, nil
}

// Width returns the shared surface width in pixels.
func (s *Set) Width() int {
	return s.Original.Width()
}

// Height returns the shared surface height in pixels.
func (s *Set) Height() int {
	return s.Original.Height()
}

// Reset discards all brush edits by recopying Original into Display.
// The copy is synchronous; there is no partial-state window.
func (s *Set) Reset() {
	// Sizes are identical by construction, the error cannot occur.
	_ = s.Display.CopyFrom(s.Original)
}
