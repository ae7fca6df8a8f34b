// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the raster surfaces edited by veil.
//
// A Surface is an in-memory 2D RGBA pixel buffer. A Set bundles the three
// surfaces that exist for a loaded image: the immutable original, the
// display surface mutated by brush strokes, and the derived blurred surface.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, or external synchronization must be used.
package surface

import (
	"errors"
	"image"
	"image/draw"
)

// Surface errors.
var (
	// ErrSizeMismatch is returned when an operation requires two surfaces
	// of identical dimensions and they differ.
	ErrSizeMismatch = errors.New("surface: size mismatch")

	// ErrZeroSize is returned when a surface would have zero width or height.
	ErrZeroSize = errors.New("surface: zero width or height")
)

// Surface is a 2D RGBA pixel buffer.
//
// The zero value is not usable; create surfaces with New, FromImage, or
// Clone.
type Surface struct {
	img *image.RGBA
}

// New creates a blank surface with the given dimensions.
// Returns ErrZeroSize if width or height is not positive.
func New(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrZeroSize
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

// FromImage creates a surface painted with the given image.
// The source image is converted to RGBA; the surface owns its own pixels.
// Returns ErrZeroSize for images with zero width or height.
func FromImage(src image.Image) (*Surface, error) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	s, err := New(width, height)
	if err != nil {
		return nil, err
	}

	// Fast path for RGBA sources with a matching stride.
	if rgba, ok := src.(*image.RGBA); ok && bounds.Min == (image.Point{}) && rgba.Stride == s.img.Stride {
		copy(s.img.Pix, rgba.Pix)
		return s, nil
	}

	draw.Draw(s.img, s.img.Bounds(), src, bounds.Min, draw.Src)
	return s, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int {
	return s.img.Rect.Dx()
}

// Height returns the surface height in pixels.
func (s *Surface) Height() int {
	return s.img.Rect.Dy()
}

// RGBA returns the underlying image.RGBA.
// This is a direct reference, not a copy.
func (s *Surface) RGBA() *image.RGBA {
	return s.img
}

// Snapshot returns a copy of the current surface contents.
// Modifications to the returned image do not affect the surface.
func (s *Surface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}

// Clone returns a new surface with a pixel-identical copy of the contents.
func (s *Surface) Clone() *Surface {
	return &Surface{img: s.Snapshot()}
}

// CopyFrom overwrites this surface's pixels with those of src.
// Both surfaces must have identical dimensions.
func (s *Surface) CopyFrom(src *Surface) error {
	if s.Width() != src.Width() || s.Height() != src.Height() {
		return ErrSizeMismatch
	}
	copy(s.img.Pix, src.img.Pix)
	return nil
}

// At returns the RGBA bytes of the pixel at (x, y).
func (s *Surface) At(x, y int) (r, g, b, a uint8) {
	i := s.img.PixOffset(x, y)
	return s.img.Pix[i], s.img.Pix[i+1], s.img.Pix[i+2], s.img.Pix[i+3]
}

// Set writes the RGBA bytes of the pixel at (x, y).
func (s *Surface) Set(x, y int, r, g, b, a uint8) {
	i := s.img.PixOffset(x, y)
	s.img.Pix[i+0] = r
	s.img.Pix[i+1] = g
	s.img.Pix[i+2] = b
	s.img.Pix[i+3] = a
}
