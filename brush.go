// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

package veil

import "github.com/pixelveil/veil/surface"

// Brush size and strength limits. Both controls take effect immediately:
// size on the next stroke, strength through a full Blurred regeneration.
const (
	// MinBrushSize is the smallest brush diameter in pixels.
	MinBrushSize = 18

	// MaxBrushSize is the largest brush diameter in pixels.
	MaxBrushSize = 140

	// DefaultBrushSize is the brush diameter before any adjustment.
	DefaultBrushSize = 52

	// MinStrength is the weakest blur radius in pixels.
	MinStrength = 2

	// MaxStrength is the strongest blur radius in pixels.
	MaxStrength = 18

	// DefaultStrength is the blur radius before any adjustment.
	DefaultStrength = 6
)

// BrushState holds the two user-adjustable brush parameters.
type BrushState struct {
	// Size is the brush diameter in pixels, within [MinBrushSize, MaxBrushSize].
	Size int

	// Strength is the blur radius in pixels, within [MinStrength, MaxStrength].
	Strength int
}

// defaultBrush returns the initial brush state.
func defaultBrush() BrushState {
	return BrushState{Size: DefaultBrushSize, Strength: DefaultStrength}
}

// clampBrushSize confines a requested size to the allowed range.
func clampBrushSize(size int) int {
	if size < MinBrushSize {
		return MinBrushSize
	}
	if size > MaxBrushSize {
		return MaxBrushSize
	}
	return size
}

// clampStrength confines a requested strength to the allowed range.
func clampStrength(strength int) int {
	if strength < MinStrength {
		return MinStrength
	}
	if strength > MaxStrength {
		return MaxStrength
	}
	return strength
}

// applyBrush copies the circular window of diameter size centered at (x, y)
// from Blurred onto Display. The bounding box is clamped to the surface, the
// copy is restricted to the disk. Display is mutated permanently; reapplying
// at the same point is a redundant copy, nothing more.
func applyBrush(set *surface.Set, x, y, size int) {
	w := set.Width()
	h := set.Height()
	r := size / 2
	if r < 1 {
		r = 1
	}

	minX := x - r
	if minX < 0 {
		minX = 0
	}
	minY := y - r
	if minY < 0 {
		minY = 0
	}
	maxX := x + r
	if maxX > w-1 {
		maxX = w - 1
	}
	maxY := y + r
	if maxY > h-1 {
		maxY = h - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	src := set.Blurred.RGBA()
	dst := set.Display.RGBA()
	rr := r * r

	for py := minY; py <= maxY; py++ {
		dy := py - y
		srcRow := src.Pix[py*src.Stride:]
		dstRow := dst.Pix[py*dst.Stride:]
		for px := minX; px <= maxX; px++ {
			dx := px - x
			if dx*dx+dy*dy > rr {
				continue
			}
			off := px * 4
			copy(dstRow[off:off+4], srcRow[off:off+4])
		}
	}
}
