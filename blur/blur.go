// Package blur computes the blurred companion surface for a loaded image.
//
// A Strategy populates the blurred surface from the original at a given
// strength (blur radius in pixels). Strategies are registered in a priority
// registry and selected once at setup; when a strategy fails at runtime the
// caller selects the next available one instead of scattering capability
// checks through call sites.
//
// Built-in strategies:
//   - "gaussian": separable Gaussian convolution (the native path).
//   - "downscale": iterative downscale/upscale approximation (the fallback
//     path for constrained environments).
//   - "gpu": optional compute-shader path in the blur/gpu subpackage,
//     registered by importing it.
package blur

import (
	"errors"

	"github.com/pixelveil/veil/surface"
)

// Strategy errors.
var (
	// ErrNoStrategyAvailable is returned when no registered strategy is
	// available on the current system.
	ErrNoStrategyAvailable = errors.New("blur: no strategy available")

	// ErrSizeMismatch is returned when the original and blurred surfaces
	// differ in dimensions.
	ErrSizeMismatch = errors.New("blur: surface size mismatch")
)

// Strategy produces the blurred surface from the original.
//
// Implementations may keep per-image resources (textures, scratch buffers);
// they must tear those down and rebuild them when the original surface
// identity changes between calls.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "gaussian", "downscale").
	Name() string

	// Recompute populates blurred with a gaussian-like blur of the
	// original at the given strength (radius in pixels). Both surfaces
	// must share dimensions. Recompute overwrites blurred entirely.
	Recompute(original, blurred *surface.Surface, strength int) error

	// Close releases any resources held by the strategy.
	// The strategy must not be used after Close.
	Close()
}

// checkSizes validates the shared-dimension invariant for Recompute.
func checkSizes(original, blurred *surface.Surface) error {
	if original.Width() != blurred.Width() || original.Height() != blurred.Height() {
		return ErrSizeMismatch
	}
	return nil
}
