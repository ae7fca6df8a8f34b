// Package gpu registers a GPU compute blur strategy backed by wgpu/hal.
//
// Import this package for its side effect to make the strategy available:
//
//	import _ "github.com/pixelveil/veil/blur/gpu"
//
// The strategy registers under the name "gpu" at a priority between the
// native gaussian path and the downscale approximation. If GPU setup fails
// (no Vulkan available, no adapters, shader compilation error), strategy
// selection falls through to the next candidate.
//
// Build with the nogpu tag to compile this package down to nothing.
package gpu
