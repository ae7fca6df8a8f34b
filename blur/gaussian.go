package blur

import (
	"sync"

	"github.com/pixelveil/veil/surface"
)

// NameGaussian identifies the separable Gaussian strategy.
const NameGaussian = "gaussian"

// Gaussian applies a separable Gaussian blur to the whole original surface.
// The separable algorithm processes horizontal and vertical passes
// independently, achieving O(w*h*r) complexity instead of O(w*h*r*r).
//
// This is the native path: exact gaussian-like filtering, always available.
type Gaussian struct{}

// NewGaussian creates the separable Gaussian strategy.
func NewGaussian() *Gaussian {
	return &Gaussian{}
}

// Name implements Strategy.
func (g *Gaussian) Name() string { return NameGaussian }

// Close implements Strategy. The Gaussian strategy holds no resources.
func (g *Gaussian) Close() {}

// Recompute implements Strategy.
func (g *Gaussian) Recompute(original, blurred *surface.Surface, strength int) error {
	if err := checkSizes(original, blurred); err != nil {
		return err
	}

	if strength <= 0 {
		return blurred.CopyFrom(original)
	}

	width := original.Width()
	height := original.Height()

	temp := getTempBuffer(width, height)
	defer putTempBuffer(temp)

	kernel := CachedGaussianKernel(float64(strength))

	blurHorizontal(original, temp, width, height, kernel)
	blurVertical(temp, blurred, width, height, kernel)

	return nil
}

// blurHorizontal applies 1D horizontal convolution with edge extension.
// Reads from src, writes to the temp buffer.
func blurHorizontal(src *surface.Surface, temp []float32, width, height int, kernel []float32) {
	kernelSize := len(kernel)
	halfKernel := kernelSize / 2
	img := src.RGBA()

	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]

		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k := 0; k < kernelSize; k++ {
				kx := x + k - halfKernel

				// Clamp to source bounds (edge extension).
				if kx < 0 {
					kx = 0
				} else if kx >= width {
					kx = width - 1
				}

				weight := kernel[k]
				idx := kx * 4

				r += float32(row[idx+0]) * weight
				g += float32(row[idx+1]) * weight
				b += float32(row[idx+2]) * weight
				a += float32(row[idx+3]) * weight
			}

			tempIdx := (y*width + x) * 4
			temp[tempIdx+0] = r
			temp[tempIdx+1] = g
			temp[tempIdx+2] = b
			temp[tempIdx+3] = a
		}
	}
}

// blurVertical applies 1D vertical convolution with edge extension.
// Reads from the temp buffer, writes to dst.
func blurVertical(temp []float32, dst *surface.Surface, width, height int, kernel []float32) {
	kernelSize := len(kernel)
	halfKernel := kernelSize / 2
	img := dst.RGBA()

	for y := 0; y < height; y++ {
		dstRow := img.Pix[y*img.Stride:]

		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k := 0; k < kernelSize; k++ {
				ky := y + k - halfKernel

				if ky < 0 {
					ky = 0
				} else if ky >= height {
					ky = height - 1
				}

				weight := kernel[k]
				tempIdx := (ky*width + x) * 4

				r += temp[tempIdx+0] * weight
				g += temp[tempIdx+1] * weight
				b += temp[tempIdx+2] * weight
				a += temp[tempIdx+3] * weight
			}

			idx := x * 4
			dstRow[idx+0] = clampUint8(r)
			dstRow[idx+1] = clampUint8(g)
			dstRow[idx+2] = clampUint8(b)
			dstRow[idx+3] = clampUint8(a)
		}
	}
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

// Temporary buffer pool shared by recomputes.
var tempBufferPool = sync.Pool{
	New: func() interface{} {
		return &floatBuffer{data: make([]float32, 1024*1024*4)}
	},
}

// getTempBuffer retrieves a temporary buffer with at least width*height*4
// elements from the pool.
func getTempBuffer(width, height int) []float32 {
	size := width * height * 4
	wrapper := tempBufferPool.Get().(*floatBuffer)

	if len(wrapper.data) < size {
		tempBufferPool.Put(wrapper)
		return make([]float32, size)
	}
	return wrapper.data[:size]
}

// putTempBuffer returns a temporary buffer to the pool.
func putTempBuffer(buf []float32) {
	// Only pool reasonably-sized buffers.
	if cap(buf) <= 16*1024*1024 {
		tempBufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}

// clampUint8 clamps a float32 to [0, 255] and converts to uint8.
func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5) // Round to nearest
}
