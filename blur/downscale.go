package blur

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/pixelveil/veil/surface"
)

// NameDownscale identifies the downscale/upscale approximation strategy.
const NameDownscale = "downscale"

// Downscale approximates a blur by repeated downscale-then-upscale passes
// with smoothed interpolation. It produces a visually similar soft blur
// without a true convolution kernel — an intentional performance/quality
// trade-off for environments where native filtering is unavailable.
//
// The pass count and scale factor are a behavioral contract:
//
//	scale  = max(0.12, 1 - strength/20)
//	passes = max(1, round(strength/6))
//
// Each pass downsamples the current source into a scratch surface at
// (W*scale, H*scale), then upsamples back to W×H into the blurred surface;
// subsequent passes read from the blurred surface as their source.
type Downscale struct {
	// scratch is reused between recomputes of the same scaled size.
	scratch *image.RGBA
}

// NewDownscale creates the downscale/upscale approximation strategy.
func NewDownscale() *Downscale {
	return &Downscale{}
}

// Name implements Strategy.
func (d *Downscale) Name() string { return NameDownscale }

// Close implements Strategy.
func (d *Downscale) Close() {
	d.scratch = nil
}

// Scale returns the per-pass downscale factor for the given strength.
// It is non-increasing in strength.
func Scale(strength int) float64 {
	return math.Max(0.12, 1-float64(strength)/20)
}

// Passes returns the number of downscale/upscale passes for the given
// strength. It is non-decreasing in strength.
func Passes(strength int) int {
	p := int(math.Round(float64(strength) / 6))
	if p < 1 {
		return 1
	}
	return p
}

// Recompute implements Strategy.
func (d *Downscale) Recompute(original, blurred *surface.Surface, strength int) error {
	if err := checkSizes(original, blurred); err != nil {
		return err
	}

	if strength <= 0 {
		return blurred.CopyFrom(original)
	}

	width := original.Width()
	height := original.Height()

	scale := Scale(strength)
	passes := Passes(strength)

	scaledW := int(float64(width) * scale)
	scaledH := int(float64(height) * scale)
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}

	if d.scratch == nil || d.scratch.Rect.Dx() != scaledW || d.scratch.Rect.Dy() != scaledH {
		d.scratch = image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	}

	src := original.RGBA()
	dst := blurred.RGBA()

	for pass := 0; pass < passes; pass++ {
		xdraw.ApproxBiLinear.Scale(d.scratch, d.scratch.Rect, src, src.Rect, xdraw.Src, nil)
		// The upsample uses the exact bilinear scaler: its smoothing is what
		// turns the resolution loss into a soft blur.
		xdraw.BiLinear.Scale(dst, dst.Rect, d.scratch, d.scratch.Rect, xdraw.Src, nil)
		src = dst
	}

	return nil
}
