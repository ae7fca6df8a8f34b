// Package imaging decodes raster byte streams and encodes PNG output.
//
// Format support is registration-based: the blank imports below make the
// decoder accept PNG, JPEG, GIF, BMP, TIFF and WebP streams through
// image.Decode's sniffing, mirroring "any decodable format" input.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoding errors.
var (
	// ErrEmptyData is returned when the byte stream is empty.
	ErrEmptyData = errors.New("imaging: empty data")

	// ErrZeroDimension is returned when a stream decodes to a zero-sized image.
	ErrZeroDimension = errors.New("imaging: image has zero dimension")
)

// DecodeBytes decodes an image from a byte slice, auto-detecting the format,
// and converts it to RGBA with a zero origin.
func DecodeBytes(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, ErrZeroDimension
	}

	return toRGBA(img, width, height), nil
}

// EncodePNG encodes an RGBA image to PNG bytes.
func EncodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imaging: encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// toRGBA converts any decoded image to a zero-origin *image.RGBA.
func toRGBA(img image.Image, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fast path for RGBA images with a zero origin.
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		if rgba.Stride == out.Stride {
			copy(out.Pix, rgba.Pix)
			return out
		}
		for y := 0; y < height; y++ {
			srcStart := y * rgba.Stride
			copy(out.Pix[y*out.Stride:], rgba.Pix[srcStart:srcStart+width*4])
		}
		return out
	}

	// Generic path for any image type.
	bounds := img.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b, a := c.RGBA()
			off := y*out.Stride + x*4
			// RGBA() returns 16-bit values, scale to 8-bit.
			out.Pix[off+0] = byte(r >> 8)
			out.Pix[off+1] = byte(g >> 8)
			out.Pix[off+2] = byte(b >> 8)
			out.Pix[off+3] = byte(a >> 8)
		}
	}
	return out
}
