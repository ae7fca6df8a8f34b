package veil

import "errors"

// Editor errors. Each is caught at the operation boundary and reflected in
// Editor.Status; none escape as panics.
var (
	// ErrEmptyInput is returned when a load receives zero bytes.
	ErrEmptyInput = errors.New("veil: empty input")

	// ErrDecodeFailure is returned when image bytes cannot be decoded.
	// It wraps the codec error.
	ErrDecodeFailure = errors.New("veil: decode failure")

	// ErrZeroDimension is returned when an image decodes to zero width or height.
	ErrZeroDimension = errors.New("veil: image has zero dimension")

	// ErrNoImage is returned by operations that need loaded surfaces
	// when none exist.
	ErrNoImage = errors.New("veil: no image loaded")

	// ErrExportFailure is returned when PNG encoding fails.
	ErrExportFailure = errors.New("veil: export failure")
)
