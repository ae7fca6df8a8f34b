// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

package veil

import (
	"errors"
	"fmt"

	"github.com/pixelveil/veil/clip"
	"github.com/pixelveil/veil/internal/imaging"
)

// ExportPNG returns the current Display surface encoded as PNG. With no
// image loaded it returns ErrNoImage and attempts no encoding.
func (e *Editor) ExportPNG() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.surfaces == nil {
		return nil, ErrNoImage
	}

	data, err := imaging.EncodePNG(e.surfaces.Display.RGBA())
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrExportFailure, err)
		e.status = Status{Kind: StatusError, Message: err.Error()}
		return nil, err
	}
	return data, nil
}

// CopyToClipboard publishes the Display surface as a PNG clipboard payload.
func (e *Editor) CopyToClipboard() error {
	png, err := e.ExportPNG()
	if err != nil {
		return err
	}

	if err := e.gateway.WriteImage(png); err != nil {
		e.setStatus(Status{Kind: StatusError, Message: err.Error()})
		Logger().Warn("clipboard write failed", "err", err)
		return err
	}
	e.setMessage("copied to clipboard")
	return nil
}

// PasteFromClipboard reads the first image representation from the clipboard
// and loads it. A clipboard without an image reports clip.ErrEmpty and a
// "no image" status: this is an outcome, not a fault, and the surfaces stay
// unchanged. Backend failures surface as error status.
func (e *Editor) PasteFromClipboard() error {
	data, err := e.gateway.ReadImage()
	switch {
	case err == nil:
		return e.Load(data, "clipboard")
	case errors.Is(err, clip.ErrEmpty):
		e.setMessage("no image on clipboard")
		Logger().Debug("paste without image representation",
			"snapshot", e.gateway.LastSnapshot().Summary())
		return err
	default:
		e.setStatus(Status{Kind: StatusError, Message: err.Error()})
		Logger().Warn("clipboard read failed", "err", err)
		return err
	}
}

// ClipboardSnapshot returns the diagnostics of the last clipboard
// interaction, for the troubleshooting panel.
func (e *Editor) ClipboardSnapshot() clip.Snapshot {
	return e.gateway.LastSnapshot()
}

func (e *Editor) setStatus(s Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = s
}

// setMessage updates the status message without changing the kind.
func (e *Editor) setMessage(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.Message = msg
}
