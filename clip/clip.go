// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package clip provides clipboard access through a narrow backend interface.
//
// Two backends exist: System, backed by golang.design/x/clipboard, and
// Memory, an in-process backend for tests and headless use. The Gateway
// sits above a backend and implements the image-oriented read/write policy:
// reads pick the first item with an image MIME type, writes publish a single
// PNG item. Every interaction records a snapshot of the item types seen,
// for troubleshooting paste problems.
package clip

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	// ErrUnavailable indicates the platform clipboard capability is missing.
	ErrUnavailable = errors.New("clip: clipboard unavailable")

	// ErrEmpty indicates the clipboard holds no image representation.
	// This is a status, not a fault: pasting text is not an error.
	ErrEmpty = errors.New("clip: no image on clipboard")

	// ErrPermissionDenied indicates the platform rejected the operation.
	ErrPermissionDenied = errors.New("clip: permission denied")
)

// Item is one typed clipboard representation.
type Item struct {
	// Type is the MIME type the backend declares for the data.
	Type string

	// Data is the raw representation bytes.
	Data []byte
}

// Backend is the interface all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard contents as a slice of typed items.
	// Returns nil, nil if the clipboard is empty or holds only unsupported
	// types.
	Read() ([]Item, error)

	// Write sets the clipboard contents to the provided items.
	Write(items []Item) error

	// Close releases any resources held by the backend.
	Close()
}

// Snapshot records what one clipboard interaction saw, for diagnostics.
type Snapshot struct {
	// Op is "read" or "write".
	Op string

	// Types lists the MIME types of the items involved.
	Types []string

	// When is the interaction time.
	When time.Time
}

// Summary returns a one-line description of the snapshot.
func (s Snapshot) Summary() string {
	if len(s.Types) == 0 {
		return s.Op + ": empty clipboard"
	}
	return s.Op + ": " + strings.Join(s.Types, ", ")
}

// Gateway applies the image read/write policy over a Backend.
// Methods are safe for concurrent use.
type Gateway struct {
	mu      sync.Mutex
	backend Backend
	last    Snapshot
}

// NewGateway wraps the given backend.
func NewGateway(b Backend) *Gateway {
	return &Gateway{backend: b}
}

// BackendName returns the name of the underlying backend.
func (g *Gateway) BackendName() string {
	return g.backend.Name()
}

// ReadImage returns the bytes of the first clipboard item whose type begins
// with "image/". A clipboard without an image representation returns
// ErrEmpty; backend failures pass through.
func (g *Gateway) ReadImage() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	items, err := g.backend.Read()
	g.last = snapshot("read", items)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if strings.HasPrefix(item.Type, "image/") {
			return item.Data, nil
		}
	}
	return nil, ErrEmpty
}

// WriteImage publishes PNG bytes as a single-item clipboard payload.
func (g *Gateway) WriteImage(png []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	items := []Item{{Type: "image/png", Data: png}}
	g.last = snapshot("write", items)
	return g.backend.Write(items)
}

// LastSnapshot returns the diagnostics of the most recent interaction.
func (g *Gateway) LastSnapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Close releases the underlying backend.
func (g *Gateway) Close() {
	g.backend.Close()
}

func snapshot(op string, items []Item) Snapshot {
	types := make([]string, len(items))
	for i, item := range items {
		types[i] = item.Type
	}
	return Snapshot{Op: op, Types: types, When: time.Now()}
}
