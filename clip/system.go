// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"sync"

	"golang.design/x/clipboard"
)

// System is the platform clipboard backend, backed by
// golang.design/x/clipboard. Image data crosses the clipboard as PNG bytes.
type System struct {
	initOnce sync.Once
	initErr  error
}

var _ Backend = (*System)(nil)

// NewSystem creates the platform backend. Initialization is deferred to the
// first Read or Write so construction never fails; a platform without
// clipboard support surfaces ErrUnavailable on use instead.
func NewSystem() *System {
	return &System{}
}

// Name implements Backend.
func (s *System) Name() string { return "system" }

// init probes the platform clipboard once.
func (s *System) init() error {
	s.initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			s.initErr = err
		}
	})
	if s.initErr != nil {
		return ErrUnavailable
	}
	return nil
}

// Read implements Backend. It reports the image representation when one
// exists, falling back to the text representation so the gateway snapshot
// can show what the clipboard actually held.
func (s *System) Read() ([]Item, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	if data := clipboard.Read(clipboard.FmtImage); len(data) > 0 {
		return []Item{{Type: "image/png", Data: data}}, nil
	}
	if data := clipboard.Read(clipboard.FmtText); len(data) > 0 {
		return []Item{{Type: "text/plain", Data: data}}, nil
	}
	return nil, nil
}

// Write implements Backend. Only image items are supported; anything else
// on the payload is ignored.
func (s *System) Write(items []Item) error {
	if err := s.init(); err != nil {
		return err
	}

	for _, item := range items {
		if item.Type == "image/png" {
			clipboard.Write(clipboard.FmtImage, item.Data)
			return nil
		}
	}
	return ErrEmpty
}

// Close implements Backend. The platform clipboard holds no resources that
// need explicit release.
func (s *System) Close() {}
