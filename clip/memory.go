// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import "sync"

// Memory is an in-process clipboard backend for tests and headless runs.
// ReadErr and WriteErr, when set, are returned by the corresponding calls
// to exercise failure paths.
type Memory struct {
	mu       sync.Mutex
	items    []Item
	ReadErr  error
	WriteErr error
}

var _ Backend = (*Memory)(nil)

// NewMemory creates an empty in-process backend.
func NewMemory() *Memory {
	return &Memory{}
}

// Name implements Backend.
func (m *Memory) Name() string { return "memory" }

// Read implements Backend.
func (m *Memory) Read() ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

// Write implements Backend.
func (m *Memory) Write(items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.items = make([]Item, len(items))
	copy(m.items, items)
	return nil
}

// Close implements Backend.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
}

// Set replaces the clipboard contents directly, bypassing Write errors.
// Intended for test setup.
func (m *Memory) Set(items ...Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}
