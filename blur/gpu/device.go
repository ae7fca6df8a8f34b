// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from a host application.
//
// A host that already owns a GPU device (a gogpu.App, for instance) can hand
// it to the blur strategy through this interface instead of letting the
// strategy create its own instance. The handle must also expose the raw HAL
// types via HalDevice() any and HalQueue() any for the compute dispatch.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider so hosts already
// integrated with the gpucontext ecosystem need no adapter type.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used where no shared GPU device exists and the strategy should create
// its own.
type NullDeviceHandle struct{}

// Device returns nil for the null handle.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null handle.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null handle.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null handle.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
