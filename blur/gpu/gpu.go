//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/pixelveil/veil/blur"
	"github.com/pixelveil/veil/surface"
)

// Name identifies the GPU compute strategy in the blur registry.
const Name = "gpu"

//go:embed shaders/blur.wgsl
var blurShaderSource string

func init() {
	blur.Register(Name, 50, func() (blur.Strategy, error) {
		return New()
	}, available)
}

// available reports whether a Vulkan backend is linked in. It does not
// probe for adapters; that happens in New, and a failure there falls
// through to the next strategy during selection.
func available() bool {
	_, ok := hal.GetBackend(gputypes.BackendVulkan)
	return ok
}

// Strategy recomputes the blurred surface with a two-pass compute shader
// dispatched through wgpu/hal. Pipelines persist across recomputes; the
// pixel buffers are created per dispatch and destroyed with it.
type Strategy struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	horizontal hal.ComputePipeline
	vertical   hal.ComputePipeline

	externalDevice bool // true when using a shared device (don't destroy on Close)
}

var _ blur.Strategy = (*Strategy)(nil)

// blurParams is the uniform block shared by both shader entry points.
// Layout must match struct Params in blur.wgsl.
type blurParams struct {
	Width  uint32
	Height uint32
	Sigma  float32
	_      uint32
}

// New creates the GPU strategy with its own instance and device.
// Any setup failure (no adapters, device open, shader compile) is returned
// so strategy selection can fall through.
func New() (*Strategy, error) {
	s := &Strategy{}
	if err := s.initGPU(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Name implements blur.Strategy.
func (s *Strategy) Name() string { return Name }

// Close implements blur.Strategy. It releases pipelines and, unless the
// device came from an external provider, the device and instance too.
func (s *Strategy) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyPipelines()
	if !s.externalDevice {
		if s.device != nil {
			s.device.Destroy()
		}
		if s.instance != nil {
			s.instance.Destroy()
		}
	}
	s.device = nil
	s.instance = nil
	s.queue = nil
	s.externalDevice = false
}

// SetDeviceProvider switches the strategy to a shared GPU device from an
// external provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (s *Strategy) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyPipelines()
	if !s.externalDevice && s.device != nil {
		s.device.Destroy()
	}
	if s.instance != nil {
		s.instance.Destroy()
		s.instance = nil
	}

	s.device = device
	s.queue = queue
	s.externalDevice = true

	if err := s.createPipelines(); err != nil {
		return fmt.Errorf("gpu: create pipelines with shared device: %w", err)
	}
	slogger().Info("gpu blur strategy switched to shared device")
	return nil
}

// Recompute implements blur.Strategy.
func (s *Strategy) Recompute(original, blurred *surface.Surface, strength int) error {
	if original.Width() != blurred.Width() || original.Height() != blurred.Height() {
		return blur.ErrSizeMismatch
	}
	if strength <= 0 {
		return blurred.CopyFrom(original)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil {
		return fmt.Errorf("gpu: strategy is closed")
	}
	return s.dispatch(original, blurred, strength)
}

func (s *Strategy) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("gpu: create instance: %w", err)
	}
	s.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("gpu: no adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("gpu: open device: %w", err)
	}
	s.device = openDev.Device
	s.queue = openDev.Queue

	if err := s.createPipelines(); err != nil {
		return fmt.Errorf("gpu: create pipelines: %w", err)
	}
	slogger().Info("gpu blur strategy initialized", "adapter", selected.Info.Name)
	return nil
}

func (s *Strategy) createPipelines() error {
	spirv, err := compileToSPIRV(blurShaderSource)
	if err != nil {
		return fmt.Errorf("compile blur shader: %w", err)
	}

	shader, err := s.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "blur",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	s.shader = shader

	bindLayout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "blur_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	s.bindLayout = bindLayout

	pipeLayout, err := s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "blur_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	horizontal, err := s.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "blur_h_pipeline",
		Layout:  s.pipeLayout,
		Compute: hal.ComputeState{Module: s.shader, EntryPoint: "cs_blur_h"},
	})
	if err != nil {
		return fmt.Errorf("create horizontal pipeline: %w", err)
	}
	s.horizontal = horizontal

	vertical, err := s.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "blur_v_pipeline",
		Layout:  s.pipeLayout,
		Compute: hal.ComputeState{Module: s.shader, EntryPoint: "cs_blur_v"},
	})
	if err != nil {
		return fmt.Errorf("create vertical pipeline: %w", err)
	}
	s.vertical = vertical

	return nil
}

func (s *Strategy) destroyPipelines() {
	if s.device == nil {
		return
	}
	if s.vertical != nil {
		s.device.DestroyComputePipeline(s.vertical)
		s.vertical = nil
	}
	if s.horizontal != nil {
		s.device.DestroyComputePipeline(s.horizontal)
		s.horizontal = nil
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.bindLayout != nil {
		s.device.DestroyBindGroupLayout(s.bindLayout)
		s.bindLayout = nil
	}
	if s.shader != nil {
		s.device.DestroyShaderModule(s.shader)
		s.shader = nil
	}
}

// dispatch uploads the original pixels, runs the horizontal pass into an
// intermediate buffer, the vertical pass into the destination buffer, and
// reads the result back into the blurred surface. One submit, one fence wait.
func (s *Strategy) dispatch(original, blurred *surface.Surface, strength int) error {
	w := uint32(original.Width())
	h := uint32(original.Height())
	pixelBufSize := uint64(w) * uint64(h) * 4

	params := blurParams{Width: w, Height: h, Sigma: float32(strength)}
	paramsBytes := structToBytes(unsafe.Pointer(&params), unsafe.Sizeof(params))
	paramsSize := uint64(unsafe.Sizeof(params))

	paramsBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blur_params", Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create params buffer: %w", err)
	}
	defer s.device.DestroyBuffer(paramsBuf)

	srcBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blur_src", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create source buffer: %w", err)
	}
	defer s.device.DestroyBuffer(srcBuf)

	tmpBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blur_tmp", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage,
	})
	if err != nil {
		return fmt.Errorf("gpu: create intermediate buffer: %w", err)
	}
	defer s.device.DestroyBuffer(tmpBuf)

	dstBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blur_dst", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("gpu: create destination buffer: %w", err)
	}
	defer s.device.DestroyBuffer(dstBuf)

	stagingBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blur_staging", Size: pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer s.device.DestroyBuffer(stagingBuf)

	s.queue.WriteBuffer(paramsBuf, 0, paramsBytes)
	s.queue.WriteBuffer(srcBuf, 0, packPixels(original))

	bgH, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "blur_bind_h", Layout: s.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: srcBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: tmpBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create horizontal bind group: %w", err)
	}
	defer s.device.DestroyBindGroup(bgH)

	bgV, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "blur_bind_v", Layout: s.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: tmpBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: dstBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create vertical bind group: %w", err)
	}
	defer s.device.DestroyBindGroup(bgV)

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "blur_encoder"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("blur"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	// Two passes in one encoder; the implicit storage barrier between passes
	// orders the intermediate buffer writes before the vertical reads.
	passH := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "blur_h"})
	passH.SetPipeline(s.horizontal)
	passH.SetBindGroup(0, bgH, nil)
	passH.Dispatch((w+7)/8, (h+7)/8, 1)
	passH.End()

	passV := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "blur_v"})
	passV.SetPipeline(s.vertical)
	passV.SetBindGroup(0, bgV, nil)
	passV.Dispatch((w+7)/8, (h+7)/8, 1)
	passV.End()

	encoder.CopyBufferToBuffer(dstBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	fenceOK, err := s.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("gpu: wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := s.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("gpu: readback: %w", err)
	}
	unpackPixels(readback, blurred)
	return nil
}

// compileToSPIRV compiles WGSL source to little-endian SPIR-V words.
func compileToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}

// packPixels serializes a surface into tightly packed RGBA rows for upload.
func packPixels(s *surface.Surface) []byte {
	img := s.RGBA()
	w, h := s.Width(), s.Height()
	rowLen := w * 4

	if img.Stride == rowLen {
		return img.Pix[:h*rowLen]
	}
	out := make([]byte, h*rowLen)
	for y := 0; y < h; y++ {
		copy(out[y*rowLen:(y+1)*rowLen], img.Pix[y*img.Stride:y*img.Stride+rowLen])
	}
	return out
}

// unpackPixels copies tightly packed RGBA rows from a readback into a surface.
func unpackPixels(packed []byte, s *surface.Surface) {
	img := s.RGBA()
	w, h := s.Width(), s.Height()
	rowLen := w * 4

	for y := 0; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+rowLen], packed[y*rowLen:(y+1)*rowLen])
	}
}
