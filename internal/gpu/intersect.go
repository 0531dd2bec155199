//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/isoslice"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// workgroupSize must match @workgroup_size in plane_intersect.wgsl.
const workgroupSize = 8

// IntersectAccelerator provides the plane intersection kernel on the GPU using
// wgpu/hal compute shaders. It implements isoslice.KernelAccelerator.
//
// The accelerator owns the device and the compute pipeline. Each kernel it
// hands out owns its buffers and bind group, sized once from the plane's
// metrics.
type IntersectAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

var (
	_ isoslice.KernelAccelerator   = (*IntersectAccelerator)(nil)
	_ isoslice.DeviceProviderAware = (*IntersectAccelerator)(nil)
)

// Name returns "wgpu".
func (a *IntersectAccelerator) Name() string { return "wgpu" }

// slogger returns the logger configured with isoslice.SetLogger.
func slogger() *slog.Logger { return isoslice.Logger() }

// Init opens a Vulkan device and builds the compute pipeline. A missing GPU
// is not an error: the accelerator stays registered and every NewKernel call
// falls back to the CPU.
func (a *IntersectAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initGPU(); err != nil {
		slogger().Warn("gpu: GPU init failed, using CPU kernel", "err", err)
		a.releaseDevice()
	}
	return nil
}

// Close releases the pipeline and, unless it is shared, the device. Kernels
// created by this accelerator must be closed first.
func (a *IntersectAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyPipeline()
	a.releaseDevice()
}

// Ready reports whether a GPU device and pipeline are available.
func (a *IntersectAccelerator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// SetDeviceProvider switches the accelerator to a shared GPU device from an
// external provider (e.g., gogpu). The provider must expose HalDevice() and
// HalQueue() returning hal.Device and hal.Queue.
func (a *IntersectAccelerator) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return errors.New("isoslice/gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return errors.New("isoslice/gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("isoslice/gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.useDevice(device, queue, true); err != nil {
		return err
	}
	slogger().Info("gpu: switched to shared GPU device")
	return nil
}

// NewKernel allocates a kernel for m. It returns isoslice.ErrFallbackToCPU
// when no GPU is available or the metrics do not match the shader's
// work-group size.
func (a *IntersectAccelerator) NewKernel(m isoslice.Metrics) (isoslice.Kernel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return nil, isoslice.ErrFallbackToCPU
	}
	if m.NumThreads != workgroupSize {
		slogger().Debug("gpu: work-group size mismatch",
			"threads", m.NumThreads, "shader", workgroupSize)
		return nil, isoslice.ErrFallbackToCPU
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return newIntersectKernel(a.device, a.queue, a.bindLayout, a.pipeline, m)
}

// useDevice replaces the current device with device and rebuilds the
// pipeline. Caller must hold a.mu.
func (a *IntersectAccelerator) useDevice(device hal.Device, queue hal.Queue, external bool) error {
	a.destroyPipeline()
	a.releaseDevice()

	a.device = device
	a.queue = queue
	a.externalDevice = external
	if err := a.createPipeline(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("isoslice/gpu: create pipeline: %w", err)
	}
	a.gpuReady = true
	return nil
}

func (a *IntersectAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return errors.New("no GPU adapters found")
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
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}
	if err := a.useDevice(openDev.Device, openDev.Queue, false); err != nil {
		a.instance = instance
		return err
	}
	a.instance = instance
	slogger().Info("gpu: intersection accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *IntersectAccelerator) createPipeline() error {
	spirv, err := compileShader(planeIntersectWGSL)
	if err != nil {
		return err
	}
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "plane_intersect",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	a.shader = shader

	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "plane_intersect_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "plane_intersect_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "plane_intersect_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline = pipeline
	return nil
}

func (a *IntersectAccelerator) destroyPipeline() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
		a.shader = nil
	}
}

// releaseDevice drops the device, destroying it only when owned.
func (a *IntersectAccelerator) releaseDevice() {
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.queue = nil
	a.instance = nil
	a.gpuReady = false
	a.externalDevice = false
}
