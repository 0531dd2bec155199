package isoslice

import (
	"errors"
	"sync"

	"github.com/gogpu/gpucontext"
)

// ErrFallbackToCPU indicates the accelerator cannot serve a request.
// The caller should transparently fall back to the CPU kernel.
var ErrFallbackToCPU = errors.New("isoslice: falling back to CPU kernel")

// KernelAccelerator is an optional provider of hardware intersection kernels.
//
// When registered via RegisterAccelerator, NewPlane asks the accelerator for a
// Kernel first. If the accelerator returns ErrFallbackToCPU or any other
// error, the plane transparently uses the CPU kernel.
//
// Implementations live in GPU backend packages. Users opt in via blank import:
//
//	import _ "github.com/gogpu/isoslice/gpu" // enables the wgpu kernel
type KernelAccelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init initializes device resources. Called once during registration.
	Init() error

	// Close releases device resources.
	Close()

	// NewKernel allocates a kernel with buffers sized for m. Each plane owns
	// the kernel it receives; buffers are never resized afterwards.
	NewKernel(m Metrics) (Kernel, error)
}

// DeviceProviderAware is an optional interface for accelerators that can share
// a GPU device with an external provider (e.g., a gogpu window).
type DeviceProviderAware interface {
	SetDeviceProvider(provider gpucontext.DeviceProvider) error
}

var (
	accelMu sync.RWMutex
	accel   KernelAccelerator
)

// RegisterAccelerator registers a kernel accelerator.
//
// Only one accelerator can be registered. Subsequent calls replace the previous one.
// The accelerator's Init() method is called during registration.
// If Init() fails, the accelerator is not registered and the error is returned.
func RegisterAccelerator(a KernelAccelerator) error {
	if a == nil {
		return errors.New("isoslice: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	Logger().Info("kernel accelerator registered", "name", a.Name())
	return nil
}

// Accelerator returns the currently registered accelerator, or nil if none.
func Accelerator() KernelAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
func SetAcceleratorDeviceProvider(provider gpucontext.DeviceProvider) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}

// newKernel returns an accelerated kernel when one is registered and able to
// serve m, and the CPU kernel otherwise.
func newKernel(m Metrics, forceCPU bool) Kernel {
	if a := Accelerator(); a != nil && !forceCPU {
		k, err := a.NewKernel(m)
		if err == nil {
			return k
		}
		if !errors.Is(err, ErrFallbackToCPU) {
			Logger().Warn("accelerated kernel unavailable, using CPU",
				"accelerator", a.Name(), "err", err)
		}
	}
	return NewCPUKernel(m)
}
