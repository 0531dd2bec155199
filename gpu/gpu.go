//go:build !nogpu

package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/isoslice"
	gpuimpl "github.com/gogpu/isoslice/internal/gpu"
)

func init() {
	accel := &gpuimpl.IntersectAccelerator{}
	if err := isoslice.RegisterAccelerator(accel); err != nil {
		isoslice.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider makes the accelerator share a GPU device owned by an
// external provider instead of opening its own. The provider must also
// expose HalDevice and HalQueue.
//
// Call this before creating planes. Kernels created before the switch must be
// closed first.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return isoslice.SetAcceleratorDeviceProvider(provider)
}
