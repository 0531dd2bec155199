// Package gpu registers the wgpu intersection accelerator.
//
// Import this package to run the plane intersection kernel as a compute
// shader. Planes created afterwards get a GPU kernel when a Vulkan device is
// available and fall back to the CPU kernel otherwise.
//
// Usage:
//
//	import _ "github.com/gogpu/isoslice/gpu" // enable GPU intersection
//
// With the nogpu build tag the package is empty and planes always use the
// CPU kernel.
package gpu
