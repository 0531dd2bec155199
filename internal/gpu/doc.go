//go:build !nogpu

// Package gpu runs the plane intersection kernel as a wgpu/hal compute
// shader.
//
// The public entry point is github.com/gogpu/isoslice/gpu, which registers
// an [IntersectAccelerator] with isoslice on import.
//
// # Pipeline
//
// The accelerator opens a Vulkan device (or borrows one through
// SetDeviceProvider) and compiles shaders/plane_intersect.wgsl to SPIR-V with
// naga once. Each plane then gets an [IntersectKernel] owning:
//
//   - a 16-byte uniform with grid size, capacity, iso-level and NoData
//   - the N×N field as a read-only storage buffer
//   - the segment buffer of capacity 5·N·N records
//   - a one-word atomic append counter
//   - two staging buffers for readback
//
// Buffers are sized once from the plane's metrics. Dispatch zeroes the
// counter, uploads the field and runs N/8 × N/8 work-groups of 8×8 threads.
// ReadCount and ReadSegments each copy into staging, wait on a fence and map
// the result back; a count read is required before segments are readable.
//
// # Shader notes
//
// naga currently executes only the first iteration of WGSL loops, so the
// shader reads the four cell corners and walks the case table without
// looping.
//
// # Build tags
//
// Build with -tags nogpu to drop this package and its Vulkan dependency; the
// CPU kernel is then the only implementation.
package gpu
