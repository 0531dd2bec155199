// Package isoslice extracts the contour where a movable cutting plane
// intersects an implicit surface.
//
// # Overview
//
// Every tick a Plane checks whether its pose changed. If it did, the plane
// samples a scalar field over a plane-aligned N×N grid around the closest
// registered Surface, runs an intersection Kernel that appends one or two
// line segments per grid cell crossing the iso-level, reads the variable
// length result back, maps it to world space, drops segments outside the
// chunk cube around the surface and rebuilds the segment visuals.
//
// # Quick Start
//
//	import "github.com/gogpu/isoslice"
//
//	p, err := isoslice.NewPlane(field.NewGenerator(field.Config{}),
//		isoslice.WithTemplate(&visual.Template{Name: "segment"}))
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	p.AttachSurface(&isoslice.Surface{Name: "ball", Size: 16})
//	p.Handle().Pose.Position = isoslice.V3(0.01, 0, 0)
//	for range ticks {
//		p.Update()
//	}
//
// # Kernels
//
// The CPU kernel runs work-groups on a worker pool and is always available.
// A wgpu compute kernel is enabled by blank import:
//
//	import _ "github.com/gogpu/isoslice/gpu"
//
// If GPU initialization or buffer allocation fails, planes fall back to the
// CPU kernel with a warning.
//
// # Readback
//
// The number of segments is only known after a dispatch completes. Kernels
// therefore expose a two-step readback: ReadCount copies the append counter,
// then ReadSegments copies exactly that many records.
//
// # Coordinate Frames
//
//   - Grid-local: sample indices centered on the plane, X and Z in-plane
//   - World: Y-up, 100 grid units per world unit
//   - Local-to-volume: world position relative to a surface, in grid units
//
// # Errors
//
// No condition on the render path is fatal. Missing templates, missing
// surfaces and capacity overflow are logged at Warn or Debug level and the
// pass continues with what it has.
package isoslice

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
