package isoslice

import (
	"errors"
	"fmt"
)

// Default grid metrics shared by the CPU and GPU kernels.
const (
	// DefaultPointsPerChunk is the chunk resolution of a surface volume.
	DefaultPointsPerChunk = 16

	// DefaultNumThreads is the work-group edge of the intersection kernel.
	// The WGSL shader declares @workgroup_size(8, 8, 1) to match.
	DefaultNumThreads = 8

	// IsoLevel is the scalar threshold the contour is extracted at.
	IsoLevel float32 = 0.5

	// NoData marks a field sample without surface influence.
	NoData float32 = -1

	// GridToWorld converts grid-local units to world units.
	GridToWorld = 1.0 / 100

	// WorldToGrid is the inverse of GridToWorld.
	WorldToGrid = 100.0

	// DefaultProximity is the distance under which a surface counts as close.
	DefaultProximity = 1.0

	// SegmentLengthScale scales the long axis of a segment visual.
	SegmentLengthScale = 0.6

	// SegmentThickness is the cross-section of a segment visual.
	SegmentThickness = 0.005

	// MarkerSize is the edge of a debug gizmo cube.
	MarkerSize = 0.004

	// segmentsPerCell bounds the number of segments the kernel may append per
	// grid point. Marching squares emits at most two.
	segmentsPerCell = 5
)

// ErrInvalidMetrics is returned when grid metrics cannot drive a dispatch.
var ErrInvalidMetrics = errors.New("isoslice: invalid grid metrics")

// Metrics describes the grid a plane samples and the kernel dispatch shape.
// Metrics are fixed for the lifetime of a Plane.
type Metrics struct {
	PointsPerChunk int
	NumThreads     int
}

// DefaultMetrics returns the default grid metrics.
func DefaultMetrics() Metrics {
	return Metrics{
		PointsPerChunk: DefaultPointsPerChunk,
		NumThreads:     DefaultNumThreads,
	}
}

// PlaneGridPoints returns N, the number of samples along each plane axis.
func (m Metrics) PlaneGridPoints() int {
	return m.PointsPerChunk*2 + 16
}

// FieldLen returns the number of samples consumed from a field (N*N).
func (m Metrics) FieldLen() int {
	n := m.PlaneGridPoints()
	return n * n
}

// SegmentCapacity returns the fixed per-frame segment capacity (5*N*N).
func (m Metrics) SegmentCapacity() int {
	return segmentsPerCell * m.FieldLen()
}

// WorkGroups returns the number of work-groups along each dispatch axis.
func (m Metrics) WorkGroups() int {
	return m.PlaneGridPoints() / m.NumThreads
}

// Validate reports whether the metrics describe a dispatchable grid.
func (m Metrics) Validate() error {
	if m.PointsPerChunk <= 0 {
		return fmt.Errorf("%w: points per chunk %d", ErrInvalidMetrics, m.PointsPerChunk)
	}
	if m.NumThreads <= 0 {
		return fmt.Errorf("%w: threads per group %d", ErrInvalidMetrics, m.NumThreads)
	}
	if n := m.PlaneGridPoints(); n%m.NumThreads != 0 {
		return fmt.Errorf("%w: grid edge %d is not a multiple of %d threads",
			ErrInvalidMetrics, n, m.NumThreads)
	}
	return nil
}
